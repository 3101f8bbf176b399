package resolver

import (
	"testing"

	"github.com/zaharidichev/rlox/pkg/ast"
	"github.com/zaharidichev/rlox/pkg/parser"
)

func resolveOK(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	stmts, errs := parser.Parse(src)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if errs := Resolve(stmts); len(errs) > 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	return stmts
}

func assertGlobal(t *testing.T, scope ast.Scope, what string) {
	t.Helper()
	if _, ok := scope.Local(); ok {
		t.Fatalf("%s: expected a global binding", what)
	}
}

func assertLocal(t *testing.T, scope ast.Scope, depth int, what string) {
	t.Helper()
	got, ok := scope.Local()
	if !ok {
		t.Fatalf("%s: expected a local binding", what)
	}
	if got != depth {
		t.Fatalf("%s: expected depth %d, got %d", what, depth, got)
	}
}

func TestResolveAnnotatesBlockScopes(t *testing.T) {
	stmts := resolveOK(t, `
var g = 1;
{
  var a = g;
  {
    print a;
    print g;
  }
}`)

	assertGlobal(t, stmts[0].(*ast.VarDecl).Scope, "top-level declaration")

	outer := stmts[1].(*ast.Block)
	decl := outer.Stmts[0].(*ast.VarDecl)
	assertLocal(t, decl.Scope, 0, "block declaration")
	assertGlobal(t, decl.Init.(*ast.Var).Scope, "read of a global initializer")

	inner := outer.Stmts[1].(*ast.Block)
	assertLocal(t, inner.Stmts[0].(*ast.Print).Expr.(*ast.Var).Scope, 1, "read across one scope")
	assertGlobal(t, inner.Stmts[1].(*ast.Print).Expr.(*ast.Var).Scope, "read of a global")
}

func TestResolveAnnotatesFunctionScopes(t *testing.T) {
	stmts := resolveOK(t, `
fun f(x) {
  var y = x;
  return y;
}`)

	fn := stmts[0].(*ast.Function)
	assertGlobal(t, fn.Scope, "top-level function")

	decl := fn.Decl.Body[0].(*ast.VarDecl)
	assertLocal(t, decl.Scope, 0, "declaration in the body")
	assertLocal(t, decl.Init.(*ast.Var).Scope, 0, "parameter read")
	assertLocal(t, fn.Decl.Body[1].(*ast.Return).Value.(*ast.Var).Scope, 0, "local read")
}

func TestResolveReachesThroughEnclosingFunctions(t *testing.T) {
	stmts := resolveOK(t, `
fun outer() {
  var n = 0;
  fun inner() {
    return n;
  }
  return inner;
}`)

	outer := stmts[0].(*ast.Function)
	inner := outer.Decl.Body[1].(*ast.Function)
	assertLocal(t, inner.Decl.Body[0].(*ast.Return).Value.(*ast.Var).Scope, 1, "captured read")
}

func TestResolveShadowingRebinds(t *testing.T) {
	stmts := resolveOK(t, `
{
  var a = 1;
  {
    var a = 2;
    print a;
  }
  print a;
}`)

	outer := stmts[0].(*ast.Block)
	inner := outer.Stmts[1].(*ast.Block)
	assertLocal(t, inner.Stmts[1].(*ast.Print).Expr.(*ast.Var).Scope, 0, "shadowed read")
	assertLocal(t, outer.Stmts[2].(*ast.Print).Expr.(*ast.Var).Scope, 0, "read after the shadow ends")
}

func TestResolveDiagnostics(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"top-level return", "return 1;", "Can't return from top-level code."},
		{"self-referential initializer", "{ var a = a; }", "Can't read local variable 'a' in its own initializer."},
		{"duplicate local", "{ var a = 1; var a = 2; }", "Already a variable named 'a' in this scope."},
		{"this outside class", "print this;", "Can't use 'this' outside of a class."},
		{"super outside class", "print super.m;", "Can't use 'super' outside of a class."},
		{"super without superclass", "class A { m() { return super.m(); } }", "Can't use 'super' in a class with no superclass."},
		{"class inherits itself", "class A < A {}", "A class can't inherit from itself."},
		{"value return in init", "class A { init() { return 1; } }", "Can't return a value from an initializer."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stmts, errs := parser.Parse(tc.src)
			if len(errs) > 0 {
				t.Fatalf("parse errors: %v", errs)
			}
			resolveErrs := Resolve(stmts)
			if len(resolveErrs) != 1 {
				t.Fatalf("expected one error, got %v", resolveErrs)
			}
			if resolveErrs[0].Message != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, resolveErrs[0].Message)
			}
		})
	}
}

func TestResolveAllowsBenignRedeclarations(t *testing.T) {
	// Globals may be redeclared, and sibling scopes may reuse a name.
	resolveOK(t, "var a = 1; var a = 2;")
	resolveOK(t, "{ var a = 1; } { var a = 2; }")
	// A bare return inside init is how early exits are written.
	resolveOK(t, "class A { init() { return; } }")
}
