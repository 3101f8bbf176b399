package resolver

import (
	"fmt"

	"github.com/zaharidichev/rlox/pkg/ast"
	"github.com/zaharidichev/rlox/pkg/parser"
)

type functionKind int

const (
	funcNone functionKind = iota
	funcFunction
	funcInitializer
	funcMethod
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSubclass
)

// Resolver walks a parsed program, binds every name reference to the lexical
// scope that declares it, and rejects constructs that cannot be given a
// meaning at runtime (reads of a variable inside its own initializer, return
// at the top level, this outside a class, and so on). Both execution
// backends rely on the scope annotations it writes into the tree.
type Resolver struct {
	scopes   []map[string]bool
	function functionKind
	class    classKind
	errs     parser.ErrorList
}

// Resolve annotates program in place and returns the static errors found.
// A program with resolution errors must not be executed.
func Resolve(program []ast.Stmt) parser.ErrorList {
	r := &Resolver{}
	for _, s := range program {
		r.stmt(s)
	}
	return r.errs
}

func (r *Resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		r.expr(s.Expr)
	case *ast.Print:
		r.expr(s.Expr)
	case *ast.VarDecl:
		r.declare(s.Name, s.Line)
		if s.Init != nil {
			r.expr(s.Init)
		}
		r.define(s.Name)
		s.Scope = r.declarationScope()
	case *ast.Block:
		r.beginScope()
		for _, inner := range s.Stmts {
			r.stmt(inner)
		}
		r.endScope()
	case *ast.If:
		r.expr(s.Cond)
		r.stmt(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}
	case *ast.While:
		r.expr(s.Cond)
		r.stmt(s.Body)
	case *ast.Function:
		r.declare(s.Name, s.Line)
		r.define(s.Name)
		s.Scope = r.declarationScope()
		r.resolveFunction(s.Decl, funcFunction)
	case *ast.Return:
		if r.function == funcNone {
			r.errorf(s.Line, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.function == funcInitializer {
				r.errorf(s.Line, "Can't return a value from an initializer.")
			}
			r.expr(s.Value)
		}
	case *ast.Class:
		r.resolveClass(s)
	}
}

func (r *Resolver) resolveClass(c *ast.Class) {
	enclosing := r.class
	r.class = classPlain

	r.declare(c.Name, c.Line)
	r.define(c.Name)
	c.Scope = r.declarationScope()

	if c.Superclass != nil {
		if c.Superclass.Name == c.Name {
			r.errorf(c.Superclass.Line, "A class can't inherit from itself.")
		}
		r.class = classSubclass
		r.expr(c.Superclass)
		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true
	for _, method := range c.Methods {
		kind := funcMethod
		if method.Name == "init" {
			kind = funcInitializer
		}
		r.resolveFunction(method.Decl, kind)
	}
	r.endScope()

	if c.Superclass != nil {
		r.endScope()
	}
	r.class = enclosing
}

func (r *Resolver) resolveFunction(decl *ast.FunctionDecl, kind functionKind) {
	enclosing := r.function
	r.function = kind
	r.beginScope()
	for _, param := range decl.Params {
		r.declare(param.Name, param.Line)
		r.define(param.Name)
	}
	for _, s := range decl.Body {
		r.stmt(s)
	}
	r.endScope()
	r.function = enclosing
}

func (r *Resolver) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Literal:
	case *ast.Grouping:
		r.expr(e.Expr)
	case *ast.Unary:
		r.expr(e.Expr)
	case *ast.Binary:
		r.expr(e.LHS)
		r.expr(e.RHS)
	case *ast.Logical:
		r.expr(e.LHS)
		r.expr(e.RHS)
	case *ast.Var:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name]; ok && !defined {
				r.errorf(e.Line, "Can't read local variable '%s' in its own initializer.", e.Name)
			}
		}
		e.Scope = r.resolveLocal(e.Name)
	case *ast.Assign:
		r.expr(e.Value)
		e.Scope = r.resolveLocal(e.Name)
	case *ast.Call:
		r.expr(e.Callee)
		for _, arg := range e.Args {
			r.expr(arg)
		}
	case *ast.Get:
		r.expr(e.Object)
	case *ast.Set:
		r.expr(e.Object)
		r.expr(e.Value)
	case *ast.This:
		if r.class == classNone {
			r.errorf(e.Line, "Can't use 'this' outside of a class.")
			return
		}
		e.Scope = r.resolveLocal("this")
	case *ast.Super:
		switch r.class {
		case classNone:
			r.errorf(e.Line, "Can't use 'super' outside of a class.")
			return
		case classPlain:
			r.errorf(e.Line, "Can't use 'super' in a class with no superclass.")
			return
		}
		e.Scope = r.resolveLocal("super")
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, map[string]bool{})
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name string, line int) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name]; ok {
		r.errorf(line, "Already a variable named '%s' in this scope.", name)
	}
	scope[name] = false
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// resolveLocal reports how many scopes separate a use from its declaration.
// Names declared in no enclosing scope resolve against the globals.
func (r *Resolver) resolveLocal(name string) ast.Scope {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			return ast.LocalScope(len(r.scopes) - 1 - i)
		}
	}
	return ast.GlobalScope()
}

// declarationScope annotates the declaration itself: depth zero inside any
// scope, global otherwise.
func (r *Resolver) declarationScope() ast.Scope {
	if len(r.scopes) == 0 {
		return ast.GlobalScope()
	}
	return ast.LocalScope(0)
}

func (r *Resolver) errorf(line int, format string, args ...any) {
	r.errs = append(r.errs, &parser.SyntaxError{Line: line, Message: fmt.Sprintf(format, args...)})
}
