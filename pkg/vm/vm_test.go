package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/zaharidichev/rlox/pkg/interpreter"
	"github.com/zaharidichev/rlox/pkg/parser"
	"github.com/zaharidichev/rlox/pkg/resolver"
	"github.com/zaharidichev/rlox/pkg/runtime"
)

func compileSource(t *testing.T, src string) (*Function, error) {
	t.Helper()
	program, errs := parser.Parse(src)
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs)
	}
	if errs := resolver.Resolve(program); len(errs) > 0 {
		t.Fatalf("resolve failed: %v", errs)
	}
	return Compile(program)
}

func mustCompile(t *testing.T, src string) *Function {
	t.Helper()
	fn, err := compileSource(t, src)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return fn
}

func runVM(t *testing.T, src string) (string, error) {
	t.Helper()
	fn := mustCompile(t, src)
	var out bytes.Buffer
	err := New(WithOutput(&out)).Run(fn)
	return out.String(), err
}

func runVMOK(t *testing.T, src string) string {
	t.Helper()
	out, err := runVM(t, src)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return out
}

// assertParity runs src on both backends and fails unless they print the
// same thing.
func assertParity(t *testing.T, src string) string {
	t.Helper()
	program, errs := parser.Parse(src)
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs)
	}
	if errs := resolver.Resolve(program); len(errs) > 0 {
		t.Fatalf("resolve failed: %v", errs)
	}

	var walked bytes.Buffer
	if err := interpreter.New(interpreter.WithOutput(&walked)).Interpret(program); err != nil {
		t.Fatalf("treewalker failed: %v", err)
	}

	fn, err := Compile(program)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	var compiled bytes.Buffer
	if err := New(WithOutput(&compiled)).Run(fn); err != nil {
		t.Fatalf("vm failed: %v", err)
	}

	if walked.String() != compiled.String() {
		t.Fatalf("backend mismatch:\ntreewalker: %q\nbytecode:   %q", walked.String(), compiled.String())
	}
	return compiled.String()
}

func TestArithmeticParity(t *testing.T) {
	out := assertParity(t, `
print 1 + 2 * 3;
print (1 + 2) * 3;
print 10 / 4;
print -3 - -4;
print "con" + "cat";
`)
	if out != "7\n9\n2.5\n1\nconcat\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestComparisonParity(t *testing.T) {
	assertParity(t, `
print 1 < 2;
print 2 <= 2;
print 2 <= 1;
print 3 > 4;
print 4 >= 4;
print 4 >= 5;
print 1 == 1;
print 1 != 2;
print "a" == "a";
print nil == nil;
print true == 1;
`)
}

func TestLogicalParity(t *testing.T) {
	assertParity(t, `
print 1 and 2;
print nil and 2;
print 1 or 2;
print false or "fallback";
print !true;
print !nil;
`)
}

func TestGlobalsParity(t *testing.T) {
	assertParity(t, `
var a = 1;
var b;
print a;
print b;
a = a + 1;
print a = a * 10;
print a;
`)
}

func TestLocalsAndShadowing(t *testing.T) {
	out := assertParity(t, `
var a = "global";
{
  var a = "outer";
  {
    var a = "inner";
    print a;
  }
  print a;
}
print a;
`)
	if out != "inner\nouter\nglobal\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestControlFlowParity(t *testing.T) {
	assertParity(t, `
if (1 < 2) print "then"; else print "else";
if (1 > 2) print "then"; else print "else";
if (nil) print "unreachable";
var i = 0;
while (i < 3) {
  print i;
  i = i + 1;
}
for (var j = 0; j < 2; j = j + 1) print j;
`)
}

func TestFunctionsParity(t *testing.T) {
	out := assertParity(t, `
fun fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(15);
`)
	if out != "610\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestLocalFunctionRecursion(t *testing.T) {
	assertParity(t, `
{
  fun countdown(n) {
    if (n <= 0) return 0;
    print n;
    return countdown(n - 1);
  }
  countdown(3);
}
`)
}

func TestFunctionWithoutReturn(t *testing.T) {
	assertParity(t, `
fun noop() {}
print noop();
`)
}

func TestNestedCalls(t *testing.T) {
	assertParity(t, `
fun add(a, b) { return a + b; }
fun twice(x) { return add(x, x); }
print twice(add(1, 2));
`)
}

func TestClockIsCallable(t *testing.T) {
	out := runVMOK(t, `print clock() >= 0;`)
	if out != "true\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestUndefinedGlobal(t *testing.T) {
	_, err := runVM(t, `print missing;`)
	assertRuntimeMessage(t, err, "Undefined variable 'missing'.")
}

func TestAssignUndefinedGlobal(t *testing.T) {
	_, err := runVM(t, `ghost = 1;`)
	assertRuntimeMessage(t, err, "Undefined variable 'ghost'.")
}

func TestOperandErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"negate", `print -"s";`, "Invalid operand for operator '-', expected number"},
		{"lhs", `print true * 2;`, "Invalid operand on lhs, expected number"},
		{"rhs", `print 2 * true;`, "Invalid operand on rhs, expected number"},
		{"plus mixed", `print "a" + 1;`, "Invalid operands, expected number or string"},
		{"plus flipped", `print 1 + "a";`, "Invalid operands, expected number or string"},
		{"plus no string", `print nil + 1;`, "Invalid operand on lhs, expected number"},
		{"comparison", `print "a" < "b";`, "Invalid operands, expected number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runVM(t, tc.src)
			assertRuntimeMessage(t, err, tc.want)
		})
	}
}

func TestCallErrors(t *testing.T) {
	_, err := runVM(t, `var x = 1; x();`)
	assertRuntimeMessage(t, err, "Can only call functions and classes.")

	_, err = runVM(t, "fun two(a, b) {}\ntwo(1);")
	assertRuntimeMessage(t, err, "Expected 2 arguments but got 1.")
}

func TestStackOverflow(t *testing.T) {
	_, err := runVM(t, `
fun spin() { return spin(); }
spin();
`)
	assertRuntimeMessage(t, err, "Stack overflow.")
}

func TestRuntimeErrorLineAndTrace(t *testing.T) {
	_, err := runVM(t, `fun raise() {
  return nil + 1;
}
fun mid() {
  return raise();
}
mid();`)
	var rerr *runtime.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected a runtime error, got %T: %v", err, err)
	}
	if rerr.Line != 2 {
		t.Fatalf("expected line 2, got %d", rerr.Line)
	}
	want := "traceback (most recent call last):\n" +
		"  [line 7] in script\n" +
		"  [line 5] in mid\n" +
		"  [line 2] in raise\n" +
		"Invalid operand on lhs, expected number"
	if got := rerr.Backtrace(); got != want {
		t.Fatalf("backtrace mismatch:\n%s\n--- want ---\n%s", got, want)
	}
}

func TestRejectsClasses(t *testing.T) {
	_, err := compileSource(t, `class Empty {}`)
	assertCompileMessage(t, err, "The bytecode backend does not support classes.")
}

func TestRejectsProperties(t *testing.T) {
	_, err := compileSource(t, `var o = 1; print o.field;`)
	assertCompileMessage(t, err, "The bytecode backend does not support properties.")
}

func TestRejectsClosures(t *testing.T) {
	_, err := compileSource(t, `
fun outer() {
  var captured = 1;
  fun inner() { return captured; }
  return inner;
}
`)
	assertCompileMessage(t, err, "The bytecode backend does not support closures.")
}

func TestRejectsTooManyArguments(t *testing.T) {
	_, err := compileSource(t, `
fun f(a, b, c, d, e, g, h, i, j) {}
`)
	assertCompileMessage(t, err, "Too many arguments.")

	_, err = compileSource(t, `
fun f() {}
f(1, 2, 3, 4, 5, 6, 7, 8, 9);
`)
	assertCompileMessage(t, err, "Too many arguments.")
}

func assertRuntimeMessage(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a runtime error")
	}
	var rerr *runtime.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected a runtime error, got %T: %v", err, err)
	}
	if rerr.Message != want {
		t.Fatalf("unexpected message: %q", rerr.Message)
	}
}

func assertCompileMessage(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a compile error")
	}
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected a compile error, got %T: %v", err, err)
	}
	if cerr.Message != want {
		t.Fatalf("unexpected message: %q", cerr.Message)
	}
	if !strings.HasPrefix(cerr.Error(), "[line ") {
		t.Fatalf("compile error should carry a line: %q", cerr.Error())
	}
}

func TestGlobalsPersistAcrossRuns(t *testing.T) {
	machine := New(WithOutput(&bytes.Buffer{}))
	if err := machine.Run(mustCompile(t, `var kept = 41;`)); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	var out bytes.Buffer
	machine.out = &out
	if err := machine.Run(mustCompile(t, `print kept + 1;`)); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
