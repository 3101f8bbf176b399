package runtime

import (
	"testing"

	"github.com/zaharidichev/rlox/pkg/ast"
)

func TestNumberFormatting(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1, "1"},
		{10, "10"},
		{2.5, "2.5"},
		{-0.25, "-0.25"},
		{1000000, "1e+06"},
	}
	for _, c := range cases {
		if got := (NumberValue{Val: c.in}).String(); got != c.want {
			t.Fatalf("NumberValue(%v).String() = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValueKinds(t *testing.T) {
	if (NumberValue{Val: 1}).Kind() != KindNumber {
		t.Fatalf("expected KindNumber")
	}
	if (StringValue{Val: "s"}).Kind() != KindString {
		t.Fatalf("expected KindString")
	}
	if (NilValue{}).Kind() != KindNil {
		t.Fatalf("expected KindNil")
	}
	fn := &FunctionValue{Name: "f", Decl: &ast.FunctionDecl{}}
	if fn.Kind() != KindFunction {
		t.Fatalf("expected KindFunction")
	}
	class := &ClassValue{Name: "C"}
	if class.Kind() != KindClass {
		t.Fatalf("expected KindClass")
	}
	if NewInstance(class).Kind() != KindInstance {
		t.Fatalf("expected KindInstance")
	}
}

func TestTruthy(t *testing.T) {
	if Truthy(NilValue{}) {
		t.Fatalf("nil should be falsey")
	}
	if Truthy(BoolValue{Val: false}) {
		t.Fatalf("false should be falsey")
	}
	if !Truthy(BoolValue{Val: true}) {
		t.Fatalf("true should be truthy")
	}
	if !Truthy(NumberValue{Val: 0}) {
		t.Fatalf("zero should be truthy")
	}
	if !Truthy(StringValue{Val: ""}) {
		t.Fatalf("empty string should be truthy")
	}
}

func TestEquals(t *testing.T) {
	if !Equals(NilValue{}, NilValue{}) {
		t.Fatalf("nil == nil")
	}
	if !Equals(NumberValue{Val: 2}, NumberValue{Val: 2}) {
		t.Fatalf("2 == 2")
	}
	if Equals(NumberValue{Val: 2}, StringValue{Val: "2"}) {
		t.Fatalf("2 != \"2\"")
	}
	if Equals(NumberValue{Val: 2}, NilValue{}) {
		t.Fatalf("2 != nil")
	}

	class := &ClassValue{Name: "C", Methods: map[string]*FunctionValue{}}
	a := NewInstance(class)
	b := NewInstance(class)
	if !Equals(a, a) {
		t.Fatalf("instance equals itself")
	}
	if Equals(a, b) {
		t.Fatalf("distinct instances compare by identity")
	}
}

func TestClassMethodFallsThroughToSuperclass(t *testing.T) {
	speak := &FunctionValue{Name: "speak", Decl: &ast.FunctionDecl{}}
	base := &ClassValue{Name: "Animal", Methods: map[string]*FunctionValue{"speak": speak}}
	derived := &ClassValue{Name: "Dog", Superclass: base, Methods: map[string]*FunctionValue{}}

	got, ok := derived.Method("speak")
	if !ok || got != speak {
		t.Fatalf("expected speak from superclass, got %v (ok=%v)", got, ok)
	}
	if _, ok := derived.Method("missing"); ok {
		t.Fatalf("missing method should not resolve")
	}
}

func TestClassArityFollowsInit(t *testing.T) {
	params := []ast.Param{{Name: "a"}, {Name: "b"}}
	init := &FunctionValue{Name: "init", Decl: &ast.FunctionDecl{Params: params}, IsInitializer: true}
	withInit := &ClassValue{Name: "Pair", Methods: map[string]*FunctionValue{"init": init}}
	if withInit.Arity() != 2 {
		t.Fatalf("expected arity 2, got %d", withInit.Arity())
	}
	plain := &ClassValue{Name: "Empty", Methods: map[string]*FunctionValue{}}
	if plain.Arity() != 0 {
		t.Fatalf("expected arity 0, got %d", plain.Arity())
	}
}

func TestBindDefinesThis(t *testing.T) {
	closure := NewEnvironment(nil)
	method := &FunctionValue{Name: "m", Decl: &ast.FunctionDecl{}, Closure: closure}
	instance := NewInstance(&ClassValue{Name: "C", Methods: map[string]*FunctionValue{}})

	bound := method.Bind(instance)
	if bound == method {
		t.Fatalf("Bind should return a new function value")
	}
	this, err := bound.Closure.Get("this")
	if err != nil {
		t.Fatalf("bound closure should define this: %v", err)
	}
	if this != Value(instance) {
		t.Fatalf("this should be the bound instance")
	}
	if _, err := closure.Get("this"); err == nil {
		t.Fatalf("original closure must not gain a this binding")
	}
}

func TestValueStrings(t *testing.T) {
	fn := &FunctionValue{Name: "fib", Decl: &ast.FunctionDecl{}}
	if fn.String() != "<fn fib>" {
		t.Fatalf("function string = %q", fn.String())
	}
	class := &ClassValue{Name: "List"}
	if class.String() != "<class 'List'>" {
		t.Fatalf("class string = %q", class.String())
	}
	if NewInstance(class).String() != "List instance" {
		t.Fatalf("instance string = %q", NewInstance(class).String())
	}
	native := &NativeFunctionValue{Name: "clock"}
	if native.String() != "<native fn clock>" {
		t.Fatalf("native string = %q", native.String())
	}
	if (BoolValue{Val: true}).String() != "true" || (NilValue{}).String() != "nil" {
		t.Fatalf("scalar strings wrong")
	}
}
