package runtime

import (
	"strconv"

	"github.com/zaharidichev/rlox/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindNil
	KindFunction
	KindNativeFunction
	KindClass
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNil:
		return "nil"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	}
	return "unknown"
}

// Value is any Lox runtime value. String renders the value the way print
// shows it.
type Value interface {
	Kind() Kind
	String() string
}

type NumberValue struct {
	Val float64
}

func (NumberValue) Kind() Kind { return KindNumber }

func (v NumberValue) String() string {
	return FormatNumber(v.Val)
}

// FormatNumber prints a Lox number in its minimal form: integral values
// without a decimal part, everything else in shortest round-trip notation.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }

func (v StringValue) String() string { return v.Val }

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() Kind { return KindBool }

func (v BoolValue) String() string {
	if v.Val {
		return "true"
	}
	return "false"
}

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

func (NilValue) String() string { return "nil" }

// FunctionValue is a user function or method together with the environment
// it closed over. IsInitializer marks init methods, whose calls always yield
// the instance.
type FunctionValue struct {
	Name          string
	Decl          *ast.FunctionDecl
	Closure       *Environment
	IsInitializer bool
}

func (*FunctionValue) Kind() Kind { return KindFunction }

func (f *FunctionValue) String() string { return "<fn " + f.Name + ">" }

func (f *FunctionValue) Arity() int { return len(f.Decl.Params) }

// Bind returns a copy of the method closed over an environment that defines
// this as instance.
func (f *FunctionValue) Bind(instance Value) *FunctionValue {
	env := NewEnvironment(f.Closure)
	env.Define("this", instance)
	return &FunctionValue{
		Name:          f.Name,
		Decl:          f.Decl,
		Closure:       env,
		IsInitializer: f.IsInitializer,
	}
}

// NativeFunctionValue is a function implemented by the host.
type NativeFunctionValue struct {
	Name    string
	NumArgs int
	Fn      func(args []Value) (Value, error)
}

func (*NativeFunctionValue) Kind() Kind { return KindNativeFunction }

func (f *NativeFunctionValue) String() string { return "<native fn " + f.Name + ">" }

func (f *NativeFunctionValue) Arity() int { return f.NumArgs }

// ClassValue is a class declaration at runtime. Calling it constructs an
// instance, running init when the class or an ancestor defines one.
type ClassValue struct {
	Name       string
	Superclass *ClassValue
	Methods    map[string]*FunctionValue
}

func (*ClassValue) Kind() Kind { return KindClass }

func (c *ClassValue) String() string { return "<class '" + c.Name + "'>" }

// Method looks a method up by name, falling through to the superclass chain.
func (c *ClassValue) Method(name string) (*FunctionValue, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, true
	}
	if c.Superclass != nil {
		return c.Superclass.Method(name)
	}
	return nil, false
}

// Init returns the constructor when one is defined anywhere on the chain.
func (c *ClassValue) Init() (*FunctionValue, bool) {
	return c.Method("init")
}

// Arity is the constructor's arity, or zero for classes without init.
func (c *ClassValue) Arity() int {
	if init, ok := c.Init(); ok {
		return init.Arity()
	}
	return 0
}

// InstanceValue is an object: a bag of fields plus its class for method
// lookup.
type InstanceValue struct {
	Class  *ClassValue
	Fields map[string]Value
}

func NewInstance(class *ClassValue) *InstanceValue {
	return &InstanceValue{Class: class, Fields: map[string]Value{}}
}

func (*InstanceValue) Kind() Kind { return KindInstance }

func (i *InstanceValue) String() string { return i.Class.Name + " instance" }

// Truthy implements Lox truthiness: nil and false are falsey, everything
// else is truthy.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case NilValue:
		return false
	case BoolValue:
		return v.Val
	}
	return true
}

// Equals implements Lox equality: numbers, strings, and booleans compare by
// value, nil equals nil, and functions, classes, and instances compare by
// identity.
func Equals(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case NumberValue:
		return a.Val == b.(NumberValue).Val
	case StringValue:
		return a.Val == b.(StringValue).Val
	case BoolValue:
		return a.Val == b.(BoolValue).Val
	case NilValue:
		return true
	}
	return a == b
}
