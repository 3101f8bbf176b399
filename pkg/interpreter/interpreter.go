package interpreter

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/zaharidichev/rlox/pkg/ast"
	"github.com/zaharidichev/rlox/pkg/runtime"
)

// Interpreter executes resolved programs by walking the syntax tree.
// Program output (the print statement) goes to the configured writer, which
// defaults to stdout. An Interpreter keeps its global environment across
// calls, so a REPL can feed it one line at a time.
type Interpreter struct {
	globals *runtime.Environment
	env     *runtime.Environment
	out     io.Writer
	log     *zap.Logger
}

type Option func(*Interpreter)

// WithOutput redirects print output.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithLogger installs a logger for execution tracing.
func WithLogger(l *zap.Logger) Option {
	return func(i *Interpreter) { i.log = l }
}

func New(opts ...Option) *Interpreter {
	globals := runtime.NewEnvironment(nil)
	i := &Interpreter{
		globals: globals,
		env:     globals,
		out:     os.Stdout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	registerNatives(i.globals)
	return i
}

// Globals exposes the global environment, mostly for tests and the REPL.
func (i *Interpreter) Globals() *runtime.Environment {
	return i.globals
}

// Interpret executes a program. On failure the returned error is a
// *runtime.RuntimeError carrying the line, the message, and the call trace
// accumulated while unwinding.
func (i *Interpreter) Interpret(program []ast.Stmt) error {
	for _, s := range program {
		if err := i.execute(s); err != nil {
			if rerr, ok := err.(*runtime.RuntimeError); ok {
				rerr.Unwind("script", 0)
			}
			return err
		}
	}
	return nil
}

func (i *Interpreter) execute(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.ExprStmt:
		_, err := i.eval(s.Expr)
		return err
	case *ast.Print:
		v, err := i.eval(s.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.out, v.String())
		return nil
	case *ast.VarDecl:
		var value runtime.Value = runtime.NilValue{}
		if s.Init != nil {
			v, err := i.eval(s.Init)
			if err != nil {
				return err
			}
			value = v
		}
		i.log.Debug("set var", zap.String("name", s.Name), zap.String("value", value.String()))
		i.env.Define(s.Name, value)
		return nil
	case *ast.Block:
		return i.executeBlock(s.Stmts, i.env.Extend())
	case *ast.If:
		cond, err := i.eval(s.Cond)
		if err != nil {
			return err
		}
		if runtime.Truthy(cond) {
			return i.execute(s.Then)
		}
		if s.Else != nil {
			return i.execute(s.Else)
		}
		return nil
	case *ast.While:
		for {
			cond, err := i.eval(s.Cond)
			if err != nil {
				return err
			}
			if !runtime.Truthy(cond) {
				return nil
			}
			if err := i.execute(s.Body); err != nil {
				return err
			}
		}
	case *ast.Function:
		fn := &runtime.FunctionValue{Name: s.Name, Decl: s.Decl, Closure: i.env}
		i.env.Define(s.Name, fn)
		return nil
	case *ast.Return:
		var value runtime.Value = runtime.NilValue{}
		if s.Value != nil {
			v, err := i.eval(s.Value)
			if err != nil {
				return err
			}
			value = v
		}
		return &returnSignal{value: value}
	case *ast.Class:
		return i.executeClass(s)
	}
	return nil
}

func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *runtime.Environment) error {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()
	for _, s := range stmts {
		if err := i.execute(s); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) executeClass(c *ast.Class) error {
	var superclass *runtime.ClassValue
	if c.Superclass != nil {
		v, err := i.eval(c.Superclass)
		if err != nil {
			return err
		}
		sc, ok := v.(*runtime.ClassValue)
		if !ok {
			return runtime.NewRuntimeError(c.Superclass.Line, "Superclass must be a class.")
		}
		superclass = sc
	}

	i.env.Define(c.Name, runtime.NilValue{})

	methodEnv := i.env
	if superclass != nil {
		methodEnv = i.env.Extend()
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*runtime.FunctionValue, len(c.Methods))
	for _, m := range c.Methods {
		methods[m.Name] = &runtime.FunctionValue{
			Name:          m.Name,
			Decl:          m.Decl,
			Closure:       methodEnv,
			IsInitializer: m.Name == "init",
		}
	}

	class := &runtime.ClassValue{Name: c.Name, Superclass: superclass, Methods: methods}
	return i.assignVariable(c.Name, c.Scope, class, c.Line)
}

// assignVariable writes through a resolved scope annotation.
func (i *Interpreter) assignVariable(name string, scope ast.Scope, value runtime.Value, line int) error {
	var err error
	if depth, local := scope.Local(); local {
		err = i.env.AssignAt(depth, name, value)
	} else {
		err = i.globals.Assign(name, value)
	}
	if err != nil {
		return runtime.NewRuntimeError(line, "Undefined variable '%s'.", name)
	}
	return nil
}

func exprLine(e ast.Expr) int {
	switch e := e.(type) {
	case *ast.Literal:
		return e.Line
	case *ast.Grouping:
		return exprLine(e.Expr)
	case *ast.Unary:
		return e.Line
	case *ast.Binary:
		return e.Line
	case *ast.Logical:
		return e.Line
	case *ast.Var:
		return e.Line
	case *ast.Assign:
		return e.Line
	case *ast.Call:
		return e.Line
	case *ast.Get:
		return e.Line
	case *ast.Set:
		return e.Line
	case *ast.This:
		return e.Line
	case *ast.Super:
		return e.Line
	}
	return 0
}
