package interpreter

import (
	"errors"

	"github.com/zaharidichev/rlox/pkg/ast"
	"github.com/zaharidichev/rlox/pkg/runtime"
)

func (i *Interpreter) evalCall(e *ast.Call) (runtime.Value, error) {
	callee, err := i.eval(e.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(e.Args))
	for _, arg := range e.Args {
		v, err := i.eval(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	switch callee := callee.(type) {
	case *runtime.FunctionValue:
		if err := checkArity(callee.Arity(), len(args), e.Line); err != nil {
			return nil, err
		}
		return i.callFunction(callee, args, e.Line)
	case *runtime.NativeFunctionValue:
		if err := checkArity(callee.Arity(), len(args), e.Line); err != nil {
			return nil, err
		}
		v, err := callee.Fn(args)
		if err != nil {
			var rerr *runtime.RuntimeError
			if errors.As(err, &rerr) {
				return nil, err
			}
			return nil, runtime.NewRuntimeError(e.Line, "%s", err.Error())
		}
		return v, nil
	case *runtime.ClassValue:
		if err := checkArity(callee.Arity(), len(args), e.Line); err != nil {
			return nil, err
		}
		return i.instantiate(callee, args, e.Line)
	}
	return nil, runtime.NewRuntimeError(e.Line, "Can only call functions and classes.")
}

func checkArity(want, got, line int) error {
	if want != got {
		return runtime.NewRuntimeError(line, "Expected %d arguments but got %d.", want, got)
	}
	return nil
}

// callFunction runs fn with args bound in a fresh environment chained to the
// captured closure. Errors escaping the body collect a trace frame naming the
// function and the call site.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value, line int) (runtime.Value, error) {
	env := runtime.NewEnvironment(fn.Closure)
	for idx, param := range fn.Decl.Params {
		env.Define(param.Name, args[idx])
	}

	err := i.executeBlock(fn.Decl.Body, env)
	if err != nil {
		var ret *returnSignal
		if errors.As(err, &ret) {
			if fn.IsInitializer {
				return i.initializerThis(fn, line)
			}
			return ret.value, nil
		}
		var rerr *runtime.RuntimeError
		if errors.As(err, &rerr) {
			rerr.Unwind(fn.Name, line)
		}
		return nil, err
	}
	if fn.IsInitializer {
		return i.initializerThis(fn, line)
	}
	return runtime.NilValue{}, nil
}

// initializerThis resolves the instance an init call must yield. Bind placed
// this in the closure's immediate scope.
func (i *Interpreter) initializerThis(fn *runtime.FunctionValue, line int) (runtime.Value, error) {
	this, err := fn.Closure.GetAt(0, "this")
	if err != nil {
		return nil, runtime.NewRuntimeError(line, "Undefined variable 'this'.")
	}
	return this, nil
}

func (i *Interpreter) instantiate(class *runtime.ClassValue, args []runtime.Value, line int) (runtime.Value, error) {
	instance := runtime.NewInstance(class)
	if init, ok := class.Init(); ok {
		if _, err := i.callFunction(init.Bind(instance), args, line); err != nil {
			return nil, err
		}
	}
	return instance, nil
}
