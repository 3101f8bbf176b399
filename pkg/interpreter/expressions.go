package interpreter

import (
	"github.com/zaharidichev/rlox/pkg/ast"
	"github.com/zaharidichev/rlox/pkg/runtime"
)

func (i *Interpreter) eval(e ast.Expr) (runtime.Value, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return literalValue(e), nil
	case *ast.Grouping:
		return i.eval(e.Expr)
	case *ast.Unary:
		return i.evalUnary(e)
	case *ast.Binary:
		return i.evalBinary(e)
	case *ast.Logical:
		return i.evalLogical(e)
	case *ast.Var:
		return i.lookupVariable(e.Name, e.Scope, e.Line)
	case *ast.Assign:
		value, err := i.eval(e.Value)
		if err != nil {
			return nil, err
		}
		if err := i.assignVariable(e.Name, e.Scope, value, e.Line); err != nil {
			return nil, err
		}
		return value, nil
	case *ast.Call:
		return i.evalCall(e)
	case *ast.Get:
		return i.evalGet(e)
	case *ast.Set:
		return i.evalSet(e)
	case *ast.This:
		return i.lookupVariable("this", e.Scope, e.Line)
	case *ast.Super:
		return i.evalSuper(e)
	}
	return nil, runtime.NewRuntimeError(exprLine(e), "Unsupported expression.")
}

func literalValue(l *ast.Literal) runtime.Value {
	switch l.Kind {
	case ast.LitNil:
		return runtime.NilValue{}
	case ast.LitTrue:
		return runtime.BoolValue{Val: true}
	case ast.LitFalse:
		return runtime.BoolValue{Val: false}
	case ast.LitNumber:
		return runtime.NumberValue{Val: l.Number}
	case ast.LitString:
		return runtime.StringValue{Val: l.Text}
	}
	return runtime.NilValue{}
}

func (i *Interpreter) lookupVariable(name string, scope ast.Scope, line int) (runtime.Value, error) {
	var (
		v   runtime.Value
		err error
	)
	if depth, local := scope.Local(); local {
		v, err = i.env.GetAt(depth, name)
	} else {
		v, err = i.globals.Get(name)
	}
	if err != nil {
		return nil, runtime.NewRuntimeError(line, "Undefined variable '%s'.", name)
	}
	return v, nil
}

func (i *Interpreter) evalUnary(e *ast.Unary) (runtime.Value, error) {
	operand, err := i.eval(e.Expr)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.OpNegate:
		n, ok := operand.(runtime.NumberValue)
		if !ok {
			return nil, runtime.NewRuntimeError(e.Line, "Invalid operand for operator '-', expected number")
		}
		return runtime.NumberValue{Val: -n.Val}, nil
	case ast.OpNot:
		return runtime.BoolValue{Val: !runtime.Truthy(operand)}, nil
	}
	return nil, runtime.NewRuntimeError(e.Line, "Unsupported unary operator.")
}

func (i *Interpreter) evalBinary(e *ast.Binary) (runtime.Value, error) {
	lhs, err := i.eval(e.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := i.eval(e.RHS)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpEqual:
		return runtime.BoolValue{Val: runtime.Equals(lhs, rhs)}, nil
	case ast.OpBangEq:
		return runtime.BoolValue{Val: !runtime.Equals(lhs, rhs)}, nil
	case ast.OpPlus:
		// A string on either side means concatenation was intended, so a
		// mismatch there is the "number or string" case rather than a
		// single-side numeric complaint.
		if ls, ok := lhs.(runtime.StringValue); ok {
			if rs, ok := rhs.(runtime.StringValue); ok {
				return runtime.StringValue{Val: ls.Val + rs.Val}, nil
			}
			return nil, runtime.NewRuntimeError(e.Line, "Invalid operands, expected number or string")
		}
		if _, ok := rhs.(runtime.StringValue); ok {
			return nil, runtime.NewRuntimeError(e.Line, "Invalid operands, expected number or string")
		}
		return i.numericOp(e, lhs, rhs)
	case ast.OpMinus, ast.OpStar, ast.OpSlash:
		return i.numericOp(e, lhs, rhs)
	case ast.OpGreaterThan, ast.OpGreaterThanEq, ast.OpLessThan, ast.OpLessThanEq:
		ln, lok := lhs.(runtime.NumberValue)
		rn, rok := rhs.(runtime.NumberValue)
		if !lok || !rok {
			return nil, runtime.NewRuntimeError(e.Line, "Invalid operands, expected number")
		}
		var result bool
		switch e.Op {
		case ast.OpGreaterThan:
			result = ln.Val > rn.Val
		case ast.OpGreaterThanEq:
			result = ln.Val >= rn.Val
		case ast.OpLessThan:
			result = ln.Val < rn.Val
		case ast.OpLessThanEq:
			result = ln.Val <= rn.Val
		}
		return runtime.BoolValue{Val: result}, nil
	}
	return nil, runtime.NewRuntimeError(e.Line, "Unsupported binary operator.")
}

func (i *Interpreter) numericOp(e *ast.Binary, lhs, rhs runtime.Value) (runtime.Value, error) {
	ln, lok := lhs.(runtime.NumberValue)
	rn, rok := rhs.(runtime.NumberValue)
	switch {
	case lok && rok:
	case lok:
		return nil, runtime.NewRuntimeError(e.Line, "Invalid operand on rhs, expected number")
	case rok:
		return nil, runtime.NewRuntimeError(e.Line, "Invalid operand on lhs, expected number")
	default:
		return nil, runtime.NewRuntimeError(e.Line, "Invalid operands, expected number or string")
	}
	switch e.Op {
	case ast.OpPlus:
		return runtime.NumberValue{Val: ln.Val + rn.Val}, nil
	case ast.OpMinus:
		return runtime.NumberValue{Val: ln.Val - rn.Val}, nil
	case ast.OpStar:
		return runtime.NumberValue{Val: ln.Val * rn.Val}, nil
	case ast.OpSlash:
		return runtime.NumberValue{Val: ln.Val / rn.Val}, nil
	}
	return nil, runtime.NewRuntimeError(e.Line, "Unsupported binary operator.")
}

// evalLogical short-circuits and yields the deciding operand itself, not a
// coerced boolean.
func (i *Interpreter) evalLogical(e *ast.Logical) (runtime.Value, error) {
	lhs, err := i.eval(e.LHS)
	if err != nil {
		return nil, err
	}
	truthy := runtime.Truthy(lhs)
	shortCircuit := (e.Op == ast.OpAnd && !truthy) || (e.Op == ast.OpOr && truthy)
	if shortCircuit {
		return lhs, nil
	}
	return i.eval(e.RHS)
}

func (i *Interpreter) evalGet(e *ast.Get) (runtime.Value, error) {
	object, err := i.eval(e.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := object.(*runtime.InstanceValue)
	if !ok {
		return nil, runtime.NewRuntimeError(e.Line, "Only instances have properties.")
	}
	if v, ok := instance.Fields[e.Name]; ok {
		return v, nil
	}
	if method, ok := instance.Class.Method(e.Name); ok {
		return method.Bind(instance), nil
	}
	return nil, runtime.NewRuntimeError(e.Line, "Undefined property '%s'.", e.Name)
}

func (i *Interpreter) evalSet(e *ast.Set) (runtime.Value, error) {
	object, err := i.eval(e.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := object.(*runtime.InstanceValue)
	if !ok {
		return nil, runtime.NewRuntimeError(e.Line, "Only instances have fields.")
	}
	value, err := i.eval(e.Value)
	if err != nil {
		return nil, err
	}
	instance.Fields[e.Name] = value
	return value, nil
}

func (i *Interpreter) evalSuper(e *ast.Super) (runtime.Value, error) {
	depth, local := e.Scope.Local()
	if !local {
		return nil, runtime.NewRuntimeError(e.Line, "Can't use 'super' outside of a class.")
	}
	superValue, err := i.env.GetAt(depth, "super")
	if err != nil {
		return nil, runtime.NewRuntimeError(e.Line, "Can't use 'super' outside of a class.")
	}
	superclass := superValue.(*runtime.ClassValue)

	// this lives one scope inside the one holding super.
	thisValue, err := i.env.GetAt(depth-1, "this")
	if err != nil {
		return nil, runtime.NewRuntimeError(e.Line, "Can't use 'super' outside of a class.")
	}

	method, ok := superclass.Method(e.Method)
	if !ok {
		return nil, runtime.NewRuntimeError(e.Line, "Undefined property '%s'.", e.Method)
	}
	return method.Bind(thisValue), nil
}
