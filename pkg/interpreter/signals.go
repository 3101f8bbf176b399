package interpreter

import "github.com/zaharidichev/rlox/pkg/runtime"

// returnSignal unwinds a return statement through executeBlock as an error
// until the enclosing call catches it.
type returnSignal struct {
	value runtime.Value
}

func (*returnSignal) Error() string { return "return outside of function" }
