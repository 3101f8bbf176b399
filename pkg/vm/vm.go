package vm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/zaharidichev/rlox/pkg/runtime"
)

const maxFrames = 64

// VM executes compiled chunks over a value stack. Like the tree-walking
// backend it keeps globals across runs and prints to a configurable writer.
type VM struct {
	stack   []runtime.Value
	frames  []callFrame
	globals map[string]runtime.Value
	out     io.Writer
	log     *zap.Logger
}

// callFrame is one active call. ip indexes into the function's chunk;
// stackStart is the slot holding the callee, with arguments right above it.
type callFrame struct {
	fn         *Function
	ip         int
	stackStart int
	callLine   int
}

type Option func(*VM)

// WithOutput redirects print output.
func WithOutput(w io.Writer) Option {
	return func(v *VM) { v.out = w }
}

// WithLogger installs a logger for execution tracing.
func WithLogger(l *zap.Logger) Option {
	return func(v *VM) { v.log = l }
}

func New(opts ...Option) *VM {
	v := &VM{
		globals: map[string]runtime.Value{},
		out:     os.Stdout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.globals["clock"] = &runtime.NativeFunctionValue{
		Name:    "clock",
		NumArgs: 0,
		Fn: func([]runtime.Value) (runtime.Value, error) {
			return runtime.NumberValue{Val: float64(time.Now().UnixNano()) / 1e9}, nil
		},
	}
	return v
}

// Run executes a compiled script. On failure the returned error is a
// *runtime.RuntimeError with the trace of calls active at the time.
func (v *VM) Run(script *Function) error {
	v.stack = v.stack[:0]
	v.frames = v.frames[:0]
	v.push(script)
	v.frames = append(v.frames, callFrame{fn: script})

	if err := v.run(); err != nil {
		if rerr, ok := err.(*runtime.RuntimeError); ok {
			for i := len(v.frames) - 1; i >= 0; i-- {
				rerr.Unwind(v.frames[i].fn.Name, v.frames[i].callLine)
			}
		}
		return err
	}
	return nil
}

func (v *VM) run() error {
	for {
		frame := v.frame()
		if frame.ip >= frame.fn.Chunk.Len() {
			// Only the script chunk falls off its end; functions always
			// return explicitly.
			return nil
		}
		opOffset := frame.ip
		op := Op(v.readByte())
		switch op {
		case OpConstant:
			idx := v.readByte()
			v.push(frame.fn.Chunk.Constant(idx))
		case OpImmediate:
			bits := v.readU64()
			v.push(runtime.NumberValue{Val: math.Float64frombits(bits)})
		case OpNil:
			v.push(runtime.NilValue{})
		case OpTrue:
			v.push(runtime.BoolValue{Val: true})
		case OpFalse:
			v.push(runtime.BoolValue{Val: false})
		case OpPop:
			v.pop()
		case OpGetLocal:
			slot := v.readByte()
			v.push(v.stack[frame.stackStart+int(slot)])
		case OpSetLocal:
			slot := v.readByte()
			v.stack[frame.stackStart+int(slot)] = v.peek()
		case OpGetGlobal:
			name := v.constantName()
			val, ok := v.globals[name]
			if !ok {
				return v.runtimeError(opOffset, "Undefined variable '%s'.", name)
			}
			v.push(val)
		case OpDefineGlobal:
			name := v.constantName()
			val := v.pop()
			v.log.Debug("define global", zap.String("name", name), zap.String("value", val.String()))
			v.globals[name] = val
		case OpSetGlobal:
			name := v.constantName()
			if _, ok := v.globals[name]; !ok {
				return v.runtimeError(opOffset, "Undefined variable '%s'.", name)
			}
			v.globals[name] = v.peek()
		case OpEqual:
			b := v.pop()
			a := v.pop()
			v.push(runtime.BoolValue{Val: runtime.Equals(a, b)})
		case OpGreaterThan, OpLessThan:
			b := v.pop()
			a := v.pop()
			an, aok := a.(runtime.NumberValue)
			bn, bok := b.(runtime.NumberValue)
			if !aok || !bok {
				return v.runtimeError(opOffset, "Invalid operands, expected number")
			}
			if op == OpGreaterThan {
				v.push(runtime.BoolValue{Val: an.Val > bn.Val})
			} else {
				v.push(runtime.BoolValue{Val: an.Val < bn.Val})
			}
		case OpAdd:
			if err := v.add(opOffset); err != nil {
				return err
			}
		case OpSubtract, OpMultiply, OpDivide:
			if err := v.arithmetic(op, opOffset); err != nil {
				return err
			}
		case OpNot:
			v.push(runtime.BoolValue{Val: !runtime.Truthy(v.pop())})
		case OpNegate:
			n, ok := v.pop().(runtime.NumberValue)
			if !ok {
				return v.runtimeError(opOffset, "Invalid operand for operator '-', expected number")
			}
			v.push(runtime.NumberValue{Val: -n.Val})
		case OpPrint:
			fmt.Fprintln(v.out, v.pop().String())
		case OpJump:
			target := v.readU16()
			v.frame().ip = int(target)
		case OpJumpIfFalse:
			target := v.readU16()
			if !runtime.Truthy(v.peek()) {
				v.frame().ip = int(target)
			}
		case OpCall:
			arity := int(v.readByte())
			if err := v.call(arity, opOffset); err != nil {
				return err
			}
		case OpReturn:
			result := v.pop()
			returning := v.frames[len(v.frames)-1]
			v.frames = v.frames[:len(v.frames)-1]
			v.stack = v.stack[:returning.stackStart]
			v.push(result)
			if len(v.frames) == 0 {
				return nil
			}
		default:
			return v.runtimeError(opOffset, "Unknown opcode %d.", byte(op))
		}
	}
}

func (v *VM) add(opOffset int) error {
	b := v.pop()
	a := v.pop()
	// A string on either side means concatenation was intended, so a
	// mismatch there is the "number or string" case rather than a
	// single-side numeric complaint.
	if as, ok := a.(runtime.StringValue); ok {
		if bs, ok := b.(runtime.StringValue); ok {
			v.push(runtime.StringValue{Val: as.Val + bs.Val})
			return nil
		}
		return v.runtimeError(opOffset, "Invalid operands, expected number or string")
	}
	if _, ok := b.(runtime.StringValue); ok {
		return v.runtimeError(opOffset, "Invalid operands, expected number or string")
	}
	an, aok := a.(runtime.NumberValue)
	bn, bok := b.(runtime.NumberValue)
	switch {
	case aok && bok:
		v.push(runtime.NumberValue{Val: an.Val + bn.Val})
		return nil
	case aok:
		return v.runtimeError(opOffset, "Invalid operand on rhs, expected number")
	case bok:
		return v.runtimeError(opOffset, "Invalid operand on lhs, expected number")
	default:
		return v.runtimeError(opOffset, "Invalid operands, expected number or string")
	}
}

func (v *VM) arithmetic(op Op, opOffset int) error {
	b := v.pop()
	a := v.pop()
	an, aok := a.(runtime.NumberValue)
	bn, bok := b.(runtime.NumberValue)
	switch {
	case aok && bok:
	case aok:
		return v.runtimeError(opOffset, "Invalid operand on rhs, expected number")
	case bok:
		return v.runtimeError(opOffset, "Invalid operand on lhs, expected number")
	default:
		return v.runtimeError(opOffset, "Invalid operands, expected number or string")
	}
	switch op {
	case OpSubtract:
		v.push(runtime.NumberValue{Val: an.Val - bn.Val})
	case OpMultiply:
		v.push(runtime.NumberValue{Val: an.Val * bn.Val})
	case OpDivide:
		v.push(runtime.NumberValue{Val: an.Val / bn.Val})
	}
	return nil
}

func (v *VM) call(arity, opOffset int) error {
	calleeSlot := len(v.stack) - arity - 1
	callee := v.stack[calleeSlot]
	switch callee := callee.(type) {
	case *Function:
		if arity != callee.Arity {
			return v.runtimeError(opOffset, "Expected %d arguments but got %d.", callee.Arity, arity)
		}
		if len(v.frames) >= maxFrames {
			return v.runtimeError(opOffset, "Stack overflow.")
		}
		v.frames = append(v.frames, callFrame{
			fn:         callee,
			stackStart: calleeSlot,
			callLine:   v.frame().fn.Chunk.Line(opOffset),
		})
		return nil
	case *runtime.NativeFunctionValue:
		if arity != callee.Arity() {
			return v.runtimeError(opOffset, "Expected %d arguments but got %d.", callee.Arity(), arity)
		}
		args := v.stack[len(v.stack)-arity:]
		result, err := callee.Fn(args)
		if err != nil {
			return v.runtimeError(opOffset, "%s", err.Error())
		}
		v.stack = v.stack[:calleeSlot]
		v.push(result)
		return nil
	}
	return v.runtimeError(opOffset, "Can only call functions and classes.")
}

// runtimeError builds an error pinned to the source line of the instruction
// at opOffset in the current frame.
func (v *VM) runtimeError(opOffset int, format string, args ...any) error {
	return runtime.NewRuntimeError(v.frame().fn.Chunk.Line(opOffset), format, args...)
}

func (v *VM) frame() *callFrame {
	return &v.frames[len(v.frames)-1]
}

func (v *VM) readByte() byte {
	frame := v.frame()
	b := frame.fn.Chunk.At(frame.ip)
	frame.ip++
	return b
}

func (v *VM) readU16() uint16 {
	frame := v.frame()
	lo := uint16(frame.fn.Chunk.At(frame.ip))
	hi := uint16(frame.fn.Chunk.At(frame.ip + 1))
	frame.ip += 2
	return lo | hi<<8
}

func (v *VM) readU64() uint64 {
	frame := v.frame()
	chunk := frame.fn.Chunk
	var payload [8]byte
	for i := 0; i < 8; i++ {
		payload[i] = chunk.At(frame.ip + i)
	}
	frame.ip += 8
	return binary.LittleEndian.Uint64(payload[:])
}

// constantName reads a constant-index operand and returns the string it
// names. The compiler only emits string constants for the global ops.
func (v *VM) constantName() string {
	idx := v.readByte()
	return v.frame().fn.Chunk.Constant(idx).(runtime.StringValue).Val
}

func (v *VM) push(val runtime.Value) {
	v.stack = append(v.stack, val)
}

func (v *VM) pop() runtime.Value {
	val := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return val
}

func (v *VM) peek() runtime.Value {
	return v.stack[len(v.stack)-1]
}
