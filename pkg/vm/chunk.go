package vm

import (
	"github.com/pkg/errors"

	"github.com/zaharidichev/rlox/pkg/runtime"
)

var errTooManyConstants = errors.New("Too many constants in one chunk.")

// Op is a bytecode instruction. Operands, where present, follow the opcode
// inline in the code stream.
type Op byte

const (
	// OpConstant pushes a chunk constant. Operand: 1-byte constant index.
	OpConstant Op = iota
	// OpImmediate pushes a number literal. Operand: 8-byte little-endian
	// IEEE 754 payload.
	OpImmediate
	OpNil
	OpTrue
	OpFalse
	OpPop
	// OpGetLocal and OpSetLocal address frame slots. Operand: 1-byte slot.
	OpGetLocal
	OpSetLocal
	// The global ops name their variable through a string constant.
	// Operand: 1-byte constant index.
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpEqual
	OpGreaterThan
	OpLessThan
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	// OpJump and OpJumpIfFalse carry a 2-byte little-endian absolute target.
	// OpJumpIfFalse peeks the condition; popping it is the compiler's job.
	OpJump
	OpJumpIfFalse
	// OpCall invokes the value sitting below the arguments. Operand: 1-byte
	// arity.
	OpCall
	OpReturn
)

func (op Op) String() string {
	switch op {
	case OpConstant:
		return "OP_CONSTANT"
	case OpImmediate:
		return "OP_IMMEDIATE"
	case OpNil:
		return "OP_NIL"
	case OpTrue:
		return "OP_TRUE"
	case OpFalse:
		return "OP_FALSE"
	case OpPop:
		return "OP_POP"
	case OpGetLocal:
		return "OP_GET_LOCAL"
	case OpSetLocal:
		return "OP_SET_LOCAL"
	case OpGetGlobal:
		return "OP_GET_GLOBAL"
	case OpDefineGlobal:
		return "OP_DEFINE_GLOBAL"
	case OpSetGlobal:
		return "OP_SET_GLOBAL"
	case OpEqual:
		return "OP_EQUAL"
	case OpGreaterThan:
		return "OP_GREATER_THAN"
	case OpLessThan:
		return "OP_LESS_THAN"
	case OpAdd:
		return "OP_ADD"
	case OpSubtract:
		return "OP_SUBTRACT"
	case OpMultiply:
		return "OP_MULTIPLY"
	case OpDivide:
		return "OP_DIVIDE"
	case OpNot:
		return "OP_NOT"
	case OpNegate:
		return "OP_NEGATE"
	case OpPrint:
		return "OP_PRINT"
	case OpJump:
		return "OP_JUMP"
	case OpJumpIfFalse:
		return "OP_JUMP_IF_FALSE"
	case OpCall:
		return "OP_CALL"
	case OpReturn:
		return "OP_RETURN"
	}
	return "OP_UNKNOWN"
}

// Chunk is a flat run of bytecode plus its constant pool and a per-byte line
// table for error reporting.
type Chunk struct {
	Name      string
	code      []byte
	lines     []int
	constants []runtime.Value
}

func NewChunk(name string) *Chunk {
	return &Chunk{Name: name}
}

func (c *Chunk) Len() int { return len(c.code) }

func (c *Chunk) At(offset int) byte { return c.code[offset] }

// Line reports the source line the byte at offset was generated from.
func (c *Chunk) Line(offset int) int {
	if offset < 0 || offset >= len(c.lines) {
		return 0
	}
	return c.lines[offset]
}

// Write appends one byte, recording the source line it came from.
func (c *Chunk) Write(b byte, line int) {
	c.code = append(c.code, b)
	c.lines = append(c.lines, line)
}

// WriteByteAt overwrites a previously written byte; used to patch jumps.
func (c *Chunk) WriteByteAt(offset int, b byte) {
	c.code[offset] = b
}

// AddConstant interns v in the constant pool. Indexes are a single byte, so
// a chunk holds at most 256 constants.
func (c *Chunk) AddConstant(v runtime.Value) (byte, error) {
	if len(c.constants) >= 256 {
		return 0, errTooManyConstants
	}
	c.constants = append(c.constants, v)
	return byte(len(c.constants) - 1), nil
}

// StringConstant interns s, reusing an existing entry when the pool already
// carries the same string. Global ops lean on this so each name is stored
// once.
func (c *Chunk) StringConstant(s string) (byte, error) {
	for i, v := range c.constants {
		if sv, ok := v.(runtime.StringValue); ok && sv.Val == s {
			return byte(i), nil
		}
	}
	return c.AddConstant(runtime.StringValue{Val: s})
}

func (c *Chunk) Constant(idx byte) runtime.Value {
	return c.constants[idx]
}

func (c *Chunk) Constants() []runtime.Value {
	return c.constants
}

// Function is a compiled callable. It doubles as a runtime value so it can
// live in globals and on the stack like any other.
type Function struct {
	Name  string
	Arity int
	Chunk *Chunk
}

func (*Function) Kind() runtime.Kind { return runtime.KindFunction }

func (f *Function) String() string { return "<fn " + f.Name + ">" }
