package vm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/zaharidichev/rlox/pkg/runtime"
)

// Disassemble writes a human-readable listing of the function's chunk,
// followed by the listings of any functions in its constant pool.
func Disassemble(w io.Writer, fn *Function) {
	fmt.Fprintf(w, "== %s ==\n", fn.Chunk.Name)
	for offset := 0; offset < fn.Chunk.Len(); {
		offset = disassembleInstruction(w, fn.Chunk, offset)
	}
	for _, constant := range fn.Chunk.Constants() {
		if nested, ok := constant.(*Function); ok {
			fmt.Fprintln(w)
			Disassemble(w, nested)
		}
	}
}

func disassembleInstruction(w io.Writer, chunk *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && chunk.Line(offset) == chunk.Line(offset-1) {
		fmt.Fprintf(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", chunk.Line(offset))
	}

	op := Op(chunk.At(offset))
	switch op {
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal:
		idx := chunk.At(offset + 1)
		fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, chunk.Constant(idx))
		return offset + 2
	case OpImmediate:
		var payload [8]byte
		for i := 0; i < 8; i++ {
			payload[i] = chunk.At(offset + 1 + i)
		}
		value := math.Float64frombits(binary.LittleEndian.Uint64(payload[:]))
		fmt.Fprintf(w, "%-16s %s\n", op, runtime.FormatNumber(value))
		return offset + 9
	case OpGetLocal, OpSetLocal, OpCall:
		fmt.Fprintf(w, "%-16s %4d\n", op, chunk.At(offset+1))
		return offset + 2
	case OpJump, OpJumpIfFalse:
		lo := uint16(chunk.At(offset + 1))
		hi := uint16(chunk.At(offset + 2))
		fmt.Fprintf(w, "%-16s -> %d\n", op, lo|hi<<8)
		return offset + 3
	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
}
