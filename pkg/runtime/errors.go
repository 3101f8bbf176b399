package runtime

import (
	"fmt"
	"strings"

	"github.com/zaharidichev/rlox/pkg/list"
)

// Frame is one call on the execution stack at the moment an error unwound
// through it.
type Frame struct {
	Function string // callee name, or "script" for the top level
	Line     int
}

// RuntimeError is a failure raised during execution. Frames are prepended to
// Trace while the error unwinds, so reading the list head to tail walks from
// the outermost call down to the failure site.
type RuntimeError struct {
	Line    int
	Message string
	Trace   *list.List[Frame]

	// frameLine is where execution stood in the frame currently unwinding.
	// It starts at the failure line and is re-armed with the call site each
	// time Unwind crosses a call boundary.
	frameLine int
}

func NewRuntimeError(line int, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Line:      line,
		Message:   fmt.Sprintf(format, args...),
		Trace:     list.New[Frame](),
		frameLine: line,
	}
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Line, e.Message)
}

// PushFrame records the next frame out from the failure site.
func (e *RuntimeError) PushFrame(function string, line int) {
	e.Trace.Push(Frame{Function: function, Line: line})
}

// Unwind records that the error left function, pinning the frame at the line
// execution had reached inside it, then arms callsite as the next frame's
// line.
func (e *RuntimeError) Unwind(function string, callsite int) {
	e.PushFrame(function, e.frameLine)
	e.frameLine = callsite
}

// Backtrace renders the recorded frames with the most recent call last.
func (e *RuntimeError) Backtrace() string {
	var b strings.Builder
	b.WriteString("traceback (most recent call last):\n")
	e.Trace.ForEach(func(f Frame) {
		fmt.Fprintf(&b, "  [line %d] in %s\n", f.Line, f.Function)
	})
	b.WriteString(e.Message)
	return b.String()
}

// Depth is the number of frames recorded so far.
func (e *RuntimeError) Depth() int {
	return list.Fold(e.Trace, func(_ Frame, acc int) int { return acc + 1 }, 0)
}
