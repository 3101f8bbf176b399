package runtime

import (
	"strings"
	"testing"
)

func TestRuntimeErrorFormat(t *testing.T) {
	err := NewRuntimeError(3, "Undefined variable '%s'.", "x")
	want := "[line 3] Undefined variable 'x'."
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestBacktraceOrdersOutermostFirst(t *testing.T) {
	err := NewRuntimeError(9, "boom")
	// Unwinding pushes the innermost frame first.
	err.PushFrame("inner", 9)
	err.PushFrame("outer", 5)
	err.PushFrame("script", 2)

	got := err.Backtrace()
	want := "traceback (most recent call last):\n" +
		"  [line 2] in script\n" +
		"  [line 5] in outer\n" +
		"  [line 9] in inner\n" +
		"boom"
	if got != want {
		t.Fatalf("backtrace mismatch:\n%s\n--- want ---\n%s", got, want)
	}
	if err.Depth() != 3 {
		t.Fatalf("expected 3 frames, got %d", err.Depth())
	}
}

func TestUnwindPinsFrameLines(t *testing.T) {
	// Failure at line 9 inside inner; inner called at line 5; outer called
	// at line 2.
	err := NewRuntimeError(9, "boom")
	err.Unwind("inner", 5)
	err.Unwind("outer", 2)
	err.Unwind("script", 0)

	got := err.Backtrace()
	want := "traceback (most recent call last):\n" +
		"  [line 2] in script\n" +
		"  [line 5] in outer\n" +
		"  [line 9] in inner\n" +
		"boom"
	if got != want {
		t.Fatalf("backtrace mismatch:\n%s\n--- want ---\n%s", got, want)
	}
}

func TestBacktraceEmptyTrace(t *testing.T) {
	err := NewRuntimeError(1, "early failure")
	got := err.Backtrace()
	if !strings.HasSuffix(got, "early failure") {
		t.Fatalf("backtrace should end with the message, got %q", got)
	}
	if err.Depth() != 0 {
		t.Fatalf("expected no frames, got %d", err.Depth())
	}
}
