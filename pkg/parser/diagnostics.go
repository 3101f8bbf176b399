package parser

import (
	"fmt"
	"strings"
)

// SyntaxError is a single scan or parse failure at a known line.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Line, e.Message)
}

func syntaxErrorf(line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// ErrorList aggregates the diagnostics collected across a whole scan and
// parse. Parsing keeps going after an error, so one bad program usually
// yields several entries.
type ErrorList []*SyntaxError

func (l ErrorList) Error() string {
	if len(l) == 0 {
		return "no syntax errors"
	}
	if len(l) == 1 {
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
}

// Messages renders every diagnostic, one per entry, in source order.
func (l ErrorList) Messages() []string {
	out := make([]string, len(l))
	for i, e := range l {
		out[i] = e.Error()
	}
	return out
}

func (l ErrorList) String() string {
	return strings.Join(l.Messages(), "\n")
}
