package driver

import (
	"bufio"
	"strings"
)

// Expectations captures the assertions embedded in a fixture script as
// comments:
//
//	// expect: <stdout line>
//	// expect runtime error: <message>
//	// expect parse error: <message substring>
type Expectations struct {
	Output       []string
	RuntimeError string
	HasRuntime   bool
	ParseErrors  []string
}

const (
	expectOutputMarker  = "// expect: "
	expectRuntimeMarker = "// expect runtime error: "
	expectParseMarker   = "// expect parse error: "
)

// ScanExpectations collects the expectation comments from src in order of
// appearance. A later runtime-error marker overwrites an earlier one; fixture
// scripts are expected to carry at most one.
func ScanExpectations(src string) Expectations {
	var ex Expectations
	scanner := bufio.NewScanner(strings.NewReader(src))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, expectRuntimeMarker); idx >= 0 {
			ex.RuntimeError = strings.TrimRight(line[idx+len(expectRuntimeMarker):], " \t")
			ex.HasRuntime = true
			continue
		}
		if idx := strings.Index(line, expectParseMarker); idx >= 0 {
			ex.ParseErrors = append(ex.ParseErrors, strings.TrimRight(line[idx+len(expectParseMarker):], " \t"))
			continue
		}
		if idx := strings.Index(line, expectOutputMarker); idx >= 0 {
			ex.Output = append(ex.Output, strings.TrimRight(line[idx+len(expectOutputMarker):], " \t"))
		}
	}
	return ex
}

// HasExpectations reports whether the script asserts anything at all.
func (ex Expectations) HasExpectations() bool {
	return len(ex.Output) > 0 || ex.HasRuntime || len(ex.ParseErrors) > 0
}
