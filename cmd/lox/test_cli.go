package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/zaharidichev/rlox/pkg/driver"
	"github.com/zaharidichev/rlox/pkg/interpreter"
	"github.com/zaharidichev/rlox/pkg/runtime"
	"github.com/zaharidichev/rlox/pkg/vm"
)

type testTally struct {
	passed  int
	failed  int
	skipped int
}

// runTest executes every fixture suite in the manifest under each backend the
// suite declares, checking the expectation comments embedded in the scripts.
// An explicit --exec-mode restricts the run to that backend.
func (c *cli) runTest(args []string) int {
	manifestPath := filepath.Join("fixtures", "suite.yml")
	switch {
	case len(args) == 1:
		manifestPath = args[0]
	case len(args) > 1:
		fmt.Fprintf(os.Stderr, "lox test: unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return exitUsage
	}

	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lox test: %v\n", err)
		return exitRuntime
	}

	var tally testTally
	for _, suite := range manifest.Suites {
		if c.modeSet && !suite.RunsUnder(c.mode) {
			fmt.Fprintf(os.Stdout, "lox test: skip suite %s (does not run under %s)\n", suite.Name, c.mode)
			continue
		}
		scripts, err := driver.ListScripts(suite.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lox test: %v\n", err)
			return exitRuntime
		}
		for _, script := range scripts {
			c.runTestScript(suite, script, &tally)
		}
	}

	fmt.Fprintf(os.Stdout, "lox test: %d passed, %d failed, %d skipped\n",
		tally.passed, tally.failed, tally.skipped)
	if tally.failed > 0 {
		return exitUsage
	}
	return exitOK
}

func (c *cli) runTestScript(suite *driver.Suite, path string, tally *testTally) {
	base := filepath.Base(path)
	label := suite.Name + "/" + base
	if reason, ok := suite.Skip[base]; ok {
		tally.skipped++
		fmt.Fprintf(os.Stdout, "lox test: skip %s: %s\n", label, reason)
		return
	}

	src, err := os.ReadFile(path)
	if err != nil {
		c.fail(tally, label, "", "read fixture: %v", err)
		return
	}
	ex := driver.ScanExpectations(string(src))
	if !ex.HasExpectations() {
		c.fail(tally, label, "", "fixture asserts nothing")
		return
	}

	program, err := driver.LoadSource(path, string(src))
	if len(ex.ParseErrors) > 0 {
		c.checkParseFailure(tally, label, ex, err)
		return
	}
	if err != nil {
		c.fail(tally, label, "", "load fixture: %v", err)
		return
	}

	modes := suite.Modes
	if c.modeSet {
		modes = []driver.ExecMode{c.mode}
	}
	for _, mode := range modes {
		c.checkExecution(tally, label, mode, ex, program)
	}
}

func (c *cli) checkParseFailure(tally *testTally, label string, ex driver.Expectations, err error) {
	var perr *driver.ParseError
	if !errors.As(err, &perr) {
		c.fail(tally, label, "", "expected parse errors, got %v", err)
		return
	}
	got := perr.Errs.Messages()
	if len(got) != len(ex.ParseErrors) {
		c.fail(tally, label, "", "parse error count mismatch: expected %v, got %v", ex.ParseErrors, got)
		return
	}
	for i, want := range ex.ParseErrors {
		if !strings.Contains(got[i], want) {
			c.fail(tally, label, "", "parse error %d: expected %q in %q", i, want, got[i])
			return
		}
	}
	tally.passed++
	c.log.Debug("fixture passed", zap.String("fixture", label))
}

func (c *cli) checkExecution(tally *testTally, label string, mode driver.ExecMode, ex driver.Expectations, program *driver.Program) {
	var out bytes.Buffer
	var runErr error
	switch mode {
	case driver.ModeBytecode:
		script, cerr := vm.Compile(program.Stmts)
		if cerr != nil {
			c.fail(tally, label, mode, "compile: %v", cerr)
			return
		}
		runErr = vm.New(vm.WithOutput(&out)).Run(script)
	default:
		runErr = interpreter.New(interpreter.WithOutput(&out)).Interpret(program.Stmts)
	}

	if ex.HasRuntime {
		var rerr *runtime.RuntimeError
		if !errors.As(runErr, &rerr) {
			c.fail(tally, label, mode, "expected runtime error %q, got %v", ex.RuntimeError, runErr)
			return
		}
		if rerr.Message != ex.RuntimeError {
			c.fail(tally, label, mode, "runtime error mismatch: expected %q, got %q", ex.RuntimeError, rerr.Message)
			return
		}
	} else if runErr != nil {
		c.fail(tally, label, mode, "runtime error: %v", runErr)
		return
	}

	got := splitOutputLines(out.String())
	if !reflect.DeepEqual(got, ex.Output) {
		c.fail(tally, label, mode, "stdout mismatch: expected %v, got %v", ex.Output, got)
		return
	}
	tally.passed++
	c.log.Debug("fixture passed",
		zap.String("fixture", label),
		zap.String("exec-mode", string(mode)))
}

func (c *cli) fail(tally *testTally, label string, mode driver.ExecMode, format string, args ...any) {
	tally.failed++
	where := label
	if mode != "" {
		where = fmt.Sprintf("%s (%s)", label, mode)
	}
	fmt.Fprintf(os.Stderr, "lox test: FAIL %s: %s\n", where, fmt.Sprintf(format, args...))
}

func splitOutputLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
