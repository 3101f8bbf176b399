package interpreter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/zaharidichev/rlox/pkg/driver"
	"github.com/zaharidichev/rlox/pkg/runtime"
	"github.com/zaharidichev/rlox/pkg/vm"
)

// TestFixtures runs every script in the fixture corpus under each backend its
// suite declares and checks the expectation comments embedded in the script.
func TestFixtures(t *testing.T) {
	manifest, err := driver.LoadManifest(filepath.Join("..", "..", "fixtures", "suite.yml"))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	for _, suite := range manifest.Suites {
		scripts, err := driver.ListScripts(suite.Dir)
		if err != nil {
			t.Fatalf("list %s: %v", suite.Dir, err)
		}
		if len(scripts) == 0 {
			t.Fatalf("suite %s has no scripts", suite.Name)
		}
		for _, script := range scripts {
			suite := suite
			script := script
			t.Run(suite.Name+"/"+filepath.Base(script), func(t *testing.T) {
				runFixture(t, suite, script)
			})
		}
	}
}

func runFixture(t *testing.T, suite *driver.Suite, path string) {
	t.Helper()
	if reason, ok := suite.Skip[filepath.Base(path)]; ok {
		t.Skip(reason)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	ex := driver.ScanExpectations(string(src))
	if !ex.HasExpectations() {
		t.Fatalf("fixture asserts nothing")
	}

	program, err := driver.LoadSource(path, string(src))
	if len(ex.ParseErrors) > 0 {
		var perr *driver.ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected parse errors, got %v", err)
		}
		got := perr.Errs.Messages()
		if len(got) != len(ex.ParseErrors) {
			t.Fatalf("parse error count mismatch: expected %v, got %v", ex.ParseErrors, got)
		}
		for i, want := range ex.ParseErrors {
			if !strings.Contains(got[i], want) {
				t.Fatalf("parse error %d: expected %q in %q", i, want, got[i])
			}
		}
		return
	}
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	for _, mode := range suite.Modes {
		mode := mode
		t.Run(string(mode), func(t *testing.T) {
			stdout, runErr := runFixtureMode(t, mode, program)

			if ex.HasRuntime {
				var rerr *runtime.RuntimeError
				if !errors.As(runErr, &rerr) {
					t.Fatalf("expected runtime error, got %v", runErr)
				}
				if rerr.Message != ex.RuntimeError {
					t.Fatalf("runtime error mismatch: expected %q, got %q", ex.RuntimeError, rerr.Message)
				}
			} else if runErr != nil {
				t.Fatalf("runtime error: %v", runErr)
			}

			if !reflect.DeepEqual(stdout, ex.Output) {
				t.Fatalf("stdout mismatch: expected %v, got %v", ex.Output, stdout)
			}
		})
	}
}

func runFixtureMode(t *testing.T, mode driver.ExecMode, program *driver.Program) ([]string, error) {
	t.Helper()
	var out bytes.Buffer
	var err error
	switch mode {
	case driver.ModeTreewalker:
		err = New(WithOutput(&out)).Interpret(program.Stmts)
	case driver.ModeBytecode:
		fn, cerr := vm.Compile(program.Stmts)
		if cerr != nil {
			t.Fatalf("compile fixture: %v", cerr)
		}
		err = vm.New(vm.WithOutput(&out)).Run(fn)
	default:
		t.Fatalf("unknown mode %q", mode)
	}
	return splitOutputLines(out.String()), err
}

func splitOutputLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
