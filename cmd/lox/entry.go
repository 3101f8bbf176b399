package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/zaharidichev/rlox/pkg/driver"
	"github.com/zaharidichev/rlox/pkg/interpreter"
	"github.com/zaharidichev/rlox/pkg/runtime"
	"github.com/zaharidichev/rlox/pkg/vm"
)

// Exit codes: 1 for anything wrong with the invocation or the source,
// 2 for a failure while executing it.
const (
	exitOK      = 0
	exitUsage   = 1
	exitRuntime = 2
)

func (c *cli) runScript(args []string) int {
	path, ok := scriptArg("lox run", args)
	if !ok {
		return exitUsage
	}
	program, code := loadProgram(path)
	if program == nil {
		return code
	}
	c.log.Debug("executing script",
		zap.String("path", program.Path),
		zap.String("exec-mode", string(c.mode)))
	if err := c.execute(program); err != nil {
		c.reportRuntime(err)
		return exitRuntime
	}
	return exitOK
}

func (c *cli) runCheck(args []string) int {
	path, ok := scriptArg("lox check", args)
	if !ok {
		return exitUsage
	}
	program, code := loadProgram(path)
	if program == nil {
		return code
	}
	fmt.Fprintln(os.Stdout, "check: ok")
	return exitOK
}

// runDebug shows the compiled bytecode for a script, without executing.
func (c *cli) runDebug(args []string) int {
	path, ok := scriptArg("lox debug", args)
	if !ok {
		return exitUsage
	}
	program, code := loadProgram(path)
	if program == nil {
		return code
	}
	script, err := vm.Compile(program.Stmts)
	if err != nil {
		c.reportRuntime(err)
		return exitRuntime
	}
	vm.Disassemble(os.Stdout, script)
	return exitOK
}

func (c *cli) execute(program *driver.Program) error {
	switch c.mode {
	case driver.ModeBytecode:
		script, err := vm.Compile(program.Stmts)
		if err != nil {
			return err
		}
		return vm.New(vm.WithLogger(c.log)).Run(script)
	default:
		return interpreter.New(interpreter.WithLogger(c.log)).Interpret(program.Stmts)
	}
}

// loadProgram reads and front-ends a script, reporting diagnostics the same
// way for every subcommand: parse problems one per line with exit 1, I/O
// problems with exit 2.
func loadProgram(path string) (*driver.Program, int) {
	program, err := driver.Load(path)
	if err != nil {
		var perr *driver.ParseError
		if errors.As(err, &perr) {
			for _, msg := range perr.Errs.Messages() {
				fmt.Fprintf(os.Stderr, "[error]: Parse: %s\n", msg)
			}
			return nil, exitUsage
		}
		fmt.Fprintf(os.Stderr, "[error]: %v\n", err)
		return nil, exitRuntime
	}
	return program, exitOK
}

func (c *cli) reportRuntime(err error) {
	fmt.Fprintf(os.Stderr, "[error]: %v\n", err)
	var rerr *runtime.RuntimeError
	if c.verbose && errors.As(err, &rerr) {
		fmt.Fprintln(os.Stderr, rerr.Backtrace())
	}
}

func scriptArg(command string, args []string) (string, bool) {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "%s requires a source file\n", command)
		return "", false
	}
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return "", false
	}
	return args[0], true
}
