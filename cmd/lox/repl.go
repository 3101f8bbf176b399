package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/zaharidichev/rlox/pkg/ast"
	"github.com/zaharidichev/rlox/pkg/driver"
	"github.com/zaharidichev/rlox/pkg/interpreter"
	"github.com/zaharidichev/rlox/pkg/parser"
	"github.com/zaharidichev/rlox/pkg/resolver"
	"github.com/zaharidichev/rlox/pkg/vm"
)

// replBackend executes one line's worth of statements against state that
// survives between lines.
type replBackend func([]ast.Stmt) error

// runRepl reads statements line by line and executes them against a backend
// whose globals stay alive between lines. A bare expression is echoed as if
// it had been passed to print.
func (c *cli) runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "lox repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return exitUsage
	}

	eval := c.newReplBackend()
	fmt.Fprintf(os.Stdout, "%s (%s backend, Ctrl-D to exit)\n", cliVersion, c.mode)

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		replLine(eval, line)
	}
	fmt.Fprintln(os.Stdout)
	if err := in.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "[error]: %v\n", err)
		return exitRuntime
	}
	return exitOK
}

func (c *cli) newReplBackend() replBackend {
	if c.mode == driver.ModeBytecode {
		machine := vm.New(vm.WithLogger(c.log))
		return func(stmts []ast.Stmt) error {
			script, err := vm.Compile(stmts)
			if err != nil {
				return err
			}
			return machine.Run(script)
		}
	}
	interp := interpreter.New(interpreter.WithLogger(c.log))
	return interp.Interpret
}

// replLine runs one line. Errors are reported but never end the session.
func replLine(eval replBackend, line string) {
	stmts, errs := parseReplLine(line)
	if len(errs) == 0 {
		errs = resolver.Resolve(stmts)
	}
	if len(errs) > 0 {
		for _, msg := range errs.Messages() {
			fmt.Fprintf(os.Stderr, "[error]: Parse: %s\n", msg)
		}
		return
	}
	if err := eval(stmts); err != nil {
		fmt.Fprintf(os.Stderr, "[error]: %v\n", err)
	}
}

// parseReplLine prefers reading the line as a bare expression so its value
// can be echoed; anything else goes through the statement grammar.
func parseReplLine(line string) ([]ast.Stmt, parser.ErrorList) {
	if expr, errs := parser.ParseExpression(line); len(errs) == 0 {
		return []ast.Stmt{&ast.Print{Expr: expr, Line: 1}}, nil
	}
	return parser.Parse(line)
}
