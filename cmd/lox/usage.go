package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lox [--exec-mode=treewalker|bytecode] <script.lox>")
	fmt.Fprintln(os.Stderr, "  lox [--exec-mode=treewalker|bytecode] run <script.lox>")
	fmt.Fprintln(os.Stderr, "  lox check <script.lox>")
	fmt.Fprintln(os.Stderr, "  lox debug <script.lox>")
	fmt.Fprintln(os.Stderr, "  lox [--exec-mode=treewalker|bytecode] test [suite.yml]")
	fmt.Fprintln(os.Stderr, "  lox [--exec-mode=treewalker|bytecode] repl")
	fmt.Fprintln(os.Stderr, "  lox version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "  run   - Execute a script (the default when given a bare file).")
	fmt.Fprintln(os.Stderr, "  check - Parse and resolve a script without executing.")
	fmt.Fprintln(os.Stderr, "  debug - Show the compiled bytecode for a script, without executing.")
	fmt.Fprintln(os.Stderr, "  test  - Run the fixture suites listed in a suite manifest.")
	fmt.Fprintln(os.Stderr, "  repl  - Read and execute statements interactively.")
}
