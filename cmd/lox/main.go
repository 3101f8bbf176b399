package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zaharidichev/rlox/pkg/driver"
)

const cliVersion = "lox 0.1.0"

// cli is the flag-derived context shared by every subcommand.
type cli struct {
	mode    driver.ExecMode
	modeSet bool
	verbose bool
	log     *zap.Logger
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitUsage
	}

	flags := flag.NewFlagSet("lox", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	modeName := flags.String("exec-mode", string(driver.ModeTreewalker), "execution backend: treewalker or bytecode")
	verbose := flags.Bool("verbose", false, "log execution detail")
	showHelp := flags.BoolP("help", "h", false, "print usage and exit")
	showVersion := flags.BoolP("version", "V", false, "print the version and exit")
	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		return exitUsage
	}

	switch {
	case *showHelp:
		printUsage()
		return exitOK
	case *showVersion:
		fmt.Fprintln(os.Stdout, cliVersion)
		return exitOK
	}

	mode, err := driver.ParseExecMode(*modeName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	logger := newLogger(*verbose)
	defer logger.Sync()
	c := &cli{mode: mode, modeSet: flags.Changed("exec-mode"), verbose: *verbose, log: logger}

	remaining := flags.Args()
	if len(remaining) == 0 {
		printUsage()
		return exitUsage
	}

	switch remaining[0] {
	case "help":
		printUsage()
		return exitOK
	case "version":
		fmt.Fprintln(os.Stdout, cliVersion)
		return exitOK
	case "run":
		return c.runScript(remaining[1:])
	case "check":
		return c.runCheck(remaining[1:])
	case "debug":
		return c.runDebug(remaining[1:])
	case "test":
		return c.runTest(remaining[1:])
	case "repl":
		return c.runRepl(remaining[1:])
	default:
		return c.runScript(remaining)
	}
}

// newLogger builds the console logger. Log lines go to stderr so program
// output on stdout stays clean for the fixture harness.
func newLogger(verbose bool) *zap.Logger {
	level := zap.NewAtomicLevel()
	if verbose {
		level.SetLevel(zap.DebugLevel)
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
}
