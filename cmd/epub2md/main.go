package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ErrUsage marks invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

func main() {
	configureMaxProcs(os.Args[1:], os.Stderr)
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// configureMaxProcs sets GOMAXPROCS from the container CPU quota.
// The worker pool is sized from GOMAXPROCS, so this runs before any command.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func configureMaxProcs(args []string, w io.Writer) {
	logf := func(string, ...interface{}) {}
	if slices.Contains(args, "-v") || slices.Contains(args, "--verbose") {
		logf = func(format string, a ...interface{}) {
			fmt.Fprintf(w, format+"\n", a...)
		}
	}
	_, _ = maxprocs.Set(maxprocs.Logger(logf))
}

// runMain dispatches the command in args (os.Args layout) and returns
// the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := args[1], args[2:]
	var err error
	switch {
	case isCommand(cmd, "convert"):
		err = runConvert(ctx, rest, env)
	case isCommand(cmd, "batch"):
		err = runBatch(ctx, rest, env)
	case isCommand(cmd, "doctor"):
		return runDoctorCmd(ctx, rest, env)
	case isCommand(cmd, "completion"):
		err = runCompletion(rest, env)
	case isCommand(cmd, "version", "--version"):
		fmt.Fprintf(env.Stdout, "epub2md %s\n", Version)
		return ExitSuccess
	case isCommand(cmd, "help", "-h", "--help"):
		runHelp(rest, env)
		return ExitSuccess
	case isEPUB(cmd):
		// Bare `epub2md book.epub` converts
		err = runConvert(ctx, args[1:], env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// isCommand reports whether arg is one of names.
func isCommand(arg string, names ...string) bool {
	return slices.Contains(names, arg)
}
