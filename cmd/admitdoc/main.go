package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// dotEnvFile is loaded from the working directory when present.
const dotEnvFile = ".env"

// commands lists the top-level command names.
var commands = []string{"generate", "prompt", "batch", "templates", "config", "doctor", "completion", "version", "help"}

func main() {
	verbose := slices.Contains(os.Args[1:], "-v") || slices.Contains(os.Args[1:], "--verbose")

	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	loadDotEnv(dotEnvFile, os.Stderr)

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// loadDotEnv sets ADMITDOC_* and other variables from path without
// overriding variables already set. A missing file is not an error.
func loadDotEnv(path string, w io.Writer) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "warning: ignoring %s: %v\n", path, err)
	}
}

// runMain runs the CLI and returns the process exit code.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	err := run(ctx, args[1:], env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
	}
	return exitCodeFor(err)
}

// run dispatches args (without the program name) to a command.
func run(ctx context.Context, args []string, env *Environment) error {
	cmd, rest := args[0], args[1:]
	if cmd == "-h" || cmd == "--help" {
		cmd = "help"
	}
	if !isCommand(cmd) {
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command: %s", ErrUsage, cmd)
	}

	switch cmd {
	case "generate":
		return runGenerate(ctx, rest, env)
	case "prompt":
		return runPrompt(ctx, rest, env)
	case "batch":
		return runBatch(ctx, rest, env)
	case "templates":
		return runTemplates(ctx, rest, env)
	case "config":
		return runConfig(rest, env)
	case "doctor":
		return runDoctor(ctx, rest, env)
	case "completion":
		return runCompletion(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "go-admitdoc %s\n", Version)
		return nil
	default: // help
		return runHelp(rest, env)
	}
}

// isCommand reports whether arg names a top-level command.
func isCommand(arg string) bool {
	return slices.Contains(commands, arg)
}
