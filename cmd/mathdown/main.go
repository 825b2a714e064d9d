package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args[1:], DefaultEnv()))
}

// runMain parses args, renders the discovered files, and returns the exit code.
func runMain(args []string, env *Environment) int {
	flags, positional, err := parseFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		env.Logger.Error(err)
		return ExitUsage
	}

	if flags.version {
		fmt.Fprintf(env.Stdout, "mathdown %s\n", Version)
		return ExitSuccess
	}

	setLogLevel(env.Logger, flags.quiet, flags.verbose)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		env.Logger.Debugf(format, args...)
	}))

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runConvert(ctx, positional, flags, env); err != nil {
		env.Logger.WithError(err).Error("conversion failed" + hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// setLogLevel maps --quiet and --verbose to a logrus level.
func setLogLevel(logger *logrus.Logger, quiet, verbose bool) {
	switch {
	case quiet:
		logger.SetLevel(logrus.ErrorLevel)
	case verbose:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
}
