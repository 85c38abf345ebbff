// FILE: companion/cmd/companion/main.go
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/openxr-toolkit/companion/internal/config"
	"github.com/openxr-toolkit/companion/internal/settings"
	"github.com/openxr-toolkit/companion/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args on a nil slice.
		args = []string{}
	}

	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		var usageErr *settings.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintln(stderr, usageErr.Message)
			fmt.Fprintln(stderr)
			writeUsage(stderr)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// environment is what every command needs after option loading.
type environment struct {
	opts   Options
	logger *logrus.Logger
	store  store.Store
	close  func()
}

// setup splits tool options from args, loads them and builds the logger.
// It returns the remaining (non-option) tokens. Callers must release the environment.
func setup(args []string, stderr io.Writer) (*environment, []string, error) {
	optionArgs, rest := config.SplitArgs(args)

	opts, cfg, loadErr := loadOptions(optionArgs)
	if loadErr != nil && !errors.Is(loadErr, config.ErrConfigNotFound) {
		var unknown *config.UnknownOptionError
		if errors.As(loadErr, &unknown) {
			return nil, nil, usageError("Invalid argument: %s", unknown.Option)
		}
		return nil, nil, loadErr
	}

	logger, closeLog, err := newLogger(opts.Log, stderr)
	if err != nil {
		return nil, nil, err
	}
	if loadErr != nil {
		logger.WithError(loadErr).Warn("Configuration file not found, using defaults")
	}
	logOptionSources(logger, cfg)

	return &environment{opts: opts, logger: logger, close: closeLog}, rest, nil
}

// openStore opens the settings store located by cfg. release closes it.
func (e *environment) openStore(cfg store.Config) error {
	s, err := store.Open(cfg, e.logger)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	e.store = s

	closeLog := e.close
	e.close = func() {
		if err := s.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close settings store")
		}
		closeLog()
	}
	return nil
}

func (e *environment) release() {
	e.close()
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   appName + " [--option value ...] [app <name>] (dump | (-<setting> <value>)...)",
		Short: "Adjust OpenXR Toolkit settings from the command line",
		Long: `companion reads, adjusts and dumps the per-application settings
of the OpenXR Toolkit API layer.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || wantsHelp(args) {
				writeUsage(stdout)
				return nil
			}

			env, rest, err := setup(args, stderr)
			if err != nil {
				return err
			}
			defer env.release()

			if len(rest) == 0 {
				writeUsage(stdout)
				return nil
			}
			if err := env.openStore(env.opts.Store); err != nil {
				return err
			}

			p := settings.NewProcessor(env.store, settings.ApplicationSettings,
				settings.WithLogger(env.logger), settings.WithOutput(stdout))
			return p.Run(rest)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetHelpFunc(func(*cobra.Command, []string) { writeUsage(stdout) })

	root.AddCommand(
		newGlobalCommand(stdout, stderr),
		newLayerCommand(stdout, stderr),
		newMappingCommand(stdout, stderr),
		newResetCommand(stderr),
		newVersionCommand(stdout),
	)
	return root
}

func wantsHelp(args []string) bool {
	options, rest := config.SplitArgs(args)
	if slices.Contains(options, "--help") {
		return true
	}
	return len(rest) == 1 && (rest[0] == "-h" || rest[0] == "-help")
}
