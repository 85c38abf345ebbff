// FILE: companion/cmd/companion/commands.go
package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openxr-toolkit/companion/internal/layer"
	"github.com/openxr-toolkit/companion/internal/mapping"
	"github.com/openxr-toolkit/companion/internal/settings"
	"github.com/openxr-toolkit/companion/internal/store"
	"github.com/spf13/cobra"
)

func usageError(format string, args ...any) error {
	return &settings.UsageError{Message: fmt.Sprintf(format, args...)}
}

func newGlobalCommand(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:                "global (dump | (-<setting> <value>)...)",
		Short:              "Adjust layer-wide settings",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, rest, err := setup(args, stderr)
			if err != nil {
				return err
			}
			defer env.release()

			if len(rest) == 0 {
				return usageError("Must specify dump or at least one setting")
			}
			if err := env.openStore(env.opts.Store.Global()); err != nil {
				return err
			}

			p := settings.NewProcessor(env.store, settings.GlobalSettings,
				settings.WithLogger(env.logger), settings.WithOutput(stdout))
			return p.RunScope(store.GlobalScope, rest)
		},
	}
}

func newLayerCommand(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:                "layer (status | enable | disable)",
		Short:              "Register or unregister the implicit API layer",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, rest, err := setup(args, stderr)
			if err != nil {
				return err
			}
			defer env.release()

			if len(rest) != 1 {
				return usageError("Must specify one of status, enable or disable")
			}

			reg, err := layer.New(env.opts.Layer, env.logger)
			if err != nil {
				return err
			}

			switch rest[0] {
			case "status":
				return layerStatus(reg, env.opts.Layer.Manifest, stdout, stderr)
			case "enable":
				return reg.Enable()
			case "disable":
				return reg.Disable()
			default:
				return usageError("Invalid argument: %s", rest[0])
			}
		},
	}
}

func layerStatus(reg layer.Registration, manifest string, stdout, stderr io.Writer) error {
	enabled, err := reg.Enabled()
	if err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(stdout, "%s %s\n", state, manifest)

	legacy, err := layer.FindLegacy(reg)
	if err != nil {
		return err
	}
	for _, entry := range legacy {
		fmt.Fprintf(stderr, "Warning: an older version of this software (OpenXR-NIS-Scaler) is registered: %s\n", entry)
	}
	return nil
}

func newResetCommand(stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:                "reset <app>",
		Short:              "Delete every stored setting of an application",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, rest, err := setup(args, stderr)
			if err != nil {
				return err
			}
			defer env.release()

			if len(rest) != 1 || rest[0] == "" {
				return usageError("Must specify exactly one application name")
			}
			if err := env.openStore(env.opts.Store); err != nil {
				return err
			}

			if err := env.store.DeleteScope(rest[0]); err != nil {
				return fmt.Errorf("failed to reset %s: %w", rest[0], err)
			}
			env.logger.WithField("app", rest[0]).Info("Application settings reset")
			return nil
		},
	}
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "%s %s (commit: %s, built: %s)\n", appName, version, commit, date)
		},
	}
}

func newMappingCommand(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:                "mapping (init | check | push) <file> | mapping set <file> (<name>=<value>)...",
		Short:              "Edit the hand-tracking gesture mapping file",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, rest, err := setup(args, stderr)
			if err != nil {
				return err
			}
			defer env.release()

			if len(rest) < 2 {
				return usageError("Must specify an action and a mapping file")
			}
			action, path, assignments := rest[0], rest[1], rest[2:]
			if action != "set" && len(assignments) > 0 {
				return usageError("Invalid argument: %s", assignments[0])
			}

			switch action {
			case "init":
				if err := mapping.Defaults().Save(path); err != nil {
					return err
				}
				env.logger.WithField("file", path).Info("Mapping defaults written")
				return nil

			case "check":
				m, err := mapping.Load(path)
				if err != nil {
					return err
				}
				_, err = m.WriteTo(stdout)
				return err

			case "set":
				if len(assignments) == 0 {
					return usageError("Must specify at least one <name>=<value>")
				}
				m, err := mapping.Load(path)
				if err != nil {
					return err
				}
				for _, assignment := range assignments {
					name, raw, ok := strings.Cut(assignment, "=")
					if !ok {
						return usageError("Invalid argument: %s", assignment)
					}
					if err := m.Set(name, raw); err != nil {
						return err
					}
				}
				return m.Save(path)

			case "push":
				m, err := mapping.Load(path)
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				if timeout := env.opts.Mapping.Timeout; timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}
				return mapping.Push(ctx, env.opts.Mapping.Address, m, env.logger)

			default:
				return usageError("Invalid argument: %s", action)
			}
		},
	}
}
