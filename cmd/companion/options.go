// FILE: companion/cmd/companion/options.go
package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/openxr-toolkit/companion/internal/config"
	"github.com/openxr-toolkit/companion/internal/layer"
	"github.com/openxr-toolkit/companion/internal/mapping"
	"github.com/openxr-toolkit/companion/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	appName   = "companion"
	envPrefix = "XRTK_"
	vendorDir = "OpenXR_Toolkit"
)

// Options is the tool configuration, loaded from defaults, a config file,
// XRTK_* environment variables and --path options.
type Options struct {
	Store   store.Config   `toml:"store"`
	Log     LogOptions     `toml:"log"`
	Layer   layer.Config   `toml:"layer"`
	Mapping MappingOptions `toml:"mapping"`
}

// MappingOptions locates the layer's live mapping listener.
type MappingOptions struct {
	Address string        `toml:"address"`
	Timeout time.Duration `toml:"timeout"`
}

// LogOptions configures diagnostics, which always go to stderr or a file.
type LogOptions struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

func defaultOptions() Options {
	opts := Options{
		Store: store.Config{
			Backend:    store.BackendFile,
			Root:       `SOFTWARE\` + vendorDir,
			Hive:       store.HiveCurrentUser,
			GlobalHive: store.HiveLocalMachine,
		},
		Log: LogOptions{
			Level:  "warn",
			Format: "text",
		},
		Mapping: MappingOptions{
			Address: mapping.DefaultAddress,
			Timeout: 2 * time.Second,
		},
	}
	if runtime.GOOS == "windows" {
		opts.Store.Backend = store.BackendRegistry
	}

	if exe, err := os.Executable(); err == nil {
		opts.Layer.Manifest = layer.DefaultManifest(exe)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		opts.Layer.ImplicitDir = filepath.Join(dir, "openxr", "1", "api_layers", "implicit.d")
	}
	return opts
}

// defaultStorePath places the file and sqlite stores in the user configuration directory.
func defaultStorePath(backend string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	name := "settings.toml"
	if backend == store.BackendSQLite {
		name = "settings.db"
	}
	return filepath.Join(dir, vendorDir, name)
}

// loadOptions builds Options from the tool options split off the command line.
// A configured but missing file is returned as config.ErrConfigNotFound alongside usable Options.
// An option matching no known path is a *config.UnknownOptionError.
func loadOptions(args []string) (Options, *config.Config, error) {
	discovery := config.DefaultDiscoveryOptions(appName)
	discovery.EnvVar = envPrefix + "CONFIG"

	cfg, err := config.NewBuilder().
		WithDefaults(defaultOptions()).
		WithEnvPrefix(envPrefix).
		WithArgs(args).
		WithFileDiscovery(discovery).
		WithValidator(validateOptions).
		Build()
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return Options{}, nil, err
	}

	var opts Options
	if scanErr := cfg.Scan("", &opts); scanErr != nil {
		return Options{}, nil, fmt.Errorf("failed to scan options: %w", scanErr)
	}
	if opts.Store.Path == "" {
		opts.Store.Path = defaultStorePath(opts.Store.Backend)
	}
	return opts, cfg, err
}

// logOptionSources records at debug level where every option value came from.
func logOptionSources(logger *logrus.Logger, cfg *config.Config) {
	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	if file := cfg.ConfigFile(); file != "" {
		logger.WithField("file", file).Debug("Configuration file loaded")
	}

	paths := cfg.Paths("")
	slices.Sort(paths)
	for _, path := range paths {
		source := config.SourceDefault
		for _, s := range []config.Source{config.SourceCLI, config.SourceEnv, config.SourceFile} {
			if _, ok := cfg.GetSource(path, s); ok {
				source = s
				break
			}
		}
		value, _ := cfg.String(path)
		logger.WithFields(logrus.Fields{
			"path":   path,
			"source": source,
			"value":  value,
		}).Debug("Option resolved")
	}
}

func validateOptions(c *config.Config) error {
	backend, err := c.String("store.backend")
	if err != nil {
		return err
	}
	if !slices.Contains(store.Backends, backend) {
		return fmt.Errorf("invalid store.backend %q (expected one of %v)", backend, store.Backends)
	}

	for _, path := range []string{"store.hive", "store.global_hive"} {
		hive, err := c.String(path)
		if err != nil {
			return err
		}
		if !slices.Contains(store.Hives, hive) {
			return fmt.Errorf("invalid %s %q (expected one of %v)", path, hive, store.Hives)
		}
	}

	level, err := c.String("log.level")
	if err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}

	format, err := c.String("log.format")
	if err != nil {
		return err
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log.format %q (expected text or json)", format)
	}

	address, err := c.String("mapping.address")
	if err != nil {
		return err
	}
	if _, _, err := net.SplitHostPort(address); err != nil {
		return fmt.Errorf("invalid mapping.address: %w", err)
	}
	return nil
}

// newLogger builds the logger described by opts. The returned closer releases the log file, if any.
func newLogger(opts LogOptions, stderr io.Writer) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetOutput(stderr)
	closer := func() {}

	if opts.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(file)
		closer = func() { file.Close() }
	}

	return logger, closer, nil
}
