// FILE: companion/internal/config/builder.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidatorFunc validates a fully loaded Config.
type ValidatorFunc func(c *Config) error

// Builder provides a fluent interface for building configurations
type Builder struct {
	cfg        *Config
	opts       LoadOptions
	defaults   any
	file       string
	args       []string
	validators []ValidatorFunc
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		cfg:  New(),
		opts: DefaultLoadOptions(),
	}
}

// WithDefaults sets the struct containing default values
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithEnvPrefix sets the environment variable prefix
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithArgs sets the command-line options
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithValidator adds a validation function that runs at the end of the build.
// Validators run in the order they are added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build registers defaults, loads every source and runs the validators.
// A missing configuration file is returned as ErrConfigNotFound together with a usable Config.
func (b *Builder) Build() (*Config, error) {
	if b.defaults != nil {
		if err := b.cfg.RegisterStruct("", b.defaults); err != nil {
			return nil, fmt.Errorf("failed to register defaults: %w", err)
		}
	}

	loadErr := b.cfg.LoadWithOptions(b.file, b.args, b.opts)
	if loadErr != nil && !errors.Is(loadErr, ErrConfigNotFound) {
		return nil, loadErr
	}

	for _, validator := range b.validators {
		if err := validator(b.cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return b.cfg, loadErr
}

// FileDiscoveryOptions configures automatic config file discovery
type FileDiscoveryOptions struct {
	// Base name of config file (without extension)
	Name string

	// Extensions to try, in order
	Extensions []string

	// Custom search paths, searched before the defaults
	Paths []string

	// Environment variable holding an explicit path
	EnvVar string

	// CLI option holding an explicit path (e.g., "--config")
	CLIFlag string

	// Search the per-user configuration directory (os.UserConfigDir)
	UseUserConfigDir bool

	// Search the current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns the discovery rules for appName.
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:             appName,
		Extensions:       []string{".toml", ".yaml", ".yml", ".json"},
		EnvVar:           strings.ToUpper(appName) + "_CONFIG",
		CLIFlag:          "--config",
		UseUserConfigDir: true,
		UseCurrentDir:    true,
	}
}

// WithFileDiscovery selects the configuration file: an explicit CLI option wins,
// then the environment variable, then the first existing file in the search paths.
// Call it after WithArgs. Finding nothing is not an error.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	if opts.CLIFlag != "" {
		b.opts.ExtraOptions = append(b.opts.ExtraOptions, strings.TrimPrefix(opts.CLIFlag, "--"))
		for i, arg := range b.args {
			if arg == opts.CLIFlag && i+1 < len(b.args) {
				return b.WithFile(b.args[i+1])
			}
			if value, found := strings.CutPrefix(arg, opts.CLIFlag+"="); found {
				return b.WithFile(value)
			}
		}
	}

	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return b.WithFile(path)
		}
	}

	searchPaths := append([]string{}, opts.Paths...)
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			searchPaths = append(searchPaths, cwd)
		}
	}
	if opts.UseUserConfigDir {
		if dir, err := os.UserConfigDir(); err == nil {
			searchPaths = append(searchPaths, filepath.Join(dir, opts.Name))
		}
	}

	for _, dir := range searchPaths {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return b.WithFile(path)
			}
		}
	}

	return b
}
