// FILE: companion/internal/config/load.go
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvTransformFunc converts a configuration path to an environment variable name
type EnvTransformFunc func(path string) string

// LoadOptions configures how configuration is loaded from multiple sources
type LoadOptions struct {
	// Sources defines the precedence order (first = highest priority)
	// Default: [SourceCLI, SourceEnv, SourceFile, SourceDefault]
	Sources []Source

	// EnvPrefix is prepended to environment variable names
	// Example: "XRTK_" transforms "store.backend" to "XRTK_STORE_BACKEND"
	EnvPrefix string

	// EnvTransform customizes how paths map to environment variables
	EnvTransform EnvTransformFunc

	// ExtraOptions are command-line paths accepted without being registered,
	// such as the config file option
	ExtraOptions []string
}

// DefaultLoadOptions returns the standard load options
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Sources: []Source{SourceCLI, SourceEnv, SourceFile, SourceDefault},
	}
}

// LoadWithOptions loads configuration from every source in opts.
// A missing file is reported as ErrConfigNotFound joined with any other non-fatal errors.
func (c *Config) LoadWithOptions(filePath string, args []string, opts LoadOptions) error {
	c.mutex.Lock()
	c.options = opts
	c.mutex.Unlock()

	var loadErrors []error

	// Lowest precedence first so that later sources layer on top
	for i := len(opts.Sources) - 1; i >= 0; i-- {
		switch opts.Sources[i] {
		case SourceDefault:
			continue

		case SourceFile:
			if filePath == "" {
				continue
			}
			if err := c.loadFile(filePath); err != nil {
				if !errors.Is(err, ErrConfigNotFound) {
					return err
				}
				loadErrors = append(loadErrors, err)
			}

		case SourceEnv:
			c.loadEnv(opts)

		case SourceCLI:
			if err := c.loadCLI(args, opts.ExtraOptions); err != nil {
				return err
			}
		}
	}

	return errors.Join(loadErrors...)
}

// loadFile reads a TOML, YAML or JSON configuration file
func (c *Config) loadFile(path string) error {
	fileData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(fileData)
	}

	fileConfig := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(fileData, &fileConfig); err != nil {
			return fmt.Errorf("failed to parse TOML config file '%s': %w", path, err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(fileData))
		decoder.UseNumber()
		if err := decoder.Decode(&fileConfig); err != nil {
			return fmt.Errorf("failed to parse JSON config file '%s': %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(fileData, &fileConfig); err != nil {
			return fmt.Errorf("failed to parse YAML config file '%s': %w", path, err)
		}
	default:
		return fmt.Errorf("unable to determine config format for file '%s'", path)
	}

	flat := flattenMap(fileConfig, "")

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.configFilePath = path
	for itemPath, item := range c.items {
		if value, exists := flat[itemPath]; exists {
			item.values[SourceFile] = value
		} else {
			delete(item.values, SourceFile)
		}
		item.currentValue = c.computeValue(item)
		c.items[itemPath] = item
	}
	return nil
}

// loadEnv reads one environment variable per registered path
func (c *Config) loadEnv(opts LoadOptions) {
	transform := opts.EnvTransform
	if transform == nil {
		transform = defaultEnvTransform(opts.EnvPrefix)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for path, item := range c.items {
		value, exists := os.LookupEnv(transform(path))
		if !exists {
			continue
		}
		// Stored as a string; Scan converts it to the field type.
		item.values[SourceEnv] = value
		item.currentValue = c.computeValue(item)
		c.items[path] = item
	}
}

// loadCLI applies "--path value" and "--path=value" options.
// An option naming neither a registered path nor one of extra is an *UnknownOptionError.
func (c *Config) loadCLI(args []string, extra []string) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	paths := make([]string, 0, len(parsed))
	for path := range parsed {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	for _, path := range paths {
		item, exists := c.items[path]
		if !exists {
			if slices.Contains(extra, path) {
				continue
			}
			return &UnknownOptionError{Option: "--" + path}
		}
		value := parsed[path]
		item.values[SourceCLI] = value
		item.currentValue = c.computeValue(item)
		c.items[path] = item
	}
	return nil
}

// defaultEnvTransform creates the default environment variable transformer
func defaultEnvTransform(prefix string) EnvTransformFunc {
	return func(path string) string {
		env := strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
		return prefix + env
	}
}

// parseArgs turns "--key.subkey value", "--key=value" and "--flag" tokens into a flat map.
// Tokens that are not options are ignored.
func parseArgs(args []string) (map[string]string, error) {
	result := make(map[string]string)

	for i := 0; i < len(args); i++ {
		argContent, isOption := strings.CutPrefix(args[i], "--")
		if !isOption || argContent == "" {
			continue
		}

		keyPath, valueStr, hasValue := strings.Cut(argContent, "=")
		if !hasValue {
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				valueStr = args[i+1]
				i++
			} else {
				valueStr = "true"
			}
		}

		for _, segment := range strings.Split(keyPath, ".") {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}

		result[keyPath] = valueStr
	}

	return result, nil
}

// SplitArgs separates "--path value" tool options from the remaining tokens.
// Option values are consumed only when they do not start with '-', so
// single-dash setting tokens are never taken as values. A bare "--" ends
// option splitting.
func SplitArgs(args []string) (options, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = append(rest, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "--") {
			rest = append(rest, arg)
			continue
		}

		options = append(options, arg)
		if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			options = append(options, args[i+1])
			i++
		}
	}
	return options, rest
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	var sniffed any
	if err := json.Unmarshal(data, &sniffed); err == nil {
		return "json"
	}
	// TOML before YAML: most TOML documents are not valid YAML, but plain
	// "key: value" text is never valid TOML.
	if err := toml.Unmarshal(data, &map[string]any{}); err == nil {
		return "toml"
	}
	if err := yaml.Unmarshal(data, &sniffed); err == nil {
		return "yaml"
	}
	return ""
}
