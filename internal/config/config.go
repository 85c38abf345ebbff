// FILE: companion/internal/config/config.go

// Package config provides layered configuration for the companion tool.
// Values are registered with defaults and then overridden by a config file,
// environment variables and command-line options, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Source represents a configuration source, used to define load precedence
type Source string

const (
	// SourceDefault represents use of registered default values
	SourceDefault Source = "default"
	// SourceFile represents values loaded from a configuration file
	SourceFile Source = "file"
	// SourceEnv represents values loaded from environment variables
	SourceEnv Source = "env"
	// SourceCLI represents values loaded from command-line options
	SourceCLI Source = "cli"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	// It is not fatal: the tool runs on defaults, environment and options.
	ErrConfigNotFound = errors.New("configuration file not found")
	// ErrCLIParse is returned when command-line options cannot be parsed.
	ErrCLIParse = errors.New("failed to parse command-line options")
)

// UnknownOptionError reports a command-line option that matches no registered path.
type UnknownOptionError struct {
	Option string
}

func (e *UnknownOptionError) Error() string {
	return "unknown option: " + e.Option
}

// configItem holds the default and the per-source values for a path
type configItem struct {
	defaultValue any
	values       map[Source]any
	currentValue any
}

// Config is a thread-safe registry of dot-separated configuration paths.
type Config struct {
	items          map[string]configItem
	options        LoadOptions
	configFilePath string
	mutex          sync.RWMutex
}

// New creates an empty Config with the default load options.
func New() *Config {
	return &Config{
		items:   make(map[string]configItem),
		options: DefaultLoadOptions(),
	}
}

// register makes a configuration path known to the Config instance.
// The path should be dot-separated (e.g., "store.backend").
// Each segment of the path must be a valid TOML key identifier.
func (c *Config) register(path string, defaultValue any) error {
	if path == "" {
		return fmt.Errorf("registration path cannot be empty")
	}

	for _, segment := range strings.Split(path, ".") {
		if !isValidKeySegment(segment) {
			return fmt.Errorf("invalid path segment %q in path %q", segment, path)
		}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[path] = configItem{
		defaultValue: defaultValue,
		values:       make(map[Source]any),
		currentValue: defaultValue,
	}
	return nil
}

// RegisterStruct registers every leaf field of a struct, recursing into nested structs.
// Paths come from `toml:"..."` tags, falling back to the field name.
func (c *Config) RegisterStruct(prefix string, structWithDefaults any) error {
	v := reflect.ValueOf(structWithDefaults)

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("RegisterStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("RegisterStruct requires a struct or struct pointer, got %T", structWithDefaults)
	}

	var errs []string
	c.registerFields(v, prefix, "", &errs)

	if len(errs) > 0 {
		return fmt.Errorf("failed to register %d field(s): %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) registerFields(v reflect.Value, pathPrefix, fieldPath string, errs *[]string) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("toml")
		if tag == "-" {
			continue
		}

		key := field.Name
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			key = name
		}

		currentPath := key
		if pathPrefix != "" {
			currentPath = strings.TrimSuffix(pathPrefix, ".") + "." + key
		}

		if fieldValue.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct {
			if fieldValue.IsNil() {
				continue
			}
			fieldValue = fieldValue.Elem()
		}
		if fieldValue.Kind() == reflect.Struct {
			c.registerFields(fieldValue, currentPath, fieldPath+field.Name+".", errs)
			continue
		}

		if err := c.register(currentPath, fieldValue.Interface()); err != nil {
			*errs = append(*errs, fmt.Sprintf("field %s%s (path %s): %v", fieldPath, field.Name, currentPath, err))
		}
	}
}

// Paths returns all registered paths with the given prefix.
func (c *Config) Paths(prefix string) []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var paths []string
	for path := range c.items {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	return paths
}

// Get returns the current value of a path and whether it is registered.
func (c *Config) Get(path string) (any, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, registered := c.items[path]
	if !registered {
		return nil, false
	}
	return item.currentValue, true
}

// GetSource returns the value a specific source provided for a path.
func (c *Config) GetSource(path string, source Source) (any, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, registered := c.items[path]
	if !registered {
		return nil, false
	}
	val, exists := item.values[source]
	return val, exists
}

// String returns the current value of a path formatted as a string.
func (c *Config) String(path string) (string, error) {
	val, found := c.Get(path)
	if !found {
		return "", fmt.Errorf("path not registered: %s", path)
	}
	if val == nil {
		return "", nil
	}
	if s, ok := val.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", val), nil
}

// ConfigFile returns the path of the last loaded configuration file.
func (c *Config) ConfigFile() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.configFilePath
}

// computeValue picks the value of the highest precedence source that provided one.
// Callers must hold the write lock.
func (c *Config) computeValue(item configItem) any {
	for _, source := range c.options.Sources {
		if source == SourceDefault {
			return item.defaultValue
		}
		if val, exists := item.values[source]; exists {
			return val
		}
	}
	return item.defaultValue
}
