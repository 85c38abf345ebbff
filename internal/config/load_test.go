// FILE: companion/internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newStoreConfig(t *testing.T) *Config {
	t.Helper()
	cfg := New()
	require.NoError(t, cfg.register("store.backend", "file"))
	require.NoError(t, cfg.register("store.path", "default.toml"))
	require.NoError(t, cfg.register("log.level", "warn"))
	return cfg
}

func TestSourcePrecedence(t *testing.T) {
	file := writeFile(t, "companion.toml", "[store]\nbackend = \"sqlite\"\npath = \"file.db\"\n")
	t.Setenv("XRTK_STORE_BACKEND", "memory")
	t.Setenv("XRTK_LOG_LEVEL", "debug")

	opts := DefaultLoadOptions()
	opts.EnvPrefix = "XRTK_"

	t.Run("AllSources", func(t *testing.T) {
		cfg := newStoreConfig(t)
		require.NoError(t, cfg.LoadWithOptions(file, []string{"--store.backend", "registry"}, opts))

		backend, _ := cfg.String("store.backend")
		assert.Equal(t, "registry", backend, "CLI wins")
		level, _ := cfg.String("log.level")
		assert.Equal(t, "debug", level, "env beats default")
		path, _ := cfg.String("store.path")
		assert.Equal(t, "file.db", path, "file beats default")

		val, found := cfg.GetSource("store.backend", SourceFile)
		assert.True(t, found)
		assert.Equal(t, "sqlite", val)
		assert.Equal(t, file, cfg.ConfigFile())
	})

	t.Run("EnvBeatsFile", func(t *testing.T) {
		cfg := newStoreConfig(t)
		require.NoError(t, cfg.LoadWithOptions(file, nil, opts))

		backend, _ := cfg.String("store.backend")
		assert.Equal(t, "memory", backend)
	})

	t.Run("CustomOrder", func(t *testing.T) {
		cfg := newStoreConfig(t)
		custom := opts
		custom.Sources = []Source{SourceFile, SourceEnv, SourceDefault}
		require.NoError(t, cfg.LoadWithOptions(file, nil, custom))

		backend, _ := cfg.String("store.backend")
		assert.Equal(t, "sqlite", backend)
	})

	t.Run("DefaultsOnly", func(t *testing.T) {
		cfg := newStoreConfig(t)
		require.NoError(t, cfg.LoadWithOptions("", nil, LoadOptions{Sources: []Source{SourceDefault}}))

		backend, _ := cfg.String("store.backend")
		assert.Equal(t, "file", backend)
	})
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "c.toml", "[store]\nbackend = \"sqlite\"\n"},
		{"yaml", "c.yaml", "store:\n  backend: sqlite\n"},
		{"yml", "c.yml", "store:\n  backend: sqlite\n"},
		{"json", "c.json", `{"store": {"backend": "sqlite"}}`},
		{"sniffed toml", "c.conf", "[store]\nbackend = \"sqlite\"\n"},
		{"sniffed yaml", "c.conf", "store:\n  backend: sqlite\n"},
		{"sniffed json", "c", `{"store": {"backend": "sqlite"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newStoreConfig(t)
			path := writeFile(t, tt.file, tt.content)
			require.NoError(t, cfg.LoadWithOptions(path, nil, DefaultLoadOptions()))

			backend, _ := cfg.String("store.backend")
			assert.Equal(t, "sqlite", backend)
		})
	}

	t.Run("UnregisteredKeysIgnored", func(t *testing.T) {
		cfg := newStoreConfig(t)
		path := writeFile(t, "c.toml", "unknown = 1\n[store]\nother = \"x\"\n")
		require.NoError(t, cfg.LoadWithOptions(path, nil, DefaultLoadOptions()))

		_, registered := cfg.Get("unknown")
		assert.False(t, registered)
	})

	t.Run("MissingFile", func(t *testing.T) {
		cfg := newStoreConfig(t)
		err := cfg.LoadWithOptions(filepath.Join(t.TempDir(), "none.toml"), nil, DefaultLoadOptions())
		assert.ErrorIs(t, err, ErrConfigNotFound)

		backend, _ := cfg.String("store.backend")
		assert.Equal(t, "file", backend)
	})

	t.Run("MalformedFile", func(t *testing.T) {
		cfg := newStoreConfig(t)
		path := writeFile(t, "c.toml", "[store\nbackend = ")
		err := cfg.LoadWithOptions(path, nil, DefaultLoadOptions())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrConfigNotFound)
	})
}

func TestLoadCLI(t *testing.T) {
	t.Run("Forms", func(t *testing.T) {
		cfg := newStoreConfig(t)
		args := []string{"--store.backend=memory", "--log.level", "info", "positional", "--store.path"}
		require.NoError(t, cfg.LoadWithOptions("", args, DefaultLoadOptions()))

		backend, _ := cfg.String("store.backend")
		assert.Equal(t, "memory", backend)
		level, _ := cfg.String("log.level")
		assert.Equal(t, "info", level)
		path, _ := cfg.String("store.path")
		assert.Equal(t, "true", path)
	})

	t.Run("UnknownOption", func(t *testing.T) {
		cfg := newStoreConfig(t)
		args := []string{"--store.backend", "memory", "--brightness", "60", "--zoom", "2"}
		err := cfg.LoadWithOptions("", args, DefaultLoadOptions())

		var unknown *UnknownOptionError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "--brightness", unknown.Option)
	})

	t.Run("ExtraOptionsAccepted", func(t *testing.T) {
		cfg := newStoreConfig(t)
		opts := DefaultLoadOptions()
		opts.ExtraOptions = []string{"config"}
		require.NoError(t, cfg.LoadWithOptions("", []string{"--config", "c.toml", "--log.level", "info"}, opts))

		level, _ := cfg.String("log.level")
		assert.Equal(t, "info", level)
		_, registered := cfg.Get("config")
		assert.False(t, registered)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		cfg := newStoreConfig(t)
		err := cfg.LoadWithOptions("", []string{"--store.bad key", "x"}, DefaultLoadOptions())
		assert.ErrorIs(t, err, ErrCLIParse)
	})
}

func TestParseArgs(t *testing.T) {
	parsed, err := parseArgs([]string{"--a", "1", "--b=2=3", "--c", "-brightness", "--", "--d.e", "v"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a":   "1",
		"b":   "2=3",
		"c":   "true",
		"d.e": "v",
	}, parsed)
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		options []string
		rest    []string
	}{
		{
			name:    "settings only",
			args:    []string{"app", "FS2020", "-brightness", "50"},
			options: nil,
			rest:    []string{"app", "FS2020", "-brightness", "50"},
		},
		{
			name:    "options before settings",
			args:    []string{"--store.backend", "file", "--log.level=debug", "-zoom", "+1"},
			options: []string{"--store.backend", "file", "--log.level=debug"},
			rest:    []string{"-zoom", "+1"},
		},
		{
			name:    "option without value",
			args:    []string{"--verbose", "-zoom", "2"},
			options: []string{"--verbose"},
			rest:    []string{"-zoom", "2"},
		},
		{
			name:    "options anywhere",
			args:    []string{"dump", "--store.path", "/tmp/s.toml"},
			options: []string{"--store.path", "/tmp/s.toml"},
			rest:    []string{"dump"},
		},
		{
			name:    "terminator",
			args:    []string{"--log.level", "info", "--", "--odd", "x"},
			options: []string{"--log.level", "info"},
			rest:    []string{"--odd", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options, rest := SplitArgs(tt.args)
			assert.Equal(t, tt.options, options)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "XRTK_LAYER_IMPLICIT_DIR", defaultEnvTransform("XRTK_")("layer.implicit_dir"))
	assert.Equal(t, "STORE_PATH", defaultEnvTransform("")("store.path"))

	t.Run("Custom", func(t *testing.T) {
		cfg := newStoreConfig(t)
		t.Setenv("BACKEND_OVERRIDE", "sqlite")
		require.NoError(t, cfg.LoadWithOptions("", nil, LoadOptions{
			Sources: []Source{SourceEnv, SourceDefault},
			EnvTransform: func(path string) string {
				if path == "store.backend" {
					return "BACKEND_OVERRIDE"
				}
				return "UNSET_" + path
			},
		}))

		backend, _ := cfg.String("store.backend")
		assert.Equal(t, "sqlite", backend)
	})
}
