// FILE: companion/internal/store/open.go
package store

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Config selects and locates a backend.
type Config struct {
	Backend string `toml:"backend"` // one of Backends
	Path    string `toml:"path"`    // file and sqlite backends
	Root    string `toml:"root"`    // registry backend, subkey of Hive
	Hive    string `toml:"hive"`    // registry hive of application settings, HKCU when empty

	// GlobalHive is the registry hive of layer-wide options, which the layer
	// reads from HKLM.
	GlobalHive string `toml:"global_hive"`
}

// Global returns the configuration locating layer-wide options.
// Only the registry backend keeps them apart from application settings.
func (c Config) Global() Config {
	if c.GlobalHive != "" {
		c.Hive = c.GlobalHive
	}
	return c
}

// Open creates the Store described by cfg.
func Open(cfg Config, logger *logrus.Logger) (Store, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	log := logger.WithField("backend", cfg.Backend)

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendRegistry:
		log.WithFields(logrus.Fields{"hive": cfg.Hive, "root": cfg.Root}).Debug("Opening settings store")
		s, err = NewRegistry(cfg.Hive, cfg.Root, logger)
	case BackendFile:
		log.WithField("path", cfg.Path).Debug("Opening settings store")
		s, err = NewFile(cfg.Path, logger)
	case BackendSQLite:
		log.WithField("path", cfg.Path).Debug("Opening settings store")
		s, err = NewSQLite(cfg.Path, logger)
	case BackendMemory:
		s = NewMemory()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
