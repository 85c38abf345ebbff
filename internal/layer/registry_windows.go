//go:build windows

// FILE: companion/internal/layer/registry_windows.go
package layer

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows/registry"
)

// ImplicitLayersKey is the HKEY_LOCAL_MACHINE subkey the OpenXR loader scans for implicit layers.
const ImplicitLayersKey = `SOFTWARE\Khronos\OpenXR\1\ApiLayers\Implicit`

// Registry registers the layer in the machine-wide implicit layer list.
// Writing requires an elevated process.
type Registry struct {
	manifest string
	logger   *logrus.Logger
}

// NewRegistry creates a Registry registration for the manifest at the given absolute path.
func NewRegistry(manifest string, logger *logrus.Logger) (*Registry, error) {
	if manifest == "" {
		return nil, ErrNoManifest
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{manifest: manifest, logger: logger}, nil
}

// New returns the registration mechanism of this platform.
func New(cfg Config, logger *logrus.Logger) (Registration, error) {
	r, err := NewRegistry(cfg.Manifest, logger)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) Enabled() (bool, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, ImplicitLayersKey, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open implicit layers key: %w", err)
	}
	defer key.Close()

	v, _, err := key.GetIntegerValue(r.manifest)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read layer registration: %w", err)
	}
	return v == 0, nil
}

func (r *Registry) Enable() error {
	key, _, err := registry.CreateKey(registry.LOCAL_MACHINE, ImplicitLayersKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open implicit layers key (elevation required): %w", err)
	}
	defer key.Close()

	if err := key.SetDWordValue(r.manifest, 0); err != nil {
		return fmt.Errorf("failed to register layer: %w", err)
	}

	r.logger.WithField("manifest", r.manifest).Info("Layer enabled")
	return nil
}

func (r *Registry) Disable() error {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, ImplicitLayersKey, registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open implicit layers key (elevation required): %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(r.manifest); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("failed to unregister layer: %w", err)
	}

	r.logger.WithField("manifest", r.manifest).Info("Layer disabled")
	return nil
}

func (r *Registry) Registered() ([]string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, ImplicitLayersKey, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open implicit layers key: %w", err)
	}
	defer key.Close()

	names, err := key.ReadValueNames(0)
	if err != nil {
		return nil, fmt.Errorf("failed to list implicit layers: %w", err)
	}
	return names, nil
}
