//go:build windows

// FILE: companion/internal/store/registry_windows.go
package store

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows/registry"
)

// Registry is a Store backed by <hive>\<root>[\<scope>] DWORD and string values,
// the same location the layer reads its configuration from.
// Writing under HKLM requires an elevated process.
type Registry struct {
	hive     registry.Key
	hiveName string
	root     string
	logger   *logrus.Logger
}

// NewRegistry creates a registry store rooted at the given subkey of hive (HKCU or HKLM).
func NewRegistry(hive, root string, logger *logrus.Logger) (*Registry, error) {
	if root == "" {
		return nil, fmt.Errorf("registry root cannot be empty")
	}
	hiveName, err := checkHive(hive)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	key := registry.CURRENT_USER
	if hiveName == HiveLocalMachine {
		key = registry.LOCAL_MACHINE
	}
	return &Registry{hive: key, hiveName: hiveName, root: root, logger: logger}, nil
}

func (r *Registry) keyPath(scope string) string {
	return registryKeyPath(r.root, scope)
}

// openForRead returns ok=false when the key does not exist yet.
func (r *Registry) openForRead(scope string) (registry.Key, bool, error) {
	key, err := registry.OpenKey(r.hive, r.keyPath(scope), registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to open registry key '%s': %w", r.keyPath(scope), err)
	}
	return key, true, nil
}

func (r *Registry) openForWrite(scope string) (registry.Key, error) {
	key, _, err := registry.CreateKey(r.hive, r.keyPath(scope), registry.SET_VALUE)
	if err != nil {
		return 0, r.writeError(scope, err)
	}
	return key, nil
}

func (r *Registry) writeError(scope string, err error) error {
	if r.hiveName == HiveLocalMachine {
		return fmt.Errorf("failed to open registry key '%s\\%s' (elevation required): %w", r.hiveName, r.keyPath(scope), err)
	}
	return fmt.Errorf("failed to open registry key '%s\\%s': %w", r.hiveName, r.keyPath(scope), err)
}

func (r *Registry) Int(scope, name string) (int, bool, error) {
	key, ok, err := r.openForRead(scope)
	if err != nil || !ok {
		return 0, false, err
	}
	defer key.Close()

	v, _, err := key.GetIntegerValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return 0, false, nil
	}
	if errors.Is(err, registry.ErrUnexpectedType) {
		return 0, false, fmt.Errorf("%w: %s\\%s", ErrTypeMismatch, r.keyPath(scope), name)
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read %s\\%s: %w", r.keyPath(scope), name, err)
	}
	// DWORDs are written from signed values.
	return int(int32(uint32(v))), true, nil
}

func (r *Registry) SetInt(scope, name string, value int) error {
	if err := validateName(scope, name); err != nil {
		return err
	}
	key, err := r.openForWrite(scope)
	if err != nil {
		return err
	}
	defer key.Close()

	if err := key.SetDWordValue(name, uint32(int32(value))); err != nil {
		return fmt.Errorf("failed to write %s\\%s: %w", r.keyPath(scope), name, err)
	}
	return nil
}

func (r *Registry) String(scope, name string) (string, bool, error) {
	key, ok, err := r.openForRead(scope)
	if err != nil || !ok {
		return "", false, err
	}
	defer key.Close()

	v, _, err := key.GetStringValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return "", false, nil
	}
	if errors.Is(err, registry.ErrUnexpectedType) {
		return "", false, fmt.Errorf("%w: %s\\%s", ErrTypeMismatch, r.keyPath(scope), name)
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s\\%s: %w", r.keyPath(scope), name, err)
	}
	return v, true, nil
}

func (r *Registry) SetString(scope, name, value string) error {
	if err := validateName(scope, name); err != nil {
		return err
	}
	key, err := r.openForWrite(scope)
	if err != nil {
		return err
	}
	defer key.Close()

	if err := key.SetStringValue(name, value); err != nil {
		return fmt.Errorf("failed to write %s\\%s: %w", r.keyPath(scope), name, err)
	}
	return nil
}

func (r *Registry) Delete(scope, name string) error {
	key, err := registry.OpenKey(r.hive, r.keyPath(scope), registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil
	}
	if err != nil {
		return r.writeError(scope, err)
	}
	defer key.Close()

	if err := key.DeleteValue(name); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("failed to delete %s\\%s: %w", r.keyPath(scope), name, err)
	}
	return nil
}

func (r *Registry) DeleteScope(scope string) error {
	if scope == GlobalScope {
		return fmt.Errorf("refusing to delete the global scope")
	}
	err := registry.DeleteKey(r.hive, r.keyPath(scope))
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("failed to delete registry key '%s': %w", r.keyPath(scope), err)
	}
	r.logger.WithField("key", r.keyPath(scope)).Debug("Deleted registry key")
	return nil
}

func (r *Registry) Close() error {
	return nil
}
