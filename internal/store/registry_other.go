//go:build !windows

// FILE: companion/internal/store/registry_other.go
package store

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Registry is only available on Windows.
type Registry struct{}

// NewRegistry always fails outside Windows.
func NewRegistry(hive, root string, logger *logrus.Logger) (*Registry, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, BackendRegistry)
}

func (r *Registry) Int(scope, name string) (int, bool, error) { return 0, false, ErrUnsupported }
func (r *Registry) SetInt(scope, name string, value int) error { return ErrUnsupported }
func (r *Registry) String(scope, name string) (string, bool, error) { return "", false, ErrUnsupported }
func (r *Registry) SetString(scope, name, value string) error { return ErrUnsupported }
func (r *Registry) Delete(scope, name string) error { return ErrUnsupported }
func (r *Registry) DeleteScope(scope string) error { return ErrUnsupported }
func (r *Registry) Close() error { return nil }
