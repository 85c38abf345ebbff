//go:build !windows

// FILE: companion/internal/layer/layer_other.go
package layer

import "github.com/sirupsen/logrus"

// New returns the registration mechanism of this platform.
func New(cfg Config, logger *logrus.Logger) (Registration, error) {
	d, err := NewDirectory(cfg.Manifest, cfg.ImplicitDir, logger)
	if err != nil {
		return nil, err
	}
	return d, nil
}
