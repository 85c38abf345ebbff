// FILE: companion/internal/layer/directory.go
package layer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openxr-toolkit/companion/internal/fsutil"
	"github.com/sirupsen/logrus"
)

// Directory registers the layer by placing its manifest in an implicit.d directory.
type Directory struct {
	manifest string
	dir      string
	logger   *logrus.Logger
}

// NewDirectory creates a Directory registration for manifest inside dir.
func NewDirectory(manifest, dir string, logger *logrus.Logger) (*Directory, error) {
	if manifest == "" {
		return nil, ErrNoManifest
	}
	if dir == "" {
		return nil, fmt.Errorf("implicit layer directory not configured")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Directory{manifest: manifest, dir: dir, logger: logger}, nil
}

func (d *Directory) target() string {
	return filepath.Join(d.dir, filepath.Base(d.manifest))
}

func (d *Directory) Enabled() (bool, error) {
	info, err := os.Stat(d.target())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check '%s': %w", d.target(), err)
	}
	return !info.IsDir(), nil
}

// Enable writes a copy of the manifest whose library path is absolute,
// so that it still resolves from the implicit.d directory.
func (d *Directory) Enable() error {
	data, err := os.ReadFile(d.manifest)
	if err != nil {
		return fmt.Errorf("failed to read layer manifest '%s': %w", d.manifest, err)
	}

	data, err = absoluteLibraryPath(data, filepath.Dir(d.manifest))
	if err != nil {
		return fmt.Errorf("invalid layer manifest '%s': %w", d.manifest, err)
	}

	if err := fsutil.WriteFileAtomic(d.target(), data, 0644); err != nil {
		return fmt.Errorf("failed to register layer: %w", err)
	}

	d.logger.WithField("manifest", d.target()).Info("Layer enabled")
	return nil
}

func (d *Directory) Disable() error {
	err := os.Remove(d.target())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to unregister layer: %w", err)
	}

	d.logger.WithField("manifest", d.target()).Info("Layer disabled")
	return nil
}

func (d *Directory) Registered() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list '%s': %w", d.dir, err)
	}

	var manifests []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		manifests = append(manifests, filepath.Join(d.dir, entry.Name()))
	}
	sort.Strings(manifests)
	return manifests, nil
}

// absoluteLibraryPath resolves api_layer.library_path against base.
// Manifests without a relative library path are returned unchanged.
func absoluteLibraryPath(data []byte, base string) ([]byte, error) {
	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}

	apiLayer, ok := manifest["api_layer"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing api_layer object")
	}
	library, ok := apiLayer["library_path"].(string)
	if !ok || library == "" {
		return nil, fmt.Errorf("missing api_layer.library_path")
	}
	if filepath.IsAbs(library) {
		return data, nil
	}

	apiLayer["library_path"] = filepath.Join(base, library)
	return json.MarshalIndent(manifest, "", "    ")
}
