// FILE: companion/internal/layer/layer.go

// Package layer registers the toolkit as an implicit OpenXR API layer.
//
// The OpenXR loader activates every implicit layer whose manifest is registered:
// on Windows as a DWORD value named after the manifest path under
// HKEY_LOCAL_MACHINE\SOFTWARE\Khronos\OpenXR\1\ApiLayers\Implicit (0 = enabled),
// elsewhere as a manifest file in an implicit.d directory.
package layer

import (
	"errors"
	"path/filepath"
	"strings"
)

// ManifestName is the file name of the toolkit layer manifest.
const ManifestName = "XR_APILAYER_NOVENDOR_toolkit.json"

// LegacyManifestName is the manifest of the predecessor project, which conflicts with the toolkit.
const LegacyManifestName = "XR_APILAYER_NOVENDOR_nis_scaler.json"

// ErrNoManifest is returned when no manifest path is configured.
var ErrNoManifest = errors.New("layer manifest path not configured")

// Config locates the layer manifest and the registration target.
type Config struct {
	Manifest    string `toml:"manifest"`     // path of the installed manifest
	ImplicitDir string `toml:"implicit_dir"` // implicit.d directory, non-Windows only
}

// Registration enables and disables the layer with the OpenXR loader.
type Registration interface {
	// Enabled reports whether the toolkit manifest is registered and active.
	Enabled() (bool, error)
	Enable() error
	Disable() error
	// Registered lists the identifiers of every registered implicit layer.
	Registered() ([]string, error)
}

// FindLegacy returns the registered entries belonging to the predecessor project.
func FindLegacy(r Registration) ([]string, error) {
	entries, err := r.Registered()
	if err != nil {
		return nil, err
	}

	var legacy []string
	for _, entry := range entries {
		// Registry value names use backslashes regardless of the host separator.
		base := entry[strings.LastIndexAny(entry, `\/`)+1:]
		if strings.EqualFold(base, LegacyManifestName) {
			legacy = append(legacy, entry)
		}
	}
	return legacy, nil
}

// DefaultManifest returns the manifest path next to the given executable.
func DefaultManifest(executable string) string {
	return filepath.Join(filepath.Dir(executable), ManifestName)
}
