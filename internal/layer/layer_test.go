// FILE: companion/internal/layer/layer_test.go
package layer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `{
    "file_format_version": "1.0.0",
    "api_layer": {
        "name": "XR_APILAYER_NOVENDOR_toolkit",
        "library_path": "./XR_APILAYER_NOVENDOR_toolkit.dll",
        "api_version": "1.0",
        "implementation_version": "1",
        "description": "OpenXR Toolkit",
        "disable_environment": "DISABLE_XR_APILAYER_NOVENDOR_toolkit"
    }
}`

func newTestDirectory(t *testing.T) (*Directory, string, string) {
	t.Helper()
	install := t.TempDir()
	implicit := filepath.Join(t.TempDir(), "implicit.d")

	manifest := DefaultManifest(filepath.Join(install, "companion"))
	require.NoError(t, os.WriteFile(manifest, []byte(testManifest), 0644))

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	d, err := NewDirectory(manifest, implicit, logger)
	require.NoError(t, err)
	return d, install, implicit
}

func TestDirectoryRegistration(t *testing.T) {
	t.Run("EnableDisable", func(t *testing.T) {
		d, install, implicit := newTestDirectory(t)

		enabled, err := d.Enabled()
		require.NoError(t, err)
		assert.False(t, enabled)

		require.NoError(t, d.Enable())
		enabled, err = d.Enabled()
		require.NoError(t, err)
		assert.True(t, enabled)

		data, err := os.ReadFile(filepath.Join(implicit, ManifestName))
		require.NoError(t, err)
		var written struct {
			APILayer struct {
				LibraryPath string `json:"library_path"`
				Name        string `json:"name"`
			} `json:"api_layer"`
		}
		require.NoError(t, json.Unmarshal(data, &written))
		assert.Equal(t, filepath.Join(install, "XR_APILAYER_NOVENDOR_toolkit.dll"), written.APILayer.LibraryPath)
		assert.Equal(t, "XR_APILAYER_NOVENDOR_toolkit", written.APILayer.Name)

		// Enabling twice is harmless.
		require.NoError(t, d.Enable())

		entries, err := os.ReadDir(implicit)
		require.NoError(t, err)
		require.Len(t, entries, 1, "no temporary files left behind")
		assert.Equal(t, ManifestName, entries[0].Name())

		require.NoError(t, d.Disable())
		enabled, err = d.Enabled()
		require.NoError(t, err)
		assert.False(t, enabled)

		// Disabling an unregistered layer is not an error.
		assert.NoError(t, d.Disable())
	})

	t.Run("AbsoluteLibraryPathKept", func(t *testing.T) {
		d, _, implicit := newTestDirectory(t)
		abs := filepath.Join(t.TempDir(), "toolkit.so")
		manifest := `{"api_layer": {"name": "x", "library_path": ` + string(mustJSON(t, abs)) + `}}`
		require.NoError(t, os.WriteFile(d.manifest, []byte(manifest), 0644))

		require.NoError(t, d.Enable())
		data, err := os.ReadFile(filepath.Join(implicit, ManifestName))
		require.NoError(t, err)
		assert.Equal(t, manifest, string(data))
	})

	t.Run("InvalidManifest", func(t *testing.T) {
		d, _, _ := newTestDirectory(t)

		require.NoError(t, os.WriteFile(d.manifest, []byte(`{"api_layer": {}}`), 0644))
		assert.Error(t, d.Enable())

		require.NoError(t, os.WriteFile(d.manifest, []byte(`not json`), 0644))
		assert.Error(t, d.Enable())

		require.NoError(t, os.Remove(d.manifest))
		assert.Error(t, d.Enable())

		enabled, err := d.Enabled()
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("Registered", func(t *testing.T) {
		d, _, implicit := newTestDirectory(t)

		entries, err := d.Registered()
		require.NoError(t, err)
		assert.Empty(t, entries)

		require.NoError(t, d.Enable())
		require.NoError(t, os.WriteFile(filepath.Join(implicit, LegacyManifestName), []byte("{}"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(implicit, "README.txt"), []byte("x"), 0644))

		entries, err = d.Registered()
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(implicit, LegacyManifestName),
			filepath.Join(implicit, ManifestName),
		}, entries)

		legacy, err := FindLegacy(d)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(implicit, LegacyManifestName)}, legacy)
	})

	t.Run("Config", func(t *testing.T) {
		_, err := NewDirectory("", "/tmp", nil)
		assert.ErrorIs(t, err, ErrNoManifest)

		_, err = NewDirectory("/opt/toolkit/manifest.json", "", nil)
		assert.Error(t, err)
	})
}

type fakeRegistration struct {
	Registration
	entries []string
}

func (f fakeRegistration) Registered() ([]string, error) {
	return f.entries, nil
}

func TestFindLegacy(t *testing.T) {
	legacy, err := FindLegacy(fakeRegistration{entries: []string{
		`C:\Program Files\OpenXR-Toolkit\XR_APILAYER_NOVENDOR_toolkit.json`,
		`C:\Program Files\OpenXR-NIS-Scaler\XR_APILAYER_NOVENDOR_NIS_SCALER.json`,
		`C:\Other\layer.json`,
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{`C:\Program Files\OpenXR-NIS-Scaler\XR_APILAYER_NOVENDOR_NIS_SCALER.json`}, legacy)
}

func TestDefaultManifest(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, ManifestName), DefaultManifest(filepath.Join(dir, "companion.exe")))
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
