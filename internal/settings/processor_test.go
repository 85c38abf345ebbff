// FILE: companion/internal/settings/processor_test.go
package settings

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/openxr-toolkit/companion/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T, table Table) (*Processor, *store.Memory, *bytes.Buffer) {
	t.Helper()
	mem := store.NewMemory()
	out := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewProcessor(mem, table, WithOutput(out), WithLogger(logger)), mem, out
}

func storedInt(t *testing.T, s store.Store, scope, name string) int {
	t.Helper()
	v, found, err := s.Int(scope, name)
	require.NoError(t, err)
	require.True(t, found, "%s/%s not stored", scope, name)
	return v
}

func TestProcessorScenarios(t *testing.T) {
	t.Run("DecimalValueIsScaled", func(t *testing.T) {
		p, mem, out := newTestProcessor(t, ApplicationSettings)

		require.NoError(t, p.Run([]string{"app", "FS2020", "-brightness", "50.5"}))
		assert.Equal(t, 505, storedInt(t, mem, "FS2020", "post_brightness"))

		require.NoError(t, p.Run([]string{"app", "FS2020", "dump"}))
		assert.Contains(t, out.String(), " -brightness 50.5 ")
	})

	t.Run("CyclicWrapsAtMax", func(t *testing.T) {
		p, mem, out := newTestProcessor(t, ApplicationSettings)
		require.NoError(t, mem.SetInt("FS2020", "post_sunglasses", 3))

		require.NoError(t, p.Run([]string{"app", "FS2020", "-sunglasses", "+1"}))
		assert.Equal(t, 0, storedInt(t, mem, "FS2020", "post_sunglasses"))

		require.NoError(t, p.Run([]string{"app", "FS2020", "dump"}))
		assert.Contains(t, out.String(), "-sunglasses off ")
	})

	t.Run("NegativeRelativeDelta", func(t *testing.T) {
		p, mem, out := newTestProcessor(t, ApplicationSettings)
		require.NoError(t, mem.SetInt("FS2020", "world_scale", 1000))

		require.NoError(t, p.Run([]string{"app", "FS2020", "-world-scale", "+-10"}))
		assert.Equal(t, 900, storedInt(t, mem, "FS2020", "world_scale"))

		require.NoError(t, p.Run([]string{"app", "FS2020", "dump"}))
		assert.Contains(t, out.String(), "-world-scale 90 ")
	})

	t.Run("DumpDefaults", func(t *testing.T) {
		p, mem, out := newTestProcessor(t, ApplicationSettings)

		require.NoError(t, p.Run([]string{"app", "FS2020", "dump"}))
		assert.Equal(t,
			"app FS2020 -sunglasses off -post-process 0 -contrast 50 -brightness 50 -exposure 50"+
				" -saturation 50 -vibrance 0 -highlights 100 -shadows 0 -gain-r 50 -gain-g 50 -gain-b 50"+
				" -world-scale 100 -zoom 1 -reprojection-rate unlocked\n",
			out.String())

		for _, op := range mem.Ops() {
			assert.Equal(t, "get", op.Kind, "dump must not write: %s", op)
		}
	})

	t.Run("UnknownArgumentKeepsEarlierWrites", func(t *testing.T) {
		p, mem, _ := newTestProcessor(t, ApplicationSettings)

		err := p.Run([]string{"app", "FS2020", "-contrast", "60", "-foo", "bar", "-brightness", "10"})
		require.Error(t, err)
		assert.True(t, IsUsageError(err))
		assert.Equal(t, "Invalid argument: -foo", err.Error())

		assert.Equal(t, 600, storedInt(t, mem, "FS2020", "post_contrast"))
		_, found, err := mem.Int("FS2020", "post_brightness")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestProcessorApplicationResolution(t *testing.T) {
	t.Run("RunningApplication", func(t *testing.T) {
		p, mem, _ := newTestProcessor(t, ApplicationSettings)
		require.NoError(t, mem.SetString(store.GlobalScope, RunningKey, "DCS"))

		require.NoError(t, p.Run([]string{"-zoom", "2"}))
		assert.Equal(t, 20, storedInt(t, mem, "DCS", "zoom"))
	})

	t.Run("NoApplication", func(t *testing.T) {
		p, _, _ := newTestProcessor(t, ApplicationSettings)

		err := p.Run([]string{"-zoom", "2"})
		require.Error(t, err)
		assert.True(t, IsUsageError(err))
		assert.ErrorIs(t, err, ErrNoApplication)
	})

	t.Run("EmptyRunningApplication", func(t *testing.T) {
		p, mem, _ := newTestProcessor(t, ApplicationSettings)
		require.NoError(t, mem.SetString(store.GlobalScope, RunningKey, ""))

		err := p.Run([]string{"dump"})
		assert.ErrorIs(t, err, ErrNoApplication)
	})

	t.Run("ExplicitApplicationWins", func(t *testing.T) {
		p, mem, _ := newTestProcessor(t, ApplicationSettings)
		require.NoError(t, mem.SetString(store.GlobalScope, RunningKey, "DCS"))

		require.NoError(t, p.Run([]string{"app", "FS2020", "-zoom", "3"}))
		assert.Equal(t, 30, storedInt(t, mem, "FS2020", "zoom"))
		_, found, _ := mem.Int("DCS", "zoom")
		assert.False(t, found)
	})

	t.Run("DumpQuotesApplicationName", func(t *testing.T) {
		p, _, out := newTestProcessor(t, GlobalSettings)

		require.NoError(t, p.Run([]string{"app", "Flight Simulator", "dump"}))
		assert.True(t, strings.HasPrefix(out.String(), `app "Flight Simulator" -safe-mode 0`))
	})
}

func TestProcessorErrors(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []string
		message string
	}{
		{"missing value", []string{"app", "X", "-brightness"}, "Must specify a value for argument -brightness"},
		{"no dash", []string{"app", "X", "brightness", "5"}, "Invalid argument: brightness"},
		{"bare dash", []string{"app", "X", "-", "5"}, "Invalid argument: -"},
		{"case sensitive name", []string{"app", "X", "-Brightness", "5"}, "Invalid argument: -Brightness"},
		{"bad label", []string{"app", "X", "-sunglasses", "blue"}, "Unsupported value: blue"},
		{"bad number", []string{"app", "X", "-zoom", "big"}, "Invalid number: big"},
		{"toggle requires toggle", []string{"app", "X", "-overlay", "on"}, "Unsupported value: on"},
		{"dump with extra tokens", []string{"app", "X", "dump", "-zoom"}, "Invalid argument: dump"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mem, _ := newTestProcessor(t, ApplicationSettings)

			err := p.Run(tt.tokens)
			require.Error(t, err)
			assert.True(t, IsUsageError(err))
			assert.Equal(t, tt.message, err.Error())

			for _, op := range mem.Ops() {
				assert.NotEqual(t, "set", op.Kind, "unexpected write %s", op)
			}
		})
	}
}

func TestProcessorValueNormalization(t *testing.T) {
	p, mem, _ := newTestProcessor(t, ApplicationSettings)

	require.NoError(t, p.Run([]string{"app", "X", "-sunglasses", "  TruNite ", "-post-process", "ON"}))
	assert.Equal(t, 3, storedInt(t, mem, "X", "post_sunglasses"))
	assert.Equal(t, 1, storedInt(t, mem, "X", "post_process"))
}

func TestProcessorToggle(t *testing.T) {
	t.Run("TwiceRestoresPreviousValue", func(t *testing.T) {
		p, mem, _ := newTestProcessor(t, ApplicationSettings)
		require.NoError(t, mem.SetInt("X", "vrs", 2))
		require.NoError(t, mem.SetInt("X", "vrs_bak", 0))

		require.NoError(t, p.Run([]string{"app", "X", "-foveated-rendering", "toggle"}))
		assert.Equal(t, 0, storedInt(t, mem, "X", "vrs"))
		assert.Equal(t, 2, storedInt(t, mem, "X", "vrs_bak"))

		require.NoError(t, p.Run([]string{"app", "X", "-foveated-rendering", "toggle"}))
		assert.Equal(t, 2, storedInt(t, mem, "X", "vrs"))
		assert.Equal(t, 0, storedInt(t, mem, "X", "vrs_bak"))
	})

	t.Run("WithoutBackupFlipsLowBit", func(t *testing.T) {
		p, mem, _ := newTestProcessor(t, ApplicationSettings)

		require.NoError(t, p.Run([]string{"app", "X", "-overlay", "toggle"}))
		assert.Equal(t, []store.Op{
			{Kind: "get", Scope: "X", Name: "overlay"},
			{Kind: "get", Scope: "X", Name: "overlay_bak"},
			{Kind: "set", Scope: "X", Name: "overlay", Value: 1},
			{Kind: "set", Scope: "X", Name: "overlay_bak", Value: 0},
		}, mem.Ops())

		require.NoError(t, p.Run([]string{"app", "X", "-overlay", "toggle"}))
		assert.Equal(t, 0, storedInt(t, mem, "X", "overlay"))
	})

	t.Run("NotDumped", func(t *testing.T) {
		p, _, out := newTestProcessor(t, ApplicationSettings)

		require.NoError(t, p.Run([]string{"app", "X", "dump"}))
		assert.NotContains(t, out.String(), "-overlay")
		assert.NotContains(t, out.String(), "-foveated-rendering")
	})
}

func TestProcessorRelativeReadsBeforeWrite(t *testing.T) {
	p, mem, _ := newTestProcessor(t, ApplicationSettings)
	require.NoError(t, mem.SetInt("X", "post_brightness", 500))
	mem.ResetOps()

	require.NoError(t, p.Run([]string{"app", "X", "-brightness", "+1", "-brightness", "+1"}))
	assert.Equal(t, []store.Op{
		{Kind: "get", Scope: "X", Name: "post_brightness"},
		{Kind: "set", Scope: "X", Name: "post_brightness", Value: 510},
		{Kind: "get", Scope: "X", Name: "post_brightness"},
		{Kind: "set", Scope: "X", Name: "post_brightness", Value: 520},
	}, mem.Ops())
}

func TestProcessorDumpRoundTrip(t *testing.T) {
	source, _, out := newTestProcessor(t, ApplicationSettings)

	require.NoError(t, source.Run([]string{
		"app", "X",
		"-sunglasses", "dark",
		"-post-process", "on",
		"-contrast", "12.3",
		"-brightness", "+4.5",
		"-highlights", "0",
		"-gain-b", "99.9",
		"-world-scale", "0.1",
		"-zoom", "150",
		"-reprojection-rate", "1/4",
	}))
	require.NoError(t, source.Run([]string{"app", "X", "dump"}))

	replay, replayMem, _ := newTestProcessor(t, ApplicationSettings)
	require.NoError(t, replay.Run(strings.Fields(out.String())))

	for _, d := range ApplicationSettings {
		if d.Kind == SimpleToggle {
			continue
		}
		want, err := source.read("X", d.StorageKey, d.Default)
		require.NoError(t, err)
		assert.Equal(t, want, storedInt(t, replayMem, "X", d.StorageKey), d.ArgumentName)
	}
}

func TestProcessorRunScope(t *testing.T) {
	p, mem, out := newTestProcessor(t, GlobalSettings)

	require.NoError(t, p.RunScope(store.GlobalScope, []string{"-safe-mode", "on", "-screenshot", "toggle"}))
	assert.Equal(t, 1, storedInt(t, mem, store.GlobalScope, "safe_mode"))
	assert.Equal(t, 1, storedInt(t, mem, store.GlobalScope, "enable_screenshot"))

	require.NoError(t, p.RunScope(store.GlobalScope, []string{"dump"}))
	assert.Equal(t, "-safe-mode 1 -experimental 0 -screenshot 1\n", out.String())

	err := p.RunScope(store.GlobalScope, []string{"-brightness", "5"})
	assert.True(t, IsUsageError(err))
}

type failingStore struct {
	*store.Memory
}

var errBroken = errors.New("broken")

func (f failingStore) SetInt(scope, name string, value int) error {
	return errBroken
}

func TestProcessorStoreErrorsAreNotUsageErrors(t *testing.T) {
	p := NewProcessor(failingStore{store.NewMemory()}, ApplicationSettings, WithOutput(&bytes.Buffer{}))

	err := p.Run([]string{"app", "X", "-zoom", "2"})
	require.Error(t, err)
	assert.False(t, IsUsageError(err))
	assert.ErrorIs(t, err, errBroken)
}

func TestWriteUsage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ApplicationSettings.WriteUsage(&buf))

	usage := buf.String()
	assert.Contains(t, usage, "-sunglasses")
	assert.Contains(t, usage, "off|light|dark|trunite|+N")
	assert.Contains(t, usage, "on|off|toggle|0..1|+N")
	assert.Contains(t, usage, "0..100|+N (1 decimal)")
	assert.Contains(t, usage, "(default 50)")
	assert.Equal(t, len(ApplicationSettings), strings.Count(usage, "\n"))
}
