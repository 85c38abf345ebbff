// FILE: companion/internal/settings/descriptor.go
package settings

// Kind selects how a setting's value is parsed and formatted.
type Kind int

const (
	// Continuous is a scaled fixed-point number clamped to [Min, Max].
	// A descriptor with Min=0, Max=1, Scale=1 is treated as a boolean.
	Continuous Kind = iota
	// Cyclic is an enumeration stepped with wraparound and named by labels.
	Cyclic
	// SimpleToggle flips between the current value and a remembered backup.
	SimpleToggle
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Cyclic:
		return "cyclic"
	case SimpleToggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// BackupSuffix is appended to the storage key of a toggle setting to form its backup slot.
const BackupSuffix = "_bak"

// Descriptor describes one configurable value.
type Descriptor struct {
	ArgumentName string   // token used on the command line, without the leading "-"
	StorageKey   string   // value name in the store
	Kind         Kind     // parse/format variant
	Default      int      // value used when the store has none
	Min          int      // inclusive lower bound, stored units
	Max          int      // inclusive upper bound, stored units
	Scale        int      // stored units per user unit
	Labels       []string // Cyclic only, indexed by stored value
	Help         string   // one-line description for usage output
}

// IsBoolean reports whether a Continuous descriptor accepts on/off/toggle.
func (d Descriptor) IsBoolean() bool {
	return d.Kind == Continuous && d.Min == 0 && d.Max == 1 && d.Scale == 1
}

// BackupKey returns the store name holding the value to restore on the next toggle.
func (d Descriptor) BackupKey() string {
	return d.StorageKey + BackupSuffix
}

// Table is an ordered, read-only list of descriptors.
type Table []Descriptor

// Lookup finds a descriptor by exact argument name.
func (t Table) Lookup(argumentName string) (Descriptor, bool) {
	for _, d := range t {
		if d.ArgumentName == argumentName {
			return d, true
		}
	}
	return Descriptor{}, false
}

var (
	sunglassesLabels = []string{"off", "light", "dark", "trunite"}
	// Fractions of the display refresh rate.
	reprojectionLabels = []string{"unlocked", "1/2", "1/3", "1/4"}
)

func scaled(name, key string, def, lo, hi int, help string) Descriptor {
	return Descriptor{
		ArgumentName: name,
		StorageKey:   key,
		Kind:         Continuous,
		Default:      def,
		Min:          lo,
		Max:          hi,
		Scale:        10,
		Help:         help,
	}
}

func boolean(name, key, help string) Descriptor {
	return Descriptor{
		ArgumentName: name,
		StorageKey:   key,
		Kind:         Continuous,
		Min:          0,
		Max:          1,
		Scale:        1,
		Help:         help,
	}
}

func cyclic(name, key string, labels []string, help string) Descriptor {
	return Descriptor{
		ArgumentName: name,
		StorageKey:   key,
		Kind:         Cyclic,
		Min:          0,
		Max:          len(labels) - 1,
		Scale:        1,
		Labels:       labels,
		Help:         help,
	}
}

func toggle(name, key, help string) Descriptor {
	return Descriptor{
		ArgumentName: name,
		StorageKey:   key,
		Kind:         SimpleToggle,
		Scale:        1,
		Help:         help,
	}
}

// ApplicationSettings holds the per-application settings in registration order.
var ApplicationSettings = Table{
	cyclic("sunglasses", "post_sunglasses", sunglassesLabels, "sunglasses mode"),
	boolean("post-process", "post_process", "enable post-processing"),
	scaled("contrast", "post_contrast", 500, 0, 1000, "contrast"),
	scaled("brightness", "post_brightness", 500, 0, 1000, "brightness"),
	scaled("exposure", "post_exposure", 500, 0, 1000, "exposure"),
	scaled("saturation", "post_saturation", 500, 0, 1000, "saturation"),
	scaled("vibrance", "post_vibrance", 0, 0, 1000, "vibrance"),
	scaled("highlights", "post_highlights", 1000, 0, 1000, "highlights"),
	scaled("shadows", "post_shadows", 0, 0, 1000, "shadows"),
	scaled("gain-r", "post_gain_r", 500, 0, 1000, "red channel gain"),
	scaled("gain-g", "post_gain_g", 500, 0, 1000, "green channel gain"),
	scaled("gain-b", "post_gain_b", 500, 0, 1000, "blue channel gain"),
	scaled("world-scale", "world_scale", 1000, 1, 10000, "world scale (percent)"),
	scaled("zoom", "zoom", 10, 10, 1500, "zoom factor"),
	cyclic("reprojection-rate", "motion_reprojection_rate", reprojectionLabels, "motion reprojection rate"),
	toggle("foveated-rendering", "vrs", "foveated rendering"),
	toggle("overlay", "overlay", "overlay"),
}

// GlobalSettings holds the layer-wide options stored at the root of the store.
var GlobalSettings = Table{
	boolean("safe-mode", "safe_mode", "load the layer without applying any setting"),
	boolean("experimental", "enable_experimental", "enable experimental features"),
	boolean("screenshot", "enable_screenshot", "enable the screenshot hotkey"),
}
