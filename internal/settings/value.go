// FILE: companion/internal/settings/value.go
package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// relativePrefix marks a value as a delta applied to the current stored value.
const relativePrefix = "+"

// toggleValue is the only value a SimpleToggle accepts; booleans accept it too.
const toggleValue = "toggle"

// normalizeValue lower-cases and trims a raw command-line value.
func normalizeValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// parseValue computes the next stored value of a Continuous or Cyclic setting.
// value must already be normalized. SimpleToggle is handled by the processor
// since it needs the backup slot.
func parseValue(d Descriptor, value string, current int) (int, error) {
	switch d.Kind {
	case Continuous:
		return parseContinuous(d, value, current)
	case Cyclic:
		return parseCyclic(d, value, current)
	default:
		return 0, fmt.Errorf("setting %s of kind %s has no value parser", d.ArgumentName, d.Kind)
	}
}

func parseContinuous(d Descriptor, value string, current int) (int, error) {
	if d.IsBoolean() {
		switch value {
		case "on", "true":
			return 1, nil
		case "off", "false":
			return 0, nil
		case toggleValue:
			return clamp(current^1, d.Min, d.Max), nil
		}
	}

	number, relative := strings.CutPrefix(value, relativePrefix)
	units, err := toStoredUnits(number, d.Scale)
	if err != nil {
		return 0, err
	}
	if relative {
		units += current
	}

	return clamp(units, d.Min, d.Max), nil
}

func parseCyclic(d Descriptor, value string, current int) (int, error) {
	if step, relative := strings.CutPrefix(value, relativePrefix); relative {
		n, err := strconv.Atoi(step)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, usageErrorf("Invalid number: %s", step)
		}
		return wrap(current+n%(d.Max+1), d.Max+1), nil
	}

	for i, label := range d.Labels {
		if label == value {
			return i, nil
		}
	}

	return 0, usageErrorf("Unsupported value: %s", value)
}

// toStoredUnits converts a user-facing decimal into stored units.
// Integers are required when scale is 1; otherwise the product is rounded to nearest.
func toStoredUnits(number string, scale int) (int, error) {
	if scale <= 1 {
		// ParseInt saturates to the int32 bounds on ErrRange.
		n, err := strconv.ParseInt(number, 10, 32)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, usageErrorf("Invalid number: %s", number)
		}
		return int(n), nil
	}

	f, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, usageErrorf("Invalid number: %s", number)
	}

	units := math.Round(f * float64(scale))
	units = math.Max(math.Min(units, math.MaxInt32), math.MinInt32)
	return int(units), nil
}

// formatValue renders a stored value in the form parseValue accepts.
// SimpleToggle has no stable textual form and reports ok=false.
func formatValue(d Descriptor, v int) (s string, ok bool) {
	switch d.Kind {
	case Continuous:
		if d.Scale <= 1 {
			return strconv.Itoa(v), true
		}
		return strconv.FormatFloat(float64(v)/float64(d.Scale), 'f', -1, 64), true
	case Cyclic:
		if len(d.Labels) == 0 {
			return "", false
		}
		return d.Labels[wrap(v, len(d.Labels))], true
	default:
		return "", false
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// wrap is a modulo whose result is always in [0, n).
func wrap(v, n int) int {
	return ((v % n) + n) % n
}
