// FILE: companion/internal/settings/usage.go
package settings

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// WriteUsage writes one line per setting: the flag, the accepted values and the default.
func (t Table) WriteUsage(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, d := range t {
		def, hasDefault := formatValue(d, d.Default)
		line := fmt.Sprintf("  -%s\t%s\t%s", d.ArgumentName, acceptedValues(d), d.Help)
		if hasDefault {
			line += " (default " + def + ")"
		}
		if _, err := fmt.Fprintln(tw, line); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func acceptedValues(d Descriptor) string {
	switch d.Kind {
	case Cyclic:
		return strings.Join(d.Labels, "|") + "|+N"
	case SimpleToggle:
		return toggleValue
	}

	lo, _ := formatValue(d, d.Min)
	hi, _ := formatValue(d, d.Max)
	bounds := lo + ".." + hi + "|+N"
	if d.IsBoolean() {
		return "on|off|toggle|" + bounds
	}
	if d.Scale > 1 {
		// Precision accepted after the decimal point.
		digits := len(strconv.Itoa(d.Scale)) - 1
		return fmt.Sprintf("%s (%d decimal)", bounds, digits)
	}
	return bounds
}
