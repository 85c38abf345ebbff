// FILE: companion/internal/mapping/mapping.go
package mapping

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/openxr-toolkit/companion/internal/fsutil"
)

// ErrUnknownProperty is returned for a name that is not a mapping property.
var ErrUnknownProperty = errors.New("unknown mapping property")

// Mapping holds one value for every mapping property.
type Mapping struct {
	values map[string]value
}

// Defaults returns the mapping the layer uses when no file is present.
func Defaults() *Mapping {
	m := &Mapping{values: make(map[string]value, len(properties))}
	for _, p := range properties {
		m.values[p.name] = p.def
	}
	return m
}

// Names lists the property names in file order.
func Names() []string {
	names := make([]string, len(properties))
	for i, p := range properties {
		names[i] = p.name
	}
	return names
}

// Get returns the formatted value of a property.
func (m *Mapping) Get(name string) (string, error) {
	p, ok := lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	return p.format(m.values[name]), nil
}

// Set validates and stores a property. Changing one distance of a gesture
// moves the other one so that near stays strictly below far.
func (m *Mapping) Set(name, raw string) error {
	p, ok := lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	v, err := p.parse(raw)
	if err != nil {
		return err
	}
	m.values[name] = v

	if gesture, ok := strings.CutSuffix(name, ".near"); ok {
		far := m.values[gesture+".far"]
		if v.n[0] >= far.n[0] {
			far.n[0] = v.n[0] + 1
			m.values[gesture+".far"] = far
		}
	} else if gesture, ok := strings.CutSuffix(name, ".far"); ok {
		near := m.values[gesture+".near"]
		if v.n[0] <= near.n[0] {
			near.n[0] = v.n[0] - 1
			m.values[gesture+".near"] = near
		}
	}
	return nil
}

// Parse reads name=value lines over the defaults. Lines without '=' are
// skipped, as are the derived rotation quaternions.
func Parse(r io.Reader) (*Mapping, error) {
	m := Defaults()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		name, raw, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if strings.HasSuffix(name, ".transform.quat") {
			continue
		}
		if err := m.Set(name, raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mapping: %w", err)
	}
	return m, nil
}

// Load parses the mapping file at path. A missing file yields the defaults.
func Load(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Save writes the mapping file atomically.
func (m *Mapping) Save(path string) error {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write mapping file: %w", err)
	}
	return nil
}

// WriteTo writes the file form of the mapping, one line per property.
func (m *Mapping) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, line := range m.lines(true) {
		n, err := io.WriteString(w, line+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Updates returns the lines sent to a running layer. Euler angles stay in the
// file; the layer receives the quaternion computed from them.
func (m *Mapping) Updates() []string {
	return m.lines(false)
}

func (m *Mapping) lines(withEuler bool) []string {
	lines := make([]string, 0, len(properties)+2)
	for _, p := range properties {
		if p.kind == kindEuler {
			if withEuler {
				lines = append(lines, p.name+"="+p.format(m.values[p.name]))
			}
			hand, _, _ := strings.Cut(p.name, ".")
			lines = append(lines, hand+".transform.quat="+quaternion(m.values[p.name].n))
			continue
		}
		lines = append(lines, p.name+"="+p.format(m.values[p.name]))
	}
	return lines
}

// quaternion converts degrees about X, Y and Z into "x y z w", applying yaw
// about Y, then pitch about X, then roll about Z.
func quaternion(deg [3]int) string {
	half := func(d int) (float64, float64) {
		return math.Sincos(float64(d) * math.Pi / 360)
	}
	sp, cp := half(deg[0])
	sy, cy := half(deg[1])
	sr, cr := half(deg[2])

	q := [4]float64{
		cy*sp*cr + sy*cp*sr,
		sy*cp*cr - cy*sp*sr,
		cy*cp*sr - sy*sp*cr,
		cy*cp*cr + sy*sp*sr,
	}
	parts := make([]string, len(q))
	for i, f := range q {
		parts[i] = strconv.FormatFloat(float64(float32(f)), 'f', -1, 32)
	}
	return strings.Join(parts, " ")
}
