// FILE: companion/internal/mapping/property.go

// Package mapping edits the hand-tracking gesture mapping read by the layer:
// a text file of name=value lines that can also be pushed live over UDP.
package mapping

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type kind int

const (
	kindVector        kind = iota // three offsets in millimetres, written in metres
	kindEuler                     // three angles in degrees
	kindEnabled                   // true or false
	kindJoint                     // hand joint index
	kindOptionalJoint             // hand joint index, -1 for none
	kindAction                    // controller input path, empty for none
	kindProfile                   // interaction profile path
	kindDistance                  // millimetres, written in metres
	kindThreshold                 // percent, written as a fraction
)

// value is a property in integer units, or text for actions and profiles.
type value struct {
	n    [3]int
	text string
}

type property struct {
	name    string
	kind    kind
	lo, hi  int
	choices []string
	def     value
}

// jointCount is the number of XrHandJointEXT values, palm to little tip.
const jointCount = 26

var (
	commonActions = []string{
		"",
		"/input/menu/click",
		"/input/trigger/value",
		"/input/squeeze/value",
		"/input/squeeze/click",
	}
	trailingActions = []string{
		"/input/thumbstick/click",
		"/input/system/click",
		"/input/trackpad/click",
		"/input/select/click",
	}

	leftActions  = actionList("/input/x/click", "/input/y/click")
	rightActions = actionList("/input/a/click", "/input/b/click")

	// Profiles lists the interaction profiles the layer can emulate.
	Profiles = []string{
		"/interaction_profiles/microsoft/motion_controller",
		"/interaction_profiles/hp/mixed_reality_controller",
		"/interaction_profiles/oculus/touch_controller",
		"/interaction_profiles/khr/simple_controller",
	}
)

func actionList(buttons ...string) []string {
	list := append([]string{}, commonActions...)
	list = append(list, buttons...)
	return append(list, trailingActions...)
}

func vector(name string) property {
	return property{name: name, kind: kindVector, lo: -100, hi: 100}
}

func euler(name string) property {
	return property{name: name, kind: kindEuler, lo: -180, hi: 180}
}

func action(name string, choices []string, def string) property {
	return property{name: name, kind: kindAction, choices: choices, def: value{text: def}}
}

func distance(name string, lo, hi, def int) property {
	return property{name: name, kind: kindDistance, lo: lo, hi: hi, def: value{n: [3]int{def}}}
}

// gesture returns the near and far distances of a gesture. near stays below far.
func gesture(name string, near, far int) []property {
	return []property{
		distance(name+".near", 0, 99, near),
		distance(name+".far", 1, 100, far),
	}
}

// properties lists every mapping property in the order the layer expects them.
var properties = concat(
	[]property{
		vector("left.transform.vec"),
		euler("left.transform.euler"),
		vector("right.transform.vec"),
		euler("right.transform.euler"),
		{name: "left.enabled", kind: kindEnabled, hi: 1, def: value{n: [3]int{1}}},
		{name: "right.enabled", kind: kindEnabled, hi: 1, def: value{n: [3]int{1}}},
		{name: "grip_joint", kind: kindJoint, hi: jointCount - 1},
		{name: "aim_joint", kind: kindJoint, hi: jointCount - 1, def: value{n: [3]int{8}}},

		action("left.pinch", leftActions, "/input/trigger/value"),
		action("left.thumb_press", leftActions, ""),
		action("left.index_bend", leftActions, ""),
		action("left.finger_gun", leftActions, ""),
		action("left.squeeze", leftActions, "/input/squeeze/value"),
		action("left.wrist_tap", leftActions, "/input/menu/click"),
		action("left.palm_tap", leftActions, ""),
		action("left.index_tip_tap", leftActions, "/input/system/click"),
		action("left.custom1", leftActions, ""),
		action("right.pinch", rightActions, "/input/trigger/value"),
		action("right.thumb_press", rightActions, ""),
		action("right.index_bend", rightActions, ""),
		action("right.finger_gun", rightActions, ""),
		action("right.squeeze", rightActions, "/input/squeeze/value"),
		action("right.wrist_tap", rightActions, ""),
		action("right.palm_tap", rightActions, ""),
		action("right.custom1", rightActions, ""),
		{name: "interaction_profile", kind: kindProfile, choices: Profiles, def: value{text: Profiles[1]}},
	},
	gesture("pinch", 0, 50),
	gesture("thumb_press", 0, 50),
	gesture("index_bend", 45, 70),
	gesture("finger_gun", 10, 30),
	gesture("squeeze", 35, 70),
	gesture("wrist_tap", 40, 60),
	gesture("palm_tap", 20, 60),
	gesture("index_tip_tap", 0, 70),
	[]property{
		{name: "click_threshold", kind: kindThreshold, lo: 10, hi: 100, def: value{n: [3]int{75}}},
		{name: "custom1_joint1", kind: kindOptionalJoint, lo: -1, hi: jointCount - 1, def: value{n: [3]int{-1}}},
		{name: "custom1_joint2", kind: kindOptionalJoint, lo: -1, hi: jointCount - 1, def: value{n: [3]int{-1}}},
	},
	gesture("custom1", 0, 100),
)

func concat(groups ...[]property) []property {
	var all []property
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

func lookup(name string) (property, bool) {
	for _, p := range properties {
		if p.name == name {
			return p, true
		}
	}
	return property{}, false
}

// parse validates raw and converts it to the property's units.
func (p property) parse(raw string) (value, error) {
	raw = strings.TrimSpace(raw)

	switch p.kind {
	case kindVector, kindEuler:
		fields := strings.Fields(raw)
		if len(fields) != 3 {
			return value{}, fmt.Errorf("%s: expected three numbers, got %q", p.name, raw)
		}
		var v value
		for i, field := range fields {
			n, err := p.number(field)
			if err != nil {
				return value{}, err
			}
			v.n[i] = n
		}
		return v, nil

	case kindEnabled:
		switch strings.ToLower(raw) {
		case "1", "true":
			return value{n: [3]int{1}}, nil
		case "0", "false":
			return value{}, nil
		}
		return value{}, fmt.Errorf("%s: expected true or false, got %q", p.name, raw)

	case kindJoint, kindOptionalJoint, kindDistance, kindThreshold:
		n, err := p.number(raw)
		if err != nil {
			return value{}, err
		}
		return value{n: [3]int{n}}, nil

	case kindAction, kindProfile:
		for _, choice := range p.choices {
			if choice == raw {
				return value{text: raw}, nil
			}
		}
		return value{}, fmt.Errorf("%s: unsupported value %q", p.name, raw)
	}
	return value{}, fmt.Errorf("%s: unknown property kind", p.name)
}

// number parses one field in the property's units and checks its range.
func (p property) number(field string) (int, error) {
	var n int
	switch p.kind {
	case kindVector, kindDistance, kindThreshold:
		f, err := strconv.ParseFloat(field, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%s: invalid number %q", p.name, field)
		}
		scale := 1000.0
		if p.kind == kindThreshold {
			scale = 100
		}
		n = int(math.Round(math.Max(math.Min(f*scale, math.MaxInt32), math.MinInt32)))
	default:
		i, err := strconv.Atoi(field)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid integer %q", p.name, field)
		}
		n = i
	}

	if n < p.lo || n > p.hi {
		return 0, fmt.Errorf("%s: %s is out of range", p.name, field)
	}
	return n, nil
}

// format renders v the way the layer reads it.
func (p property) format(v value) string {
	switch p.kind {
	case kindVector:
		return metres(v.n[0]) + " " + metres(v.n[1]) + " " + metres(v.n[2])
	case kindEuler:
		return fmt.Sprintf("%d %d %d", v.n[0], v.n[1], v.n[2])
	case kindEnabled:
		return strconv.FormatBool(v.n[0] != 0)
	case kindDistance:
		return metres(v.n[0])
	case kindThreshold:
		return strconv.FormatFloat(float64(v.n[0])/100, 'f', -1, 64)
	case kindAction, kindProfile:
		return v.text
	default:
		return strconv.Itoa(v.n[0])
	}
}

func metres(mm int) string {
	return strconv.FormatFloat(float64(mm)/1000, 'f', -1, 64)
}
