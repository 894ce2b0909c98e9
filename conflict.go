package motion

import "strings"

// Attr is a bitmask of target attributes an effect claims to mutate. Effects
// declare their set once; the scheduler compares sets at Apply time and
// reports overlap on the same target as a warning, never as a failure.
type Attr uint8

const (
	AttrPosition Attr = 1 << iota
	AttrVelocity
	AttrAngle
	AttrAlpha
	AttrScale
)

var attrNames = []struct {
	attr Attr
	name string
}{
	{AttrPosition, "position"},
	{AttrVelocity, "velocity"},
	{AttrAngle, "angle"},
	{AttrAlpha, "alpha"},
	{AttrScale, "scale"},
}

// Has reports whether every bit of b is present in a.
func (a Attr) Has(b Attr) bool {
	return a&b == b
}

// Overlaps reports whether the two sets share any attribute.
func (a Attr) Overlaps(b Attr) bool {
	return a&b != 0
}

func (a Attr) String() string {
	if a == 0 {
		return "none"
	}
	var parts []string
	for _, n := range attrNames {
		if a.Has(n.attr) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "|")
}
