package palette

import (
	"math"
	"slices"
	"strings"

	"github.com/ironsheep/outfit-analyzer/internal/imaging"
)

// NamedColor is one of the fixed color names used in product queries.
type NamedColor string

// Named colors recognized by DefaultRanges.
const (
	Red    NamedColor = "red"
	Pink   NamedColor = "pink"
	Orange NamedColor = "orange"
	Yellow NamedColor = "yellow"
	Green  NamedColor = "green"
	Blue   NamedColor = "blue"
	Purple NamedColor = "purple"
	Brown  NamedColor = "brown"
	White  NamedColor = "white"
	Black  NamedColor = "black"
	Gray   NamedColor = "gray"

	// Beige only appears in the display swatch palette.
	Beige NamedColor = "beige"
)

// Range is an inclusive HSV bounding box on the 8-bit vision scale
// (hue 0-180, saturation and value 0-255).
type Range struct {
	Name  NamedColor
	Lower [3]float64
	Upper [3]float64
}

// Contains reports whether the scaled HSV triple lies inside the range.
func (r Range) Contains(h, s, v float64) bool {
	return r.Lower[0] <= h && h <= r.Upper[0] &&
		r.Lower[1] <= s && s <= r.Upper[1] &&
		r.Lower[2] <= v && v <= r.Upper[2]
}

// distance is the Manhattan distance from (h, s, v) to the lower corner.
func (r Range) distance(h, s, v float64) float64 {
	return math.Abs(h-r.Lower[0]) + math.Abs(s-r.Lower[1]) + math.Abs(v-r.Lower[2])
}

// DefaultRanges returns the standard matching table. Order matters: when two
// ranges are equally close, the earlier one wins.
func DefaultRanges() []Range {
	return []Range{
		{Name: Red, Lower: [3]float64{0, 50, 50}, Upper: [3]float64{10, 255, 255}},
		{Name: Pink, Lower: [3]float64{145, 30, 150}, Upper: [3]float64{175, 255, 255}},
		{Name: Orange, Lower: [3]float64{10, 100, 20}, Upper: [3]float64{25, 255, 255}},
		{Name: Yellow, Lower: [3]float64{25, 50, 50}, Upper: [3]float64{35, 255, 255}},
		{Name: Green, Lower: [3]float64{35, 50, 50}, Upper: [3]float64{85, 255, 255}},
		{Name: Blue, Lower: [3]float64{85, 50, 50}, Upper: [3]float64{130, 255, 255}},
		{Name: Purple, Lower: [3]float64{130, 50, 50}, Upper: [3]float64{145, 255, 255}},
		{Name: Brown, Lower: [3]float64{10, 50, 20}, Upper: [3]float64{20, 255, 200}},
		{Name: White, Lower: [3]float64{0, 0, 200}, Upper: [3]float64{180, 30, 255}},
		{Name: Black, Lower: [3]float64{0, 0, 0}, Upper: [3]float64{180, 255, 50}},
		{Name: Gray, Lower: [3]float64{0, 0, 50}, Upper: [3]float64{180, 50, 200}},
	}
}

// Namer maps arbitrary colors to the closest NamedColor of a range table.
// A Namer is immutable and safe for concurrent use.
type Namer struct {
	ranges   []Range
	fallback NamedColor
}

// NewNamer creates a Namer over ranges. A nil or empty table selects
// DefaultRanges. Colors outside every range are named black.
func NewNamer(ranges []Range) *Namer {
	if len(ranges) == 0 {
		ranges = DefaultRanges()
	}
	return &Namer{
		ranges:   slices.Clone(ranges),
		fallback: Black,
	}
}

// NameOf returns the named color for c.
//
// Among all ranges containing c, the one whose lower corner is closest in
// Manhattan distance wins. The function is total: every color gets a name.
func (n *Namer) NameOf(c imaging.RGBColor) NamedColor {
	h, s, v := c.HSV().Scaled()

	match := n.fallback
	best := -1.0
	for _, r := range n.ranges {
		if !r.Contains(h, s, v) {
			continue
		}
		if d := r.distance(h, s, v); best < 0 || d < best {
			best = d
			match = r.Name
		}
	}
	return match
}

// NameHex parses a "#rrggbb" string and names it.
func (n *Namer) NameHex(hex string) (NamedColor, error) {
	c, err := imaging.ParseHex(hex)
	if err != nil {
		return "", err
	}
	return n.NameOf(c), nil
}

// swatches maps names to the hex value shown next to a product. It is a
// separate palette from the matching ranges.
var swatches = map[NamedColor]string{
	Black:  "#000000",
	White:  "#FFFFFF",
	Gray:   "#808080",
	Red:    "#FF0000",
	Blue:   "#0000FF",
	Green:  "#008000",
	Yellow: "#FFD700",
	Purple: "#800080",
	Pink:   "#FFC0CB",
	Brown:  "#A0522D",
	Beige:  "#F5F5DC",
}

// DisplayHex returns the swatch color for a name, case-insensitively.
// Names without a swatch, orange included, render as gray "#808080".
func DisplayHex(name NamedColor) string {
	if hex, ok := swatches[NamedColor(strings.ToLower(string(name)))]; ok {
		return hex
	}
	return "#808080"
}
