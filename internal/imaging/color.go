package imaging

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSVColor represents a color in HSV (Hue, Saturation, Value) color space
// using unit scale: every component lies in [0, 1], hue wrapping at 1.
type HSVColor struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// ParseHex parses "#rrggbb" or "rrggbb" (either case) into an RGBColor.
func ParseHex(s string) (RGBColor, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 7 {
		return RGBColor{}, fmt.Errorf("invalid hex color %q: want 6 hex digits", s)
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return RGBColor{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGBColor{R: r, G: g, B: b}, nil
}

// FromColor converts any color.Color to 8-bit RGB, ignoring alpha.
func FromColor(c color.Color) RGBColor {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBColor{R: n.R, G: n.G, B: n.B}
}

// Hex formats the color as lowercase "#rrggbb".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HSV converts the color to unit-scale HSV.
func (c RGBColor) HSV() HSVColor {
	return HSVFromFloat(float64(c.R), float64(c.G), float64(c.B))
}

// HSVFromFloat converts floating point RGB components in [0, 255] (for example
// a cluster centroid) to unit-scale HSV.
func HSVFromFloat(r, g, b float64) HSVColor {
	h, s, v := colorful.Color{R: r / 255.0, G: g / 255.0, B: b / 255.0}.Hsv()
	return HSVColor{H: h / 360.0, S: s, V: v}
}

// Scaled returns the HSV components on the 8-bit vision scale:
// hue in [0, 180], saturation and value in [0, 255].
func (c HSVColor) Scaled() (h, s, v float64) {
	return c.H * 180, c.S * 255, c.V * 255
}

// RGBFromFloat truncates floating point components in [0, 255] to an
// RGBColor, clamping values outside the range.
func RGBFromFloat(r, g, b float64) RGBColor {
	return RGBColor{R: truncByte(r), G: truncByte(g), B: truncByte(b)}
}

func truncByte(v float64) uint8 {
	// Guard against 254.99999 style drift from averaging.
	v = math.Floor(v + 1e-9)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
