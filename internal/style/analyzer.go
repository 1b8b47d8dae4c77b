// Package style derives pattern and texture descriptors from garment images.
package style

import (
	"errors"
	"image"
	"math"

	"github.com/ironsheep/outfit-analyzer/internal/detection"
	"github.com/ironsheep/outfit-analyzer/internal/imaging"
)

// Detection thresholds.
const (
	CannyLow  = 50
	CannyHigh = 150

	// StripeSegments is the minimum number of long segments for an image to
	// count as striped.
	StripeSegments = 6

	// SolidDensity is the edge density below which an image is solid.
	SolidDensity = 0.1

	// PatternedDensity is the edge density above which a non-solid,
	// non-striped image is called patterned rather than textured.
	PatternedDensity = 0.5
)

// Features describes the pattern characteristics of an image.
type Features struct {
	// PatternDensity is the mean edge-map intensity in [0, 1].
	PatternDensity float64 `json:"pattern_density"`

	// HasStripes is set when at least StripeSegments long straight
	// segments are found.
	HasStripes bool `json:"has_stripes"`

	// IsSolid is set when PatternDensity is below SolidDensity.
	IsSolid bool `json:"is_solid"`

	// Complexity is min(1, 2 * PatternDensity).
	Complexity float64 `json:"complexity"`

	// Uniformity is 1 - Complexity.
	Uniformity float64 `json:"uniformity"`
}

// Texture names the dominant surface character of the features.
type Texture string

// Texture values.
const (
	TextureSolid     Texture = "solid"
	TextureStriped   Texture = "striped"
	TexturePatterned Texture = "patterned"
	TextureTextured  Texture = "textured"
)

// Texture classifies the features: solid wins over striped, which wins
// over the density based patterned/textured split.
func (f Features) Texture() Texture {
	switch {
	case f.IsSolid:
		return TextureSolid
	case f.HasStripes:
		return TextureStriped
	case f.PatternDensity > PatternedDensity:
		return TexturePatterned
	default:
		return TextureTextured
	}
}

// Analyzer computes Features. It holds only read-only settings and is safe
// for concurrent use.
type Analyzer struct {
	lines detection.HoughParams
}

// NewAnalyzer returns an Analyzer using the default line detector settings.
func NewAnalyzer() *Analyzer {
	lines := detection.DefaultHoughParams()
	// Only the stripe decision depends on the count
	lines.MaxLines = StripeSegments
	return &Analyzer{lines: lines}
}

// Analyze computes the style features of img at full resolution.
func (a *Analyzer) Analyze(img image.Image) (Features, error) {
	if img == nil {
		return Features{}, errors.New("image cannot be nil")
	}
	if img.Bounds().Empty() {
		return Features{}, errors.New("image has no pixels")
	}

	edges := imaging.Canny(imaging.Grayscale(img), CannyLow, CannyHigh)
	density := imaging.EdgeDensity(edges)
	segments := detection.DetectSegments(edges, a.lines)

	complexity := math.Min(1, density*2)
	return Features{
		PatternDensity: density,
		HasStripes:     len(segments) >= StripeSegments,
		IsSolid:        density < SolidDensity,
		Complexity:     complexity,
		Uniformity:     1 - complexity,
	}, nil
}
