package style

import (
	"encoding/json"
	"image"
	"image/color"
	"math"
	"testing"
)

// createInMemoryImage creates a solid in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createStripedImage creates alternating black and white horizontal bands
func createStripedImage(width, height, band int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		c := color.White
		if (y/band)%2 == 0 {
			c = color.Black
		}
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createCheckerImage creates a black and white checkerboard
func createCheckerImage(width, height, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func TestAnalyze_SolidImage(t *testing.T) {
	a := NewAnalyzer()

	f, err := a.Analyze(createInMemoryImage(200, 200, color.RGBA{30, 90, 200, 255}))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !f.IsSolid {
		t.Error("uniform image should be solid")
	}
	if f.PatternDensity >= SolidDensity {
		t.Errorf("density: got %f, want < %f", f.PatternDensity, SolidDensity)
	}
	if math.Abs(f.Uniformity-1) > 1e-9 {
		t.Errorf("uniformity: got %f, want 1", f.Uniformity)
	}
	if f.HasStripes {
		t.Error("uniform image should not have stripes")
	}
	if f.Texture() != TextureSolid {
		t.Errorf("texture: got %s, want solid", f.Texture())
	}
}

func TestAnalyze_Stripes(t *testing.T) {
	a := NewAnalyzer()

	// 49 band boundaries, each a 300px edge row
	f, err := a.Analyze(createStripedImage(300, 300, 6))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !f.HasStripes {
		t.Error("banded image should have stripes")
	}
	if f.IsSolid {
		t.Errorf("banded image should not be solid, density %f", f.PatternDensity)
	}
	if f.Texture() != TextureStriped {
		t.Errorf("texture: got %s, want striped", f.Texture())
	}
}

func TestAnalyze_WideStripesStaySolid(t *testing.T) {
	a := NewAnalyzer()

	// Few boundaries: enough lines for stripes, too few edges to leave solid
	f, err := a.Analyze(createStripedImage(300, 300, 20))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !f.HasStripes {
		t.Error("banded image should have stripes")
	}
	if !f.IsSolid {
		t.Errorf("sparse edges should still be solid, density %f", f.PatternDensity)
	}
	if f.Texture() != TextureSolid {
		t.Errorf("solid should take precedence, got %s", f.Texture())
	}
}

func TestAnalyze_ShortStripesIgnored(t *testing.T) {
	a := NewAnalyzer()

	// Bands narrower than the minimum segment length
	f, err := a.Analyze(createStripedImage(80, 300, 20))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if f.HasStripes {
		t.Error("80px wide bands should not count as stripes")
	}
}

func TestAnalyze_Checkerboard(t *testing.T) {
	a := NewAnalyzer()

	f, err := a.Analyze(createCheckerImage(160, 160, 8))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if f.IsSolid {
		t.Errorf("checkerboard should not be solid, density %f", f.PatternDensity)
	}
	if want := math.Min(1, 2*f.PatternDensity); math.Abs(f.Complexity-want) > 1e-12 {
		t.Errorf("complexity: got %f, want %f", f.Complexity, want)
	}
	if math.Abs(f.Complexity+f.Uniformity-1) > 1e-12 {
		t.Errorf("uniformity should complement complexity: %f + %f", f.Complexity, f.Uniformity)
	}
}

func TestAnalyze_InvalidInput(t *testing.T) {
	a := NewAnalyzer()

	if _, err := a.Analyze(nil); err == nil {
		t.Error("expected error for nil image")
	}
	if _, err := a.Analyze(image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestFeatures_Texture(t *testing.T) {
	tests := []struct {
		name string
		f    Features
		want Texture
	}{
		{"solid", Features{IsSolid: true, HasStripes: true}, TextureSolid},
		{"striped", Features{HasStripes: true, PatternDensity: 0.7}, TextureStriped},
		{"patterned", Features{PatternDensity: 0.6}, TexturePatterned},
		{"boundary", Features{PatternDensity: 0.5}, TextureTextured},
		{"textured", Features{PatternDensity: 0.2}, TextureTextured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Texture(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFeatures_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Features{PatternDensity: 0.25, Complexity: 0.5, Uniformity: 0.5})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"pattern_density", "has_stripes", "is_solid", "complexity", "uniformity"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing field %q in %s", key, data)
		}
	}
}
