package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestGrayscale(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"red", color.RGBA{255, 0, 0, 255}, 76},
		{"green", color.RGBA{0, 255, 0, 255}, 150},
		{"blue", color.RGBA{0, 0, 255, 255}, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gray := Grayscale(createInMemoryImage(4, 3, tt.c))

			if gray.Bounds() != image.Rect(0, 0, 4, 3) {
				t.Fatalf("bounds: got %v", gray.Bounds())
			}
			for i, v := range gray.Pix {
				if d := int(v) - int(tt.want); d < -1 || d > 1 {
					t.Fatalf("pixel %d: got %d, want %d", i, v, tt.want)
				}
			}
		})
	}
}

func TestGrayscale_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 7, 9, 10))
	for y := 7; y < 10; y++ {
		for x := 5; x < 9; x++ {
			img.Set(x, y, color.White)
		}
	}
	img.Set(5, 7, color.Black)

	gray := Grayscale(img)
	if gray.Bounds() != img.Bounds() {
		t.Fatalf("bounds: got %v, want %v", gray.Bounds(), img.Bounds())
	}
	if got := gray.GrayAt(5, 7).Y; got != 0 {
		t.Errorf("corner: got %d, want 0", got)
	}
	if got := gray.GrayAt(8, 9).Y; got != 255 {
		t.Errorf("far corner: got %d, want 255", got)
	}
}

func TestCanny_UniformImage(t *testing.T) {
	// Uniform image should have no edges
	img := createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255})

	edges := Canny(Grayscale(img), 50, 150)

	if edges.Bounds().Dx() != 50 || edges.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %v, want 50x50", edges.Bounds())
	}
	if d := EdgeDensity(edges); d != 0 {
		t.Errorf("uniform image should have no edges, density %f", d)
	}
}

func TestCanny_StrongVerticalEdge(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if x < 50 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}

	edges := Canny(Grayscale(img), 50, 150)

	// The edge should be one pixel wide, right at the boundary
	count := 0
	for x := 0; x < 100; x++ {
		if edges.GrayAt(x, 50).Y == 255 {
			count++
			if x < 48 || x > 51 {
				t.Errorf("edge detected far from boundary at x=%d", x)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected a single edge pixel in row 50, got %d", count)
	}
}

func TestCanny_Rectangle(t *testing.T) {
	img := createEdgeTestImage(100, 100)
	edges := Canny(Grayscale(img), 50, 150)

	density := EdgeDensity(edges)
	if density <= 0 {
		t.Fatal("rectangle outline was not detected")
	}
	// Four 50px sides, one pixel thick, at most 200 pixels of 10000
	if density > 0.03 {
		t.Errorf("edges should be thin, density %f", density)
	}
}

func TestCanny_ThresholdsOrder(t *testing.T) {
	img := createEdgeTestImage(60, 60)
	gray := Grayscale(img)

	a := Canny(gray, 50, 150)
	b := Canny(gray, 150, 50)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatal("swapped thresholds should produce the same edge map")
		}
	}
}

func TestCanny_LowContrastIgnored(t *testing.T) {
	// A step of 5 intensity levels gives a Sobel magnitude of 20, below the
	// low threshold.
	img := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if x < 20 {
				img.SetGray(x, y, color.Gray{Y: 100})
			} else {
				img.SetGray(x, y, color.Gray{Y: 105})
			}
		}
	}

	if d := EdgeDensity(Canny(img, 50, 150)); d != 0 {
		t.Errorf("low contrast step should not produce edges, density %f", d)
	}
}

func TestCanny_SmallImages(t *testing.T) {
	for _, size := range []image.Point{{1, 1}, {1, 5}, {5, 1}, {3, 3}} {
		img := createInMemoryImage(size.X, size.Y, color.RGBA{10, 200, 30, 255})
		edges := Canny(Grayscale(img), 50, 150)
		if edges.Bounds().Dx() != size.X || edges.Bounds().Dy() != size.Y {
			t.Errorf("size %v: got %v", size, edges.Bounds())
		}
	}
}

func TestCanny_SubImage(t *testing.T) {
	full := Grayscale(createEdgeTestImage(100, 100))
	sub := full.SubImage(image.Rect(10, 10, 90, 90)).(*image.Gray)

	edges := Canny(sub, 50, 150)
	if edges.Bounds() != sub.Bounds() {
		t.Errorf("bounds: got %v, want %v", edges.Bounds(), sub.Bounds())
	}
	if EdgeDensity(edges) == 0 {
		t.Error("sub image edges were not detected")
	}
}

func TestEdgeDensity(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		edges.SetGray(x, 0, color.Gray{Y: 255})
	}

	if d := EdgeDensity(edges); math.Abs(d-0.1) > 1e-9 {
		t.Errorf("density: got %f, want 0.1", d)
	}
	if d := EdgeDensity(image.NewGray(image.Rect(0, 0, 0, 0))); d != 0 {
		t.Errorf("empty density: got %f, want 0", d)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},   // within range
		{-1, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tt := range tests {
		got := clamp(tt.val, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("clamp(%d, %d, %d): got %d, want %d",
				tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}

// createEdgeTestImage creates an image with a black rectangle on white background
// to create clear edges for testing
func createEdgeTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	// Black rectangle in center (creates 4 edges)
	for y := height / 4; y < 3*height/4; y++ {
		for x := width / 4; x < 3*width/4; x++ {
			img.Set(x, y, color.Black)
		}
	}

	return img
}
