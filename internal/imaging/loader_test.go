package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// encodePNG encodes an image to PNG bytes.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// createTestImageFile writes a solid-color PNG into a temp dir and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")
	if err := os.WriteFile(path, encodePNG(t, createInMemoryImage(width, height, c)), 0644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

func TestDecode_PNG(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(40, 30, color.RGBA{255, 0, 0, 255}))

	dec, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if dec.Format != "png" {
		t.Errorf("Format: got %s, want png", dec.Format)
	}
	if dec.Width() != 40 || dec.Height() != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", dec.Width(), dec.Height())
	}

	c := dec.Image.NRGBAAt(10, 10)
	if c.R != 255 || c.G != 0 || c.B != 0 {
		t.Errorf("pixel: got (%d,%d,%d), want (255,0,0)", c.R, c.G, c.B)
	}
}

func TestDecode_JPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createInMemoryImage(32, 32, color.RGBA{0, 0, 255, 255}), nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}

	dec, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if dec.Format != "jpeg" {
		t.Errorf("Format: got %s, want jpeg", dec.Format)
	}
}

func TestDecode_NormalizesGrayscale(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range gray.Pix {
		gray.Pix[i] = 100
	}

	dec, err := Decode(encodePNG(t, gray))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	c := dec.Image.NRGBAAt(3, 3)
	if c.R != 100 || c.G != 100 || c.B != 100 {
		t.Errorf("pixel: got (%d,%d,%d), want (100,100,100)", c.R, c.G, c.B)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("not an image")},
		{"truncated png", encodePNG(t, createInMemoryImage(10, 10, color.White))[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if err == nil {
				t.Fatal("Decode should fail")
			}
			if !errors.Is(err, ErrDecode) {
				t.Errorf("error should wrap ErrDecode, got %v", err)
			}
		})
	}
}

func TestNormalize_Offset(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 15, 25))
	norm, err := Normalize(src)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if norm.Bounds().Min != (image.Point{}) {
		t.Errorf("bounds should start at origin, got %v", norm.Bounds())
	}
	if norm.Bounds().Dx() != 10 || norm.Bounds().Dy() != 20 {
		t.Errorf("dimensions: got %v, want 10x20", norm.Bounds())
	}
}

func TestNormalize_Empty(t *testing.T) {
	if _, err := Normalize(image.NewRGBA(image.Rect(0, 0, 0, 10))); !errors.Is(err, ErrDecode) {
		t.Errorf("empty image should fail with ErrDecode, got %v", err)
	}
	if _, err := Normalize(nil); !errors.Is(err, ErrDecode) {
		t.Errorf("nil image should fail with ErrDecode, got %v", err)
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImageFile(t, 100, 100, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img1.Width() != 100 || img1.Height() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", img1.Width(), img1.Height())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := cache.Load(path)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Load should fail with ErrDecode, got %v", err)
	}
	if cache.Len() != 0 {
		t.Error("failed load should not be cached")
	}
}

func TestImageCache_ClearAndEvict(t *testing.T) {
	cache := NewImageCache()
	a := createTestImageFile(t, 20, 20, color.RGBA{0, 255, 0, 255})
	b := createTestImageFile(t, 20, 20, color.RGBA{0, 0, 255, 255})

	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	if cache.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", cache.Len())
	}

	cache.Evict(a)
	if cache.Len() != 1 {
		t.Errorf("Len after Evict: got %d, want 1", cache.Len())
	}

	// Should not panic
	cache.Evict("/nonexistent/path")

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Clear did not empty cache: %d images remain", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImageFile(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}
