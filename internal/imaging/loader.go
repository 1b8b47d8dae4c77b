package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrDecode is returned (wrapped) whenever image bytes cannot be decoded
// or normalized. Callers test for it with errors.Is.
var ErrDecode = errors.New("image decode failed")

// Decoded is a normalized image together with the format it was decoded from.
type Decoded struct {
	// Image holds the pixels as non-premultiplied 8-bit RGBA. The alpha
	// channel is carried but ignored by all analysis code.
	Image *image.NRGBA

	// Format is the registered decoder name ("png", "jpeg", "gif", "webp", "bmp", "tiff").
	Format string
}

// Width returns the image width in pixels.
func (d *Decoded) Width() int { return d.Image.Bounds().Dx() }

// Height returns the image height in pixels.
func (d *Decoded) Height() int { return d.Image.Bounds().Dy() }

// Decode decodes raw image bytes and normalizes the result to a 3-channel
// color image anchored at the origin.
//
// Any failure is reported as an error wrapping ErrDecode. Zero-sized images
// are rejected as well, since nothing downstream can analyze them.
func Decode(data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	norm, err := Normalize(img)
	if err != nil {
		return nil, err
	}
	return &Decoded{Image: norm, Format: format}, nil
}

// Normalize converts any image.Image into an origin-anchored *image.NRGBA.
//
// Palette, grayscale, CMYK and YCbCr sources all become plain RGB triples;
// transparent pixels keep their stored color, matching a straight
// RGBA to RGB conversion that drops the alpha channel.
func Normalize(img image.Image) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrDecode)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels (%dx%d)", ErrDecode, b.Dx(), b.Dy())
	}
	return imaging.Clone(img), nil
}

// ImageCache provides thread-safe caching of decoded images keyed by file path.
//
// Only decoded pixels are cached. Results of analyses are never stored here.
// Cached images remain in memory until Evict() or Clear() is called.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*Decoded
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*Decoded),
	}
}

// Load retrieves an image from the cache or reads and decodes it from disk.
//
// The image is cached using the exact path string provided. Different paths to
// the same file (relative vs absolute) result in separate cache entries.
func (c *ImageCache) Load(path string) (*Decoded, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*Decoded)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len reports how many images are currently cached.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
