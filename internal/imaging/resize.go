package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Thumbnail scales an image down so that it fits within maxSide x maxSide,
// preserving the aspect ratio. Images that already fit are copied unchanged;
// nothing is ever scaled up.
func Thumbnail(img image.Image, maxSide int) *image.NRGBA {
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}
