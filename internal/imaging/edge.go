package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Luma weights for RGB to gray conversion (ITU-R BT.601).
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Grayscale converts an image to 8-bit luminance with BT.601 weights. The
// result keeps the bounds of img.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	// bild returns RGBA with equal channels; keep one.
	rgba := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)
	rb := rgba.Bounds()
	for y := 0; y < rb.Dy() && y < bounds.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < rb.Dx() && x < bounds.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// Canny performs Canny edge detection on a grayscale image.
//
// The result has the same bounds as the input; edge pixels are 255 and
// everything else is 0.
//
// Parameters:
//   - gray: Grayscale source image.
//   - thresholdLow: Gradient magnitude below which a pixel is never an edge.
//   - thresholdHigh: Gradient magnitude above which a pixel is always an edge.
//
// # Algorithm
//
//  1. Gradient computation: 3x3 Sobel operators over 8-bit intensities with
//     replicated borders; magnitude = |Gx| + |Gy|
//
//  2. Non-maximum suppression: each pixel is compared with its two neighbors
//     along the gradient direction (quantized to 0, 45, 90 or 135 degrees)
//
//  3. Hysteresis: pixels above thresholdHigh seed edges that are grown through
//     8-connected neighbors above thresholdLow
//
// Thresholds are on the raw Sobel scale, so the usual 50/150 pair applies
// directly to 8-bit photographs. No smoothing is applied beforehand.
func Canny(gray *image.Gray, thresholdLow, thresholdHigh int) *image.Gray {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := image.NewGray(bounds)
	if width == 0 || height == 0 {
		return result
	}
	if thresholdLow > thresholdHigh {
		thresholdLow, thresholdHigh = thresholdHigh, thresholdLow
	}

	base := gray.PixOffset(bounds.Min.X, bounds.Min.Y)
	at := func(x, y int) int {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return int(gray.Pix[base+y*gray.Stride+x])
	}

	gradX := make([]int, width*height)
	gradY := make([]int, width*height)
	magnitude := make([]int, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			i := y*width + x
			gradX[i] = gx
			gradY[i] = gy
			magnitude[i] = absInt(gx) + absInt(gy)
		}
	}

	mag := func(x, y int) int {
		if x < 0 || x >= width || y < 0 || y >= height {
			return 0
		}
		return magnitude[y*width+x]
	}

	const (
		weakEdge = iota + 1
		strongEdge
	)

	// tan(22.5) and tan(67.5) in 15-bit fixed point
	const (
		shift = 15
		tan22 = 13573
		tan67 = 79109
	)

	state := make([]uint8, width*height)
	stack := make([]int, 0, 1024)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := magnitude[i]
			if m <= thresholdLow {
				continue
			}

			gx := absInt(gradX[i])
			gy := absInt(gradY[i]) << shift
			var isMax bool

			switch {
			case gy < gx*tan22:
				// Horizontal gradient: compare left and right
				isMax = m > mag(x-1, y) && m >= mag(x+1, y)
			case gy > gx*tan67:
				// Vertical gradient: compare up and down
				isMax = m > mag(x, y-1) && m >= mag(x, y+1)
			default:
				// Diagonal gradient: direction depends on the sign product
				if (gradX[i] < 0) != (gradY[i] < 0) {
					isMax = m > mag(x+1, y-1) && m > mag(x-1, y+1)
				} else {
					isMax = m > mag(x-1, y-1) && m > mag(x+1, y+1)
				}
			}
			if !isMax {
				continue
			}

			if m > thresholdHigh {
				state[i] = strongEdge
				stack = append(stack, i)
			} else {
				state[i] = weakEdge
			}
		}
	}

	// Grow strong edges through connected weak candidates
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		result.Pix[y*result.Stride+x] = 255

		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				px, py := x+kx, y+ky
				if px < 0 || px >= width || py < 0 || py >= height {
					continue
				}
				j := py*width + px
				if state[j] == weakEdge {
					state[j] = strongEdge
					stack = append(stack, j)
				}
			}
		}
	}

	return result
}

// EdgeDensity returns the mean intensity of an edge map normalized to [0, 1].
func EdgeDensity(edges *image.Gray) float64 {
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}

	base := edges.PixOffset(bounds.Min.X, bounds.Min.Y)
	var sum uint64
	for y := 0; y < height; y++ {
		row := edges.Pix[base+y*edges.Stride : base+y*edges.Stride+width]
		for _, v := range row {
			sum += uint64(v)
		}
	}
	return float64(sum) / float64(width*height) / 255.0
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
