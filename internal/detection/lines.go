package detection

import (
	"image"
	"math"
	"math/rand"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Segment represents a detected line segment between two edge pixels.
type Segment struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Length returns the Euclidean length of the segment in pixels.
func (s Segment) Length() float64 {
	dx := float64(s.End.X - s.Start.X)
	dy := float64(s.End.Y - s.Start.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// HoughParams configures the probabilistic Hough transform.
type HoughParams struct {
	// Rho is the distance resolution of the accumulator in pixels.
	Rho float64

	// Theta is the angular resolution of the accumulator in radians.
	Theta float64

	// Threshold is the minimum number of accumulator votes for a line
	// candidate to be examined.
	Threshold int

	// MinLineLength is the minimum extent of a segment along its dominant
	// axis. Shorter segments are discarded.
	MinLineLength int

	// MaxLineGap is the largest run of non-edge pixels tolerated while
	// walking along a candidate line.
	MaxLineGap int

	// MaxLines stops detection once this many segments are found. Zero means
	// no limit.
	MaxLines int

	// Seed fixes the order in which edge pixels are visited, making results
	// reproducible for identical input.
	Seed int64
}

// DefaultHoughParams returns the parameters used for stripe detection:
// 1px / 1 degree resolution, 50 votes, segments of at least 100px with gaps
// of at most 10px.
func DefaultHoughParams() HoughParams {
	return HoughParams{
		Rho:           1,
		Theta:         math.Pi / 180,
		Threshold:     50,
		MinLineLength: 100,
		MaxLineGap:    10,
		Seed:          42,
	}
}

// fixed point shift used when stepping along a line
const lineShift = 16

// DetectSegments finds line segments in a binary edge map using the
// progressive probabilistic Hough transform.
//
// Any non-zero pixel of edges counts as an edge. Returned coordinates are in
// the edge map's coordinate space.
//
// # Algorithm
//
//  1. Collect all edge pixels and visit them in a seeded random order
//  2. Each visited pixel votes for every (rho, theta) line through it
//  3. When a pixel's strongest bin reaches Threshold, walk the corresponding
//     line in both directions from that pixel, tolerating up to MaxLineGap
//     missing pixels
//  4. If the walked extent is at least MinLineLength, record the segment.
//     Either way, the pixels on the walked line are consumed; for accepted
//     segments their votes are also withdrawn from the accumulator
func DetectSegments(edges *image.Gray, params HoughParams) []Segment {
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}
	if params.Rho <= 0 {
		params.Rho = 1
	}
	if params.Theta <= 0 {
		params.Theta = math.Pi / 180
	}

	numAngle := int(math.Round(math.Pi / params.Theta))
	numRho := int(math.Round(float64((width+height)*2+1) / params.Rho))
	irho := 1 / params.Rho

	cosTab := make([]float64, numAngle)
	sinTab := make([]float64, numAngle)
	for n := 0; n < numAngle; n++ {
		angle := float64(n) * params.Theta
		cosTab[n] = math.Cos(angle) * irho
		sinTab[n] = math.Sin(angle) * irho
	}

	// Collect edge points and build the mask of unconsumed pixels
	base := edges.PixOffset(bounds.Min.X, bounds.Min.Y)
	mask := make([]bool, width*height)
	points := make([]Point, 0, 1024)
	for y := 0; y < height; y++ {
		row := edges.Pix[base+y*edges.Stride : base+y*edges.Stride+width]
		for x, v := range row {
			if v != 0 {
				mask[y*width+x] = true
				points = append(points, Point{X: x, Y: y})
			}
		}
	}

	accumulator := make([]int, numAngle*numRho)
	rhoOffset := (numRho - 1) / 2
	rhoIndex := func(x, y, n int) int {
		r := int(math.Round(float64(x)*cosTab[n] + float64(y)*sinTab[n]))
		return (r + rhoOffset) * numAngle
	}

	rng := rand.New(rand.NewSource(params.Seed))
	segments := make([]Segment, 0)

	for count := len(points); count > 0; count-- {
		// Pick a random remaining point and move the last one into its slot
		idx := rng.Intn(count)
		pt := points[idx]
		points[idx] = points[count-1]

		if !mask[pt.Y*width+pt.X] {
			continue
		}

		// Vote, remembering the strongest bin for this point
		maxVal := params.Threshold - 1
		maxN := 0
		for n := 0; n < numAngle; n++ {
			i := rhoIndex(pt.X, pt.Y, n) + n
			accumulator[i]++
			if accumulator[i] > maxVal {
				maxVal = accumulator[i]
				maxN = n
			}
		}

		if maxVal < params.Threshold {
			continue
		}

		// Walk along the line through pt in both directions
		a := -sinTab[maxN]
		b := cosTab[maxN]
		x0, y0 := pt.X, pt.Y
		var dx0, dy0 int
		xflag := math.Abs(a) > math.Abs(b)

		if xflag {
			dx0 = 1
			if a <= 0 {
				dx0 = -1
			}
			dy0 = int(math.Round(b * (1 << lineShift) / math.Abs(a)))
			y0 = (y0 << lineShift) + (1 << (lineShift - 1))
		} else {
			dy0 = 1
			if b <= 0 {
				dy0 = -1
			}
			dx0 = int(math.Round(a * (1 << lineShift) / math.Abs(b)))
			x0 = (x0 << lineShift) + (1 << (lineShift - 1))
		}

		var lineEnd [2]Point
		for k := 0; k < 2; k++ {
			gap := 0
			x, y, dx, dy := x0, y0, dx0, dy0
			if k > 0 {
				dx, dy = -dx, -dy
			}

			for ; ; x, y = x+dx, y+dy {
				px, py := x, y
				if xflag {
					py = y >> lineShift
				} else {
					px = x >> lineShift
				}
				if px < 0 || px >= width || py < 0 || py >= height {
					break
				}

				if mask[py*width+px] {
					gap = 0
					lineEnd[k] = Point{X: px, Y: py}
				} else {
					gap++
					if gap > params.MaxLineGap {
						break
					}
				}
			}
		}

		goodLine := absInt(lineEnd[1].X-lineEnd[0].X) >= params.MinLineLength ||
			absInt(lineEnd[1].Y-lineEnd[0].Y) >= params.MinLineLength

		// Consume the walked pixels, withdrawing their votes for good lines
		for k := 0; k < 2; k++ {
			x, y, dx, dy := x0, y0, dx0, dy0
			if k > 0 {
				dx, dy = -dx, -dy
			}

			for ; ; x, y = x+dx, y+dy {
				px, py := x, y
				if xflag {
					py = y >> lineShift
				} else {
					px = x >> lineShift
				}

				if mask[py*width+px] {
					if goodLine {
						for n := 0; n < numAngle; n++ {
							accumulator[rhoIndex(px, py, n)+n]--
						}
					}
					mask[py*width+px] = false
				}

				if px == lineEnd[k].X && py == lineEnd[k].Y {
					break
				}
			}
		}

		if goodLine {
			segments = append(segments, Segment{
				Start: Point{X: lineEnd[0].X + bounds.Min.X, Y: lineEnd[0].Y + bounds.Min.Y},
				End:   Point{X: lineEnd[1].X + bounds.Min.X, Y: lineEnd[1].Y + bounds.Min.Y},
			})
			if params.MaxLines > 0 && len(segments) >= params.MaxLines {
				break
			}
		}
	}

	return segments
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
