package palette

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand"
	"slices"

	"github.com/ironsheep/outfit-analyzer/internal/imaging"
)

// DefaultColorCount is the number of dominant colors extracted per image.
const DefaultColorCount = 5

// MaxColorCount bounds the number of dominant colors a single call may ask for.
const MaxColorCount = 16

// Quantizer reduces an image to a small ranked set of representative colors
// using k-means clustering.
//
// The zero value is not usable; construct with NewQuantizer.
type Quantizer struct {
	// MaxSide bounds the thumbnail the samples are taken from.
	MaxSide int

	// Restarts is the number of independent k-means++ initializations.
	// The run with the lowest inertia wins.
	Restarts int

	// MaxIterations caps Lloyd iterations per restart.
	MaxIterations int

	// Tolerance is the convergence threshold relative to the mean per-channel
	// variance of the samples.
	Tolerance float64

	// Seed initializes the random source for every call.
	Seed int64
}

// NewQuantizer returns a Quantizer with the standard settings: 150px
// thumbnails, 10 restarts, 300 iterations, tolerance 1e-4 and seed 42.
func NewQuantizer() *Quantizer {
	return &Quantizer{
		MaxSide:       150,
		Restarts:      10,
		MaxIterations: 300,
		Tolerance:     1e-4,
		Seed:          42,
	}
}

// DominantColors extracts up to count representative colors from img as
// lowercase "#rrggbb" strings.
//
// Colors are ordered by descending saturation, then descending value, so
// vivid colors come before large neutral areas. When the image holds fewer
// than count distinct colors, each distinct color is returned once.
//
// The result is deterministic for identical input and settings.
func (q *Quantizer) DominantColors(img image.Image, count int) ([]string, error) {
	if img == nil {
		return nil, errors.New("image cannot be nil")
	}
	if count < 1 || count > MaxColorCount {
		return nil, fmt.Errorf("color count must be between 1 and %d, got %d", MaxColorCount, count)
	}

	thumb := imaging.Thumbnail(img, q.MaxSide)
	points := samplePoints(thumb)
	if len(points) == 0 {
		return nil, errors.New("no pixels found in image")
	}

	var centroids []point3D
	if unique := uniquePoints(points); len(unique) <= count {
		centroids = unique
	} else {
		rng := rand.New(rand.NewSource(q.Seed))
		centroids = q.cluster(rng, points, count)
	}

	return rankColors(centroids), nil
}

// point3D represents a point in RGB space with components in [0, 255].
type point3D struct {
	R, G, B float64
}

func (p point3D) distSq(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return dr*dr + dg*dg + db*db
}

// samplePoints flattens every pixel of img into RGB points.
func samplePoints(img *image.NRGBA) []point3D {
	bounds := img.Bounds()
	points := make([]point3D, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		i := img.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			points = append(points, point3D{
				R: float64(img.Pix[i]),
				G: float64(img.Pix[i+1]),
				B: float64(img.Pix[i+2]),
			})
			i += 4
		}
	}
	return points
}

// uniquePoints returns the distinct points in first-seen order.
func uniquePoints(points []point3D) []point3D {
	seen := make(map[point3D]bool)
	unique := make([]point3D, 0, 16)
	for _, p := range points {
		if !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}
	return unique
}

// cluster runs k-means Restarts times and returns the centroids of the run
// with the lowest inertia.
func (q *Quantizer) cluster(rng *rand.Rand, points []point3D, k int) []point3D {
	tol := q.Tolerance * meanVariance(points)
	restarts := max(q.Restarts, 1)

	var best []point3D
	bestInertia := math.Inf(1)
	for run := 0; run < restarts; run++ {
		centroids, inertia := q.lloyd(initCentroids(rng, points, k), points, tol)
		if inertia < bestInertia {
			best, bestInertia = centroids, inertia
		}
	}
	return best
}

// lloyd refines centroids until the total squared movement drops to tol or
// MaxIterations is reached, returning the final centroids and inertia.
func (q *Quantizer) lloyd(centroids, points []point3D, tol float64) ([]point3D, float64) {
	k := len(centroids)
	assignments := make([]int, len(points))
	sums := make([]point3D, k)
	counts := make([]int, k)

	for iter := 0; iter < q.MaxIterations; iter++ {
		assign(points, centroids, assignments)

		clear(sums)
		clear(counts)
		for i, p := range points {
			c := assignments[i]
			sums[c].R += p.R
			sums[c].G += p.G
			sums[c].B += p.B
			counts[c]++
		}

		next := make([]point3D, k)
		for c := range next {
			if counts[c] == 0 {
				// Reseed an empty cluster with the worst-fitting point
				next[c] = farthestPoint(points, centroids, assignments)
				continue
			}
			n := float64(counts[c])
			next[c] = point3D{R: sums[c].R / n, G: sums[c].G / n, B: sums[c].B / n}
		}

		shift := 0.0
		for c := range centroids {
			shift += centroids[c].distSq(next[c])
		}
		centroids = next
		if shift <= tol {
			break
		}
	}

	inertia := assign(points, centroids, assignments)
	return centroids, inertia
}

// assign labels each point with its nearest centroid and returns the inertia.
func assign(points, centroids []point3D, assignments []int) float64 {
	inertia := 0.0
	for i, p := range points {
		nearest := 0
		minDist := math.MaxFloat64
		for c, centroid := range centroids {
			if d := p.distSq(centroid); d < minDist {
				minDist = d
				nearest = c
			}
		}
		assignments[i] = nearest
		inertia += minDist
	}
	return inertia
}

func farthestPoint(points, centroids []point3D, assignments []int) point3D {
	far := points[0]
	maxDist := -1.0
	for i, p := range points {
		if d := p.distSq(centroids[assignments[i]]); d > maxDist {
			maxDist = d
			far = p
		}
	}
	return far
}

// initCentroids chooses k starting centroids with k-means++: the first
// uniformly at random, each next one with probability proportional to its
// squared distance from the nearest chosen centroid.
func initCentroids(rng *rand.Rand, points []point3D, k int) []point3D {
	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	distances := make([]float64, len(points))
	for i, p := range points {
		distances[i] = p.distSq(centroids[0])
	}

	for len(centroids) < k {
		total := 0.0
		for _, d := range distances {
			total += d
		}
		if total == 0 {
			// Fewer distinct points than k; callers avoid this
			centroids = append(centroids, centroids[len(centroids)-1])
			continue
		}

		target := rng.Float64() * total
		chosen := -1
		cumulative := 0.0
		for i, d := range distances {
			if d == 0 {
				continue
			}
			cumulative += d
			chosen = i
			if cumulative > target {
				break
			}
		}

		next := points[chosen]
		centroids = append(centroids, next)
		for i, p := range points {
			if d := p.distSq(next); d < distances[i] {
				distances[i] = d
			}
		}
	}

	return centroids
}

func meanVariance(points []point3D) float64 {
	n := float64(len(points))
	var mean point3D
	for _, p := range points {
		mean.R += p.R
		mean.G += p.G
		mean.B += p.B
	}
	mean = point3D{R: mean.R / n, G: mean.G / n, B: mean.B / n}

	variance := 0.0
	for _, p := range points {
		variance += p.distSq(mean)
	}
	return variance / n / 3
}

// rankColors orders centroids by descending (saturation, value) and formats
// them as hex strings.
func rankColors(centroids []point3D) []string {
	type ranked struct {
		hsv imaging.HSVColor
		hex string
	}

	items := make([]ranked, len(centroids))
	for i, c := range centroids {
		items[i] = ranked{
			hsv: imaging.HSVFromFloat(c.R, c.G, c.B),
			hex: imaging.RGBFromFloat(c.R, c.G, c.B).Hex(),
		}
	}

	slices.SortStableFunc(items, func(a, b ranked) int {
		switch {
		case a.hsv.S != b.hsv.S:
			if a.hsv.S > b.hsv.S {
				return -1
			}
			return 1
		case a.hsv.V != b.hsv.V:
			if a.hsv.V > b.hsv.V {
				return -1
			}
			return 1
		}
		return 0
	})

	colors := make([]string, len(items))
	for i, item := range items {
		colors[i] = item.hex
	}
	return colors
}
