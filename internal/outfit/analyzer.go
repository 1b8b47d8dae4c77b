package outfit

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"github.com/ironsheep/outfit-analyzer/internal/catalog"
	"github.com/ironsheep/outfit-analyzer/internal/garment"
	"github.com/ironsheep/outfit-analyzer/internal/imaging"
	"github.com/ironsheep/outfit-analyzer/internal/palette"
	"github.com/ironsheep/outfit-analyzer/internal/style"
)

// Result is the outcome of one analysis.
type Result struct {
	// DominantColors are hex colors, most vivid first.
	DominantColors        []string         `json:"dominant_colors"`
	StyleFeatures         style.Features   `json:"style_features"`
	DetectedCategory      garment.Category `json:"detected_category"`
	OutfitRecommendations []Recommendation `json:"outfit_recommendations"`
	Gender                garment.Gender   `json:"gender"`
}

// Features are the visual features extracted from one image.
type Features struct {
	DominantColors []string
	Style          style.Features
	Category       garment.Category
}

// Config configures an Analyzer.
type Config struct {
	// Searcher is the product-search capability used for recommendations.
	// If nil, catalog.FallbackSearcher is used.
	Searcher catalog.Searcher

	// NumColors is the number of dominant colors to extract. If zero,
	// palette.DefaultColorCount is used.
	NumColors int

	// QueryTimeout bounds each product query.
	QueryTimeout time.Duration

	// Logger receives diagnostics. If nil, logging is discarded.
	Logger hclog.Logger
}

// Analyzer runs the full pipeline: decode, feature extraction and
// recommendation composition. It keeps no per-call state, so concurrent
// calls are independent.
type Analyzer struct {
	quantizer *palette.Quantizer
	namer     *palette.Namer
	style     *style.Analyzer
	composer  *Composer
	numColors int
	logger    hclog.Logger
}

// New creates an Analyzer from cfg.
func New(cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	searcher := cfg.Searcher
	if searcher == nil {
		searcher = catalog.NewFallbackSearcher(nil)
	}
	numColors := cfg.NumColors
	if numColors <= 0 {
		numColors = palette.DefaultColorCount
	}

	namer := palette.NewNamer(nil)
	return &Analyzer{
		quantizer: palette.NewQuantizer(),
		namer:     namer,
		style:     style.NewAnalyzer(),
		composer: NewComposer(ComposerConfig{
			Searcher:     searcher,
			Namer:        namer,
			QueryTimeout: cfg.QueryTimeout,
			Logger:       logger.Named("composer"),
		}),
		numColors: numColors,
		logger:    logger,
	}
}

// Analyze decodes image bytes and analyzes them for gender. An empty gender
// selects garment.DefaultGender.
//
// Decode and extraction failures are returned as *AnalysisError; no partial
// result is ever returned. Search problems only reduce the recommendations.
func (a *Analyzer) Analyze(ctx context.Context, data []byte, gender garment.Gender) (*Result, error) {
	decoded, err := imaging.Decode(data)
	if err != nil {
		a.logger.Error("analysis failed", "stage", StageDecode, "error", err)
		return nil, decodeError(err)
	}
	a.logger.Debug("decoded image", "format", decoded.Format,
		"width", decoded.Width(), "height", decoded.Height())

	return a.AnalyzeImage(ctx, decoded.Image, gender)
}

// AnalyzeImage analyzes an already decoded image.
func (a *Analyzer) AnalyzeImage(ctx context.Context, img image.Image, gender garment.Gender) (*Result, error) {
	if gender == "" {
		gender = garment.DefaultGender
	}

	features, err := a.Extract(img)
	if err != nil {
		a.logger.Error("analysis failed", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	main, err := a.namer.NameHex(features.DominantColors[0])
	if err != nil {
		return nil, extractionError(StageColors, err)
	}
	a.logger.Debug("main color", "hex", features.DominantColors[0], "name", main)

	recommendations := a.composer.Compose(ctx, ComposeRequest{
		MainColor:        main,
		Category:         features.Category,
		Style:            features.Style,
		AdditionalColors: features.DominantColors[1:],
		Gender:           gender,
	})

	return &Result{
		DominantColors:        features.DominantColors,
		StyleFeatures:         features.Style,
		DetectedCategory:      features.Category,
		OutfitRecommendations: recommendations,
		Gender:                gender,
	}, nil
}

// Extract runs color quantization, style analysis and category detection
// concurrently over img. The three share the image read-only.
func (a *Analyzer) Extract(img image.Image) (*Features, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, decodeError(errors.New("image has no pixels"))
	}

	var features Features
	p := pool.New().WithErrors().WithFirstError()

	p.Go(func() error {
		return guard(StageColors, func() error {
			colors, err := a.quantizer.DominantColors(img, a.numColors)
			if err != nil {
				return err
			}
			if len(colors) == 0 {
				return errors.New("no dominant colors found")
			}
			features.DominantColors = colors
			a.logger.Debug("extracted colors", "colors", colors)
			return nil
		})
	})

	p.Go(func() error {
		return guard(StageStyle, func() error {
			f, err := a.style.Analyze(img)
			if err != nil {
				return err
			}
			features.Style = f
			a.logger.Debug("style features", "density", f.PatternDensity,
				"stripes", f.HasStripes, "solid", f.IsSolid)
			return nil
		})
	})

	p.Go(func() error {
		return guard(StageCategory, func() error {
			features.Category = garment.Detect(img)
			a.logger.Debug("detected category", "category", features.Category)
			return nil
		})
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return &features, nil
}

// guard runs f, reporting its error or panic as an extraction failure.
func guard(stage string, f func() error) error {
	var err error
	var pc panics.Catcher
	pc.Try(func() { err = f() })
	if r := pc.Recovered(); r != nil {
		err = fmt.Errorf("panic: %v", r.Value)
	}
	if err != nil {
		return extractionError(stage, err)
	}
	return nil
}
