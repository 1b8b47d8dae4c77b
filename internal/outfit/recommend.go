package outfit

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/sourcegraph/conc/iter"

	"github.com/ironsheep/outfit-analyzer/internal/catalog"
	"github.com/ironsheep/outfit-analyzer/internal/garment"
	"github.com/ironsheep/outfit-analyzer/internal/palette"
	"github.com/ironsheep/outfit-analyzer/internal/style"
)

// Recommendation types.
const (
	Monochromatic = "Monochromatic Outfit"
	ColorContrast = "Color Contrast Outfit"
)

// DefaultQueryTimeout bounds each product query.
const DefaultQueryTimeout = 5 * time.Second

// piecesPerQuery is the number of products requested per category.
const piecesPerQuery = 1

// Recommendation is a group of products forming one outfit suggestion.
type Recommendation struct {
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Pieces      []catalog.Product `json:"pieces"`
}

// ComposeRequest holds the features a recommendation set is built from.
type ComposeRequest struct {
	// MainColor is the name of the most vivid dominant color.
	MainColor palette.NamedColor

	// Category is the detected category of the analyzed garment. It is never
	// recommended back.
	Category garment.Category

	// Style is not consulted by the current strategies.
	Style style.Features

	// AdditionalColors are the remaining dominant colors as hex strings,
	// most vivid first.
	AdditionalColors []string

	Gender garment.Gender
}

// ComposerConfig configures a Composer.
type ComposerConfig struct {
	// Searcher is the product-search capability. Required.
	Searcher catalog.Searcher

	// Namer names the contrast color. If nil, the default table is used.
	Namer *palette.Namer

	// QueryTimeout bounds each product query. If zero, DefaultQueryTimeout
	// is used.
	QueryTimeout time.Duration

	// MaxConcurrency limits concurrent queries per strategy. Zero means
	// GOMAXPROCS.
	MaxConcurrency int

	// Logger receives diagnostics. If nil, logging is discarded.
	Logger hclog.Logger
}

// Composer builds monochromatic and contrasting outfit recommendations from
// analysis features by querying a Searcher.
//
// A Composer is safe for concurrent use if its Searcher is.
type Composer struct {
	searcher       catalog.Searcher
	namer          *palette.Namer
	timeout        time.Duration
	maxConcurrency int
	logger         hclog.Logger
}

// NewComposer creates a Composer from cfg.
func NewComposer(cfg ComposerConfig) *Composer {
	namer := cfg.Namer
	if namer == nil {
		namer = palette.NewNamer(nil)
	}
	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Composer{
		searcher:       cfg.Searcher,
		namer:          namer,
		timeout:        timeout,
		maxConcurrency: cfg.MaxConcurrency,
		logger:         logger,
	}
}

// Compose returns up to two recommendations, monochromatic first.
//
// Categories are queried concurrently, but pieces always follow category
// order. A failed or timed-out query contributes no piece, and a
// recommendation without pieces is left out entirely. Compose never fails.
func (c *Composer) Compose(ctx context.Context, req ComposeRequest) []Recommendation {
	categories := garment.Categories(req.Gender)
	recommendations := make([]Recommendation, 0, 2)

	c.logger.Debug("generating monochromatic outfit", "gender", req.Gender, "color", req.MainColor)
	mono := c.gather(ctx, req, categories, func(int) palette.NamedColor { return req.MainColor })
	if len(mono) > 0 {
		recommendations = append(recommendations, Recommendation{
			Type:        Monochromatic,
			Description: fmt.Sprintf("A sophisticated %s ensemble for %s's wear", req.MainColor, req.Gender),
			Pieces:      mono,
		})
	}

	if len(req.AdditionalColors) == 0 {
		return recommendations
	}

	contrast, err := c.namer.NameHex(req.AdditionalColors[0])
	if err != nil {
		c.logger.Warn("skipping contrast outfit", "color", req.AdditionalColors[0], "error", err)
		return recommendations
	}

	c.logger.Debug("generating contrasting outfit", "gender", req.Gender,
		"main", req.MainColor, "contrast", contrast)
	// Color alternates by position in the full category list
	mixed := c.gather(ctx, req, categories, func(i int) palette.NamedColor {
		if i%2 == 0 {
			return req.MainColor
		}
		return contrast
	})
	if len(mixed) > 0 {
		recommendations = append(recommendations, Recommendation{
			Type:        ColorContrast,
			Description: fmt.Sprintf("A bold combination of %s and %s for %s's wear", req.MainColor, contrast, req.Gender),
			Pieces:      mixed,
		})
	}

	return recommendations
}

// gather queries every category except the detected one and concatenates
// the results in category order.
func (c *Composer) gather(
	ctx context.Context, req ComposeRequest, categories []garment.Category, colorAt func(int) palette.NamedColor,
) []catalog.Product {
	queries := make([]catalog.Query, 0, len(categories))
	for i, cat := range categories {
		if cat == req.Category {
			continue
		}
		queries = append(queries, catalog.Query{
			Category: cat,
			Color:    colorAt(i),
			Gender:   req.Gender,
			Limit:    piecesPerQuery,
		})
	}

	mapper := iter.Mapper[catalog.Query, []catalog.Product]{MaxGoroutines: c.maxConcurrency}
	results := mapper.Map(queries, func(q *catalog.Query) []catalog.Product {
		return c.query(ctx, *q)
	})

	pieces := make([]catalog.Product, 0, len(queries))
	for _, r := range results {
		pieces = append(pieces, r...)
	}
	return pieces
}

// query runs a single bounded search, degrading any failure to no results.
func (c *Composer) query(ctx context.Context, q catalog.Query) []catalog.Product {
	if c.searcher == nil {
		return nil
	}

	qctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	products, err := c.searcher.Search(qctx, q)
	if err != nil {
		c.logger.Warn("product query failed", "category", q.Category, "color", q.Color, "error", err)
		return nil
	}
	if len(products) > q.Limit {
		products = products[:q.Limit]
	}
	return products
}
