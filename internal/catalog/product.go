// Package catalog defines the product-search capability used to fill outfit
// recommendations, its fallback contract, and the SHEIN/RapidAPI backed
// implementation.
package catalog

import (
	"context"

	"github.com/ironsheep/outfit-analyzer/internal/garment"
	"github.com/ironsheep/outfit-analyzer/internal/palette"
)

// DefaultLimit is the number of products requested when a query sets none.
const DefaultLimit = 4

// Price is the price block of a product.
type Price struct {
	Current  float64 `json:"current"`
	Currency string  `json:"currency"`
	// Color is the display swatch of the queried color name.
	Color string `json:"color"`
}

// Product is a single search result.
type Product struct {
	Title      string `json:"title"`
	ImageURL   string `json:"image_url"`
	Price      Price  `json:"price"`
	Category   string `json:"category"`
	Type       string `json:"type"`
	ID         string `json:"id,omitempty"`
	ProductURL string `json:"product_url,omitempty"`
}

// Query describes one product lookup.
type Query struct {
	Category garment.Category
	Color    palette.NamedColor
	Gender   garment.Gender
	Limit    int
}

// Keywords returns the free-text search phrase "{gender} {color} {category}".
func (q Query) Keywords() string {
	return string(q.Gender) + " " + string(q.Color) + " " + string(q.Category)
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// Searcher finds products matching a query.
//
// Implementations absorb ordinary upstream failures by returning the
// fallback list instead of an error. An error is returned only when the
// search could not be attempted at all, for example because ctx is done.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Product, error)
}
