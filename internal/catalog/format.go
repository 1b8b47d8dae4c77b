package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/outfit-analyzer/internal/garment"
	"github.com/ironsheep/outfit-analyzer/internal/palette"
)

// Currency is the currency of every product price.
const Currency = "USD"

// DefaultPrice applies to categories without an entry in Prices.
const DefaultPrice = 29.99

// placeholderImage is the fallback image reference; the query is color then
// category.
const placeholderImage = "https://via.placeholder.com/400x600.png?text=%s+%s"

// Prices maps categories to their default price.
type Prices map[garment.Category]float64

// DefaultPrices returns the standard per-category default prices.
func DefaultPrices() Prices {
	return Prices{
		garment.Tops:      19.99,
		garment.Bottoms:   24.99,
		garment.Dresses:   34.99,
		garment.Outerwear: 39.99,
		garment.Shoes:     29.99,
	}
}

// For returns the default price of c.
func (p Prices) For(c garment.Category) float64 {
	if price, ok := p[garment.Category(strings.ToLower(string(c)))]; ok {
		return price
	}
	return DefaultPrice
}

// DefaultBrandStrip returns the vendor substrings removed from titles.
func DefaultBrandStrip() []string {
	return []string{"SHEIN", "MOD"}
}

// Formatter turns upstream records into Products and builds fallback lists.
// It holds immutable configuration data and is safe for concurrent use.
type Formatter struct {
	prices Prices
	strip  []string
}

// NewFormatter creates a Formatter. Nil arguments select DefaultPrices and
// DefaultBrandStrip.
func NewFormatter(prices Prices, strip []string) *Formatter {
	if prices == nil {
		prices = DefaultPrices()
	}
	if strip == nil {
		strip = DefaultBrandStrip()
	}

	f := &Formatter{
		prices: make(Prices, len(prices)),
		strip:  append([]string(nil), strip...),
	}
	for k, v := range prices {
		f.prices[k] = v
	}
	return f
}

// Fallback returns the single placeholder product for q.
func (f *Formatter) Fallback(q Query) []Product {
	return []Product{{
		Title:    defaultTitle(q),
		ImageURL: fmt.Sprintf(placeholderImage, q.Color, q.Category),
		Price: Price{
			Current:  f.prices.For(q.Category),
			Currency: Currency,
			Color:    palette.DisplayHex(q.Color),
		},
		Category: strings.ToLower(string(q.Category)),
		Type:     capitalize(string(q.Category)),
	}}
}

// CleanTitle removes vendor substrings and collapses whitespace. An empty
// result becomes "{Color} {Category}".
func (f *Formatter) CleanTitle(raw string, q Query) string {
	title := raw
	for _, s := range f.strip {
		title = strings.ReplaceAll(title, s, "")
	}
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return defaultTitle(q)
	}
	return title
}

// rawProduct is the subset of an upstream product record that is used.
type rawProduct struct {
	GoodsID     json.RawMessage `json:"goods_id"`
	GoodsName   string          `json:"goods_name"`
	GoodsImg    string          `json:"goods_img"`
	DetailURL   string          `json:"detail_url"`
	SalePrice   json.RawMessage `json:"salePrice"`
	RetailPrice json.RawMessage `json:"retailPrice"`
	RetailFlat  json.RawMessage `json:"retail_price"`
	Price       json.RawMessage `json:"price"`
}

// format converts an upstream record to a Product.
func (f *Formatter) format(p rawProduct, q Query) Product {
	image := strings.TrimSpace(p.GoodsImg)
	if image != "" && !strings.HasPrefix(image, "http://") && !strings.HasPrefix(image, "https://") {
		image = "https:" + image
	}

	return Product{
		Title:    f.CleanTitle(p.GoodsName, q),
		ImageURL: image,
		Price: Price{
			Current:  f.price(p, q.Category),
			Currency: Currency,
			Color:    palette.DisplayHex(q.Color),
		},
		Category:   strings.ToLower(string(q.Category)),
		Type:       capitalize(string(q.Category)),
		ID:         scalarString(p.GoodsID),
		ProductURL: p.DetailURL,
	}
}

// price picks the first present price field of p, in the order salePrice,
// retailPrice, retail_price, price. A missing, unparseable or non-positive
// amount yields the category default.
func (f *Formatter) price(p rawProduct, c garment.Category) float64 {
	for _, raw := range []json.RawMessage{p.SalePrice, p.RetailPrice, p.RetailFlat, p.Price} {
		if isAbsent(raw) {
			continue
		}
		amount, err := parseAmount(raw)
		if err != nil || amount <= 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
			return f.prices.For(c)
		}
		return amount
	}
	return f.prices.For(c)
}

var errNoAmount = errors.New("no amount")

// parseAmount accepts {"amount": x} objects, numbers and numeric strings.
func parseAmount(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var obj struct {
			Amount json.RawMessage `json:"amount"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return 0, err
		}
		if isAbsent(obj.Amount) {
			return 0, errNoAmount
		}
		raw = bytes.TrimSpace(obj.Amount)
	}

	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// scalarString renders a JSON string or number as text.
func scalarString(raw json.RawMessage) string {
	if isAbsent(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func defaultTitle(q Query) string {
	return capitalize(string(q.Color)) + " " + capitalize(string(q.Category))
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
