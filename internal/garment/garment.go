// Package garment defines garment categories and genders and infers a coarse
// category from image geometry.
package garment

import (
	"fmt"
	"image"
	"strings"
)

// Category is a coarse garment category.
type Category string

// Categories known to the analyzer.
const (
	Tops      Category = "tops"
	Bottoms   Category = "bottoms"
	Dresses   Category = "dresses"
	Outerwear Category = "outerwear"
	Shoes     Category = "shoes"
)

// Title returns the category with its first letter upper-cased ("Tops").
func (c Category) Title() string {
	return capitalize(string(c))
}

// ParseCategory normalizes s to one of the known categories.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case Tops, Bottoms, Dresses, Outerwear, Shoes:
		return c, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// Gender selects the set of categories considered for recommendations.
type Gender string

// Supported genders.
const (
	Women Gender = "women"
	Men   Gender = "men"
)

// DefaultGender is used when a request does not name one.
const DefaultGender = Women

// ParseGender normalizes s to a Gender. An empty string selects
// DefaultGender; anything other than "women" or "men" is an error.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return DefaultGender, nil
	case Women, Men:
		return g, nil
	default:
		return "", fmt.Errorf("unsupported gender %q (want %q or %q)", s, Women, Men)
	}
}

// Categories returns the recommendation category universe for g in
// iteration order. Dresses are only included for women.
func Categories(g Gender) []Category {
	if g == Women {
		return []Category{Tops, Bottoms, Dresses, Outerwear, Shoes}
	}
	return []Category{Tops, Bottoms, Outerwear, Shoes}
}

// Aspect ratio thresholds (height / width).
const (
	dressRatio  = 1.8
	topRatio    = 1.2
	bottomRatio = 0.8
)

// ClassifyAspect infers a category from the image dimensions alone:
//   - height/width > 1.8: dresses
//   - height/width > 1.2: tops
//   - height/width < 0.8: bottoms
//   - otherwise: tops
//
// A non-positive width yields tops.
func ClassifyAspect(width, height int) Category {
	if width <= 0 {
		return Tops
	}

	ratio := float64(height) / float64(width)
	switch {
	case ratio > dressRatio:
		return Dresses
	case ratio > topRatio:
		return Tops
	case ratio < bottomRatio:
		return Bottoms
	default:
		return Tops
	}
}

// Detect infers the category of the garment shown in img.
func Detect(img image.Image) Category {
	b := img.Bounds()
	return ClassifyAspect(b.Dx(), b.Dy())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
