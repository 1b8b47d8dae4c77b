// Package outfit runs the end-to-end analysis of a single garment photo.
//
// An Analyzer decodes the image, extracts its dominant colors, style
// features and category concurrently, and asks a Composer to turn those
// features into outfit recommendations backed by a catalog.Searcher.
//
// Basic usage:
//
//	a := outfit.New(outfit.Config{Searcher: catalog.NewFallbackSearcher(nil)})
//	result, err := a.Analyze(ctx, data, garment.Women)
//	if errors.Is(err, outfit.ErrDecode) {
//	    // not an image
//	}
package outfit
