package catalog

import "context"

// FallbackSearcher is an offline Searcher that always returns the fallback
// list. Its output depends only on the query.
type FallbackSearcher struct {
	formatter *Formatter
}

// NewFallbackSearcher creates a FallbackSearcher. A nil formatter selects
// the defaults.
func NewFallbackSearcher(f *Formatter) *FallbackSearcher {
	if f == nil {
		f = NewFormatter(nil, nil)
	}
	return &FallbackSearcher{formatter: f}
}

// Search returns the fallback list for q unless ctx is already done.
func (s *FallbackSearcher) Search(ctx context.Context, q Query) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.formatter.Fallback(q), nil
}
