package flagsearch

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// SearchService runs paginated feature searches.
type SearchService struct {
	svc searchUseCase
	obs *observer
}

// Do returns one page of results.
func (s *SearchService) Do(ctx context.Context, q Query) (p Page, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search", start, err) }()

	page, err := s.svc.Search(ctx, toInternalParams(&q))
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	s.obs.observeResults(len(page.Features()))
	return fromInternalPage(&page), nil
}

// All iterates every match, following cursors until the last page.
// Iteration stops at the first error.
func (s *SearchService) All(ctx context.Context, q Query) iter.Seq2[Feature, error] {
	return func(yield func(Feature, error) bool) {
		for {
			page, err := s.Do(ctx, q)
			if err != nil {
				yield(Feature{}, err)
				return
			}
			for _, f := range page.Features {
				if !yield(f, nil) {
					return
				}
			}
			if page.NextCursor == "" {
				return
			}
			q.Cursor = page.NextCursor
		}
	}
}
