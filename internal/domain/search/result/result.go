package result

import "github.com/kailas-cloud/flagsearch/internal/domain/feature"

// Page is one slice of an ordered search result.
type Page struct {
	features   []feature.Record
	total      int
	nextCursor string
}

// New creates a Page. nextCursor is empty on the last page.
func New(features []feature.Record, total int, nextCursor string) Page {
	return Page{features: features, total: total, nextCursor: nextCursor}
}

// Features returns the page records in order.
func (p *Page) Features() []feature.Record { return p.features }

// Total returns the number of records matching the query before slicing.
func (p *Page) Total() int { return p.total }

// NextCursor returns the token for the following page ("" = last page).
func (p *Page) NextCursor() string { return p.nextCursor }

// HasMore reports whether a following page exists.
func (p *Page) HasMore() bool { return p.nextCursor != "" }
