package request

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/flagsearch/internal/domain"
	"github.com/kailas-cloud/flagsearch/internal/domain/feature"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/order"
)

// Search parameter limits.
const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// Categories of dropped input.
const (
	CategoryType   = "type"
	CategoryTag    = "tag"
	CategoryStatus = "status"
	CategorySort   = "sort"
)

// Params are the raw, untyped request parameters.
type Params struct {
	Query     string
	ProjectID string
	Types     []string
	Tags      []string
	Statuses  []string
	SortBy    string
	SortOrder string
	Cursor    string
	Limit     string
	Archived  string
}

// Options tune parsing. Strict rejects malformed filters instead of dropping them.
type Options struct {
	DefaultLimit int
	MaxLimit     int
	Strict       bool
}

// DefaultOptions returns lenient parsing with the package limits.
func DefaultOptions() Options {
	return Options{DefaultLimit: DefaultLimit, MaxLimit: MaxLimit}
}

// Dropped is an input value discarded during parsing.
type Dropped struct {
	Category string
	Value    string
	Reason   string
}

// Query is a validated search query.
type Query struct {
	filters filter.Expression
	sort    order.Spec
	cursor  string
	limit   int
	dropped []Dropped
}

// Parse validates raw parameters into a Query.
// Malformed filter entries are dropped independently; an unrecognized sort field falls
// back to createdAt ascending; limit is defaulted and clamped. With opts.Strict the first
// malformed filter entry fails with domain.ErrInvalidFilter instead.
func Parse(p Params, opts Options) (Query, error) {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}

	var q Query
	drop := func(category, value string, err error) error {
		if opts.Strict {
			return fmt.Errorf("%w: %s %q: %w", domain.ErrInvalidFilter, category, value, err)
		}
		q.dropped = append(q.dropped, Dropped{Category: category, Value: value, Reason: err.Error()})
		return nil
	}

	types := make([]string, 0, len(p.Types))
	for _, raw := range p.Types {
		t := strings.TrimSpace(raw)
		if t == "" {
			if err := drop(CategoryType, raw, fmt.Errorf("empty type")); err != nil {
				return Query{}, err
			}
			continue
		}
		types = append(types, t)
	}

	tags := make([]feature.Tag, 0, len(p.Tags))
	for _, raw := range p.Tags {
		t, err := feature.ParseTag(raw)
		if err != nil {
			if err := drop(CategoryTag, raw, err); err != nil {
				return Query{}, err
			}
			continue
		}
		tags = append(tags, t)
	}

	statuses := make([]filter.Status, 0, len(p.Statuses))
	for _, raw := range p.Statuses {
		s, err := filter.ParseStatus(raw)
		if err != nil {
			if err := drop(CategoryStatus, raw, err); err != nil {
				return Query{}, err
			}
			continue
		}
		statuses = append(statuses, s)
	}

	archived, _ := strconv.ParseBool(strings.TrimSpace(p.Archived))

	q.filters = filter.NewExpression(
		strings.TrimSpace(p.ProjectID),
		strings.TrimSpace(p.Query),
		archived, types, tags, statuses,
	)

	spec, ok := order.Parse(strings.TrimSpace(p.SortBy), strings.TrimSpace(p.SortOrder))
	if !ok {
		q.dropped = append(q.dropped, Dropped{
			Category: CategorySort, Value: p.SortBy, Reason: "unrecognized sort field",
		})
	}
	q.sort = spec
	q.cursor = strings.TrimSpace(p.Cursor)
	q.limit = parseLimit(p.Limit, opts.DefaultLimit, opts.MaxLimit)

	return q, nil
}

// Filters returns the structured filter expression.
func (q *Query) Filters() filter.Expression { return q.filters }

// Sort returns the resolved sort order.
func (q *Query) Sort() order.Spec { return q.sort }

// Cursor returns the opaque cursor token ("" = first page).
func (q *Query) Cursor() string { return q.cursor }

// Limit returns the page size.
func (q *Query) Limit() int { return q.limit }

// Dropped returns the input values discarded during parsing.
func (q *Query) Dropped() []Dropped { return q.dropped }

// Fingerprint hashes the filter and sort shape of the query. Cursor and limit are excluded,
// so a page size change keeps an existing cursor valid.
func (q *Query) Fingerprint() uint64 {
	f := q.filters

	types := slices.Clone(f.Types())
	slices.Sort(types)
	tags := make([]string, len(f.Tags()))
	for i, t := range f.Tags() {
		tags[i] = t.String()
	}
	slices.Sort(tags)
	statuses := make([]string, len(f.Statuses()))
	for i, s := range f.Statuses() {
		statuses[i] = s.String()
	}
	slices.Sort(statuses)

	d := xxhash.New()
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = d.WriteString(p)
			_, _ = d.Write([]byte{0})
		}
		_, _ = d.Write([]byte{1})
	}
	write(f.Project(), strconv.FormatBool(f.Archived()), f.Text())
	write(types...)
	write(tags...)
	write(statuses...)
	write(q.sort.Field().String(), string(q.sort.Direction()))
	return d.Sum64()
}

func parseLimit(raw string, def, maxLimit int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		n = def
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n
}
