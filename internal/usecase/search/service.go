package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/flagsearch/internal/domain/feature"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/cursor"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/order"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/request"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/flagsearch/internal/logger"
	"github.com/kailas-cloud/flagsearch/internal/metrics"
)

// Service answers paginated feature searches over a store snapshot.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	repo  Repository
	codec *cursor.Codec
	opts  request.Options
}

// New creates a search service.
func New(repo Repository, codec *cursor.Codec) *Service {
	if codec == nil {
		codec = cursor.NewCodec("")
	}
	return &Service{repo: repo, codec: codec, opts: request.DefaultOptions()}
}

// WithLimits configures the default and maximum page size.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.opts.DefaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.opts.MaxLimit = maxLimit
	}
	return s
}

// WithStrictFilters makes malformed filters fail the request instead of being dropped.
func (s *Service) WithStrictFilters(strict bool) *Service {
	s.opts.Strict = strict
	return s
}

// Search runs parse -> filter -> count -> sort -> resume -> slice -> encode.
func (s *Service) Search(ctx context.Context, params request.Params) (result.Page, error) {
	start := time.Now()
	log := logpkg.FromContext(ctx)

	q, err := request.Parse(params, s.opts)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(order.ByCreatedAt), "invalid").Inc()
		return result.Page{}, fmt.Errorf("parse query: %w", err)
	}
	for _, d := range q.Dropped() {
		metrics.SearchDroppedFiltersTotal.WithLabelValues(d.Category).Inc()
		log.Debug("search input ignored",
			zap.String("category", d.Category),
			zap.String("value", d.Value),
			zap.String("reason", d.Reason),
		)
	}

	sortLabel := string(q.Sort().Field().Kind())
	ctx = logpkg.With(ctx, zap.String("sort", sortLabel), zap.Int("limit", q.Limit()))
	page, err := s.execute(ctx, &q)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(sortLabel, "error").Inc()
		return result.Page{}, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(sortLabel, "ok").Inc()
	metrics.SearchMatchedRecords.Observe(float64(page.Total()))
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	return page, nil
}

func (s *Service) execute(ctx context.Context, q *request.Query) (result.Page, error) {
	expr := q.Filters()
	records, err := s.repo.Snapshot(ctx, expr.Project())
	if err != nil {
		return result.Page{}, fmt.Errorf("load snapshot: %w", err)
	}

	matched := make([]feature.Record, 0, len(records))
	for i := range records {
		if expr.Matches(&records[i]) {
			matched = append(matched, records[i])
		}
	}
	total := len(matched)

	spec := q.Sort()
	spec.Sort(matched)

	fingerprint := q.Fingerprint()
	after := s.resumeKey(ctx, q.Cursor(), fingerprint)

	page, last, more := cursor.Slice(matched, spec, after, q.Limit())

	var next string
	if more && len(page) > 0 {
		next = s.codec.Encode(fingerprint, last)
	}
	return result.New(page, total, next), nil
}

// resumeKey decodes the cursor, failing soft to the first page.
func (s *Service) resumeKey(ctx context.Context, token string, fingerprint uint64) *order.Key {
	if token == "" {
		return nil
	}
	key, err := s.codec.Decode(token, fingerprint)
	if err != nil {
		reason := "malformed"
		switch {
		case errors.Is(err, cursor.ErrQueryMismatch):
			reason = "mismatch"
		case errors.Is(err, cursor.ErrBadSignature):
			reason = "signature"
		}
		metrics.SearchCursorRejectedTotal.WithLabelValues(reason).Inc()
		logpkg.FromContext(ctx).Debug("cursor ignored, restarting from first page",
			zap.String("reason", reason), zap.Error(err))
		return nil
	}
	return &key
}
