package feature

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/flagsearch/internal/db"
	"github.com/kailas-cloud/flagsearch/internal/domain"
	domfeature "github.com/kailas-cloud/flagsearch/internal/domain/feature"
	logpkg "github.com/kailas-cloud/flagsearch/internal/logger"
)

// DefaultKeyPrefix namespaces all keys written by the repository.
const DefaultKeyPrefix = "flagsearch:"

// store is the consumer interface for feature records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/feature.Repository and usecase/search.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a feature repository.
func New(s store) *Repo {
	return &Repo{store: s, prefix: DefaultKeyPrefix}
}

// WithKeyPrefix overrides the key namespace.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

// Upsert stores a record. Returns true if it was created.
func (r *Repo) Upsert(ctx context.Context, rec *domfeature.Record) (bool, error) {
	key := r.featureKey(rec.Name())
	data, err := recordToHash(rec)
	if err != nil {
		return false, err
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, data); err != nil {
		return false, fmt.Errorf("hset feature %s: %w", rec.Name(), err)
	}
	return !exists, nil
}

// UpsertMany stores records in a single pipelined round-trip.
func (r *Repo) UpsertMany(ctx context.Context, recs []domfeature.Record) error {
	if len(recs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(recs))
	for i := range recs {
		data, err := recordToHash(&recs[i])
		if err != nil {
			return fmt.Errorf("encode feature %s: %w", recs[i].Name(), err)
		}
		items[i] = db.HashSetItem{Key: r.featureKey(recs[i].Name()), Fields: data}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi features: %w", err)
	}
	return nil
}

// Get returns a record by name.
func (r *Repo) Get(ctx context.Context, name string) (domfeature.Record, error) {
	m, err := r.store.HGetAll(ctx, r.featureKey(name))
	if err != nil {
		return domfeature.Record{}, fmt.Errorf("hgetall feature %s: %w", name, err)
	}
	if len(m) == 0 {
		return domfeature.Record{}, domain.ErrNotFound
	}
	return recordFromHash(m)
}

// Delete removes a record.
func (r *Repo) Delete(ctx context.Context, name string) error {
	key := r.featureKey(name)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Snapshot loads every record, restricted to project when non-empty.
// Hashes that fail to parse are logged and left out.
func (r *Repo) Snapshot(ctx context.Context, project string) ([]domfeature.Record, error) {
	keys, err := r.store.Scan(ctx, r.featureKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan features: %w", err)
	}
	if len(keys) == 0 {
		return []domfeature.Record{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi features: %w", err)
	}

	records := make([]domfeature.Record, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		if project != "" && m["project"] != project {
			continue
		}
		rec, err := recordFromHash(m)
		if err != nil {
			logpkg.FromContext(ctx).Warn("skipping unreadable feature",
				zap.String("name", strings.TrimPrefix(keys[i], r.featureKey(""))),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Key pattern: {prefix}feature:{name}

func (r *Repo) featureKey(name string) string {
	return r.prefix + "feature:" + name
}
