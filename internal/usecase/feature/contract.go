package feature

import (
	"context"

	domfeature "github.com/kailas-cloud/flagsearch/internal/domain/feature"
)

// Repository defines the storage contract for feature records.
type Repository interface {
	Upsert(ctx context.Context, rec *domfeature.Record) (bool, error)
	UpsertMany(ctx context.Context, recs []domfeature.Record) error
	Get(ctx context.Context, name string) (domfeature.Record, error)
	Delete(ctx context.Context, name string) error
}
