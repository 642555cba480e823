package search

import (
	"context"

	"github.com/kailas-cloud/flagsearch/internal/domain/feature"
)

// Repository supplies the candidate records for a search.
// Snapshot may return records outside project; the filter engine re-checks the scope.
// project "" means all projects.
type Repository interface {
	Snapshot(ctx context.Context, project string) ([]feature.Record, error)
}
