package flagsearch

import "github.com/kailas-cloud/flagsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrAlreadyExists = domain.ErrAlreadyExists
	ErrInvalidRecord = domain.ErrInvalidRecord
	ErrInvalidFilter = domain.ErrInvalidFilter
)
