package feature

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/flagsearch/internal/domain"
	domfeature "github.com/kailas-cloud/flagsearch/internal/domain/feature"
	logpkg "github.com/kailas-cloud/flagsearch/internal/logger"
)

// Draft is the caller-supplied shape of a feature record.
// A zero CreatedAt keeps the stored value on update and uses the clock on create.
type Draft struct {
	Name         string
	Type         string
	Project      string
	Description  string
	CreatedAt    time.Time
	Archived     bool
	Tags         []domfeature.Tag
	Environments map[string]domfeature.EnvironmentStatus
}

// Service handles the feature record lifecycle.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a feature service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Upsert creates or replaces a record. Returns true if it was created.
func (s *Service) Upsert(ctx context.Context, d *Draft) (domfeature.Record, bool, error) {
	existing, err := s.repo.Get(ctx, d.Name)
	switch {
	case err == nil:
		if d.CreatedAt.IsZero() {
			d.CreatedAt = existing.CreatedAt()
		}
		if d.Archived && existing.IsArchived() {
			// keep the original archive time
			return s.store(ctx, d, existing.ArchivedAt())
		}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domfeature.Record{}, false, fmt.Errorf("get feature: %w", err)
	}
	return s.store(ctx, d, nil)
}

func (s *Service) store(ctx context.Context, d *Draft, archivedAt *time.Time) (domfeature.Record, bool, error) {
	rec, err := s.build(d, archivedAt)
	if err != nil {
		return domfeature.Record{}, false, err
	}
	created, err := s.repo.Upsert(ctx, &rec)
	if err != nil {
		return domfeature.Record{}, false, fmt.Errorf("upsert feature: %w", err)
	}
	return rec, created, nil
}

// Import stores many records in one round-trip. Records are validated up front;
// nothing is written if any of them is invalid.
func (s *Service) Import(ctx context.Context, drafts []Draft) (int, error) {
	recs := make([]domfeature.Record, 0, len(drafts))
	for i := range drafts {
		rec, err := s.build(&drafts[i], nil)
		if err != nil {
			return 0, fmt.Errorf("feature %d (%s): %w", i, drafts[i].Name, err)
		}
		recs = append(recs, rec)
	}
	if err := s.repo.UpsertMany(ctx, recs); err != nil {
		return 0, fmt.Errorf("import features: %w", err)
	}
	logpkg.FromContext(ctx).Info("features imported", zap.Int("count", len(recs)))
	return len(recs), nil
}

// Get retrieves a record by name.
func (s *Service) Get(ctx context.Context, name string) (domfeature.Record, error) {
	rec, err := s.repo.Get(ctx, name)
	if err != nil {
		return domfeature.Record{}, fmt.Errorf("get feature: %w", err)
	}
	return rec, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete feature: %w", err)
	}
	return nil
}

// Archive marks a record archived. Archiving an archived record is a no-op.
func (s *Service) Archive(ctx context.Context, name string) (domfeature.Record, error) {
	return s.update(ctx, name, func(r *domfeature.Record) (domfeature.Record, error) {
		if r.IsArchived() {
			return *r, nil
		}
		at := s.now()
		return r.WithArchivedAt(&at), nil
	})
}

// Revive clears the archived mark.
func (s *Service) Revive(ctx context.Context, name string) (domfeature.Record, error) {
	return s.update(ctx, name, func(r *domfeature.Record) (domfeature.Record, error) {
		return r.WithArchivedAt(nil), nil
	})
}

// SetEnvironment toggles a record in one environment, creating the entry if absent.
func (s *Service) SetEnvironment(ctx context.Context, name, env string, enabled bool) (domfeature.Record, error) {
	if env == "" {
		return domfeature.Record{}, fmt.Errorf("environment name is required: %w", domain.ErrInvalidRecord)
	}
	return s.update(ctx, name, func(r *domfeature.Record) (domfeature.Record, error) {
		status, _ := r.Environment(env)
		return r.WithEnvironment(env, status.WithEnabled(enabled)), nil
	})
}

// MarkSeen records usage of a record in an environment at the current time.
func (s *Service) MarkSeen(ctx context.Context, name, env string) (domfeature.Record, error) {
	if env == "" {
		return domfeature.Record{}, fmt.Errorf("environment name is required: %w", domain.ErrInvalidRecord)
	}
	return s.update(ctx, name, func(r *domfeature.Record) (domfeature.Record, error) {
		status, _ := r.Environment(env)
		return r.WithEnvironment(env, status.WithLastSeen(s.now())), nil
	})
}

// AddTag attaches a tag. Adding an existing tag is a no-op.
func (s *Service) AddTag(ctx context.Context, name string, tag domfeature.Tag) (domfeature.Record, error) {
	return s.update(ctx, name, func(r *domfeature.Record) (domfeature.Record, error) {
		return r.WithTag(tag), nil
	})
}

// RemoveTag detaches a tag. Returns ErrNotFound if the record does not carry it.
func (s *Service) RemoveTag(ctx context.Context, name string, tag domfeature.Tag) (domfeature.Record, error) {
	return s.update(ctx, name, func(r *domfeature.Record) (domfeature.Record, error) {
		if !r.HasTag(tag) {
			return domfeature.Record{}, fmt.Errorf("tag %s: %w", tag, domain.ErrNotFound)
		}
		return r.WithoutTag(tag), nil
	})
}

// update applies fn to the stored record and writes the result back.
// Last writer wins; concurrent updates to the same record are not serialized.
func (s *Service) update(
	ctx context.Context, name string, fn func(*domfeature.Record) (domfeature.Record, error),
) (domfeature.Record, error) {
	rec, err := s.repo.Get(ctx, name)
	if err != nil {
		return domfeature.Record{}, fmt.Errorf("get feature: %w", err)
	}
	next, err := fn(&rec)
	if err != nil {
		return domfeature.Record{}, err
	}
	if err := next.CheckTimes(); err != nil {
		return domfeature.Record{}, fmt.Errorf("validate feature: %w: %w", domain.ErrInvalidRecord, err)
	}
	if _, err := s.repo.Upsert(ctx, &next); err != nil {
		return domfeature.Record{}, fmt.Errorf("upsert feature: %w", err)
	}
	return next, nil
}

func (s *Service) build(d *Draft, archivedAt *time.Time) (domfeature.Record, error) {
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	rec, err := domfeature.New(d.Name, d.Type, d.Project, d.Description, createdAt, d.Tags, d.Environments)
	if err != nil {
		return domfeature.Record{}, fmt.Errorf("validate feature: %w: %w", domain.ErrInvalidRecord, err)
	}
	if d.Archived {
		if archivedAt == nil {
			at := s.now()
			archivedAt = &at
		}
		rec = rec.WithArchivedAt(archivedAt)
		if err := rec.CheckTimes(); err != nil {
			return domfeature.Record{}, fmt.Errorf("validate feature: %w: %w", domain.ErrInvalidRecord, err)
		}
	}
	return rec, nil
}
