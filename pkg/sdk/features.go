package flagsearch

import (
	"context"
	"fmt"
	"time"

	domfeature "github.com/kailas-cloud/flagsearch/internal/domain/feature"
	featureuc "github.com/kailas-cloud/flagsearch/internal/usecase/feature"
)

// FeatureService manages feature records.
type FeatureService struct {
	svc featureUseCase
	obs *observer
}

// Upsert creates or replaces a feature. Returns true if it was created.
func (s *FeatureService) Upsert(ctx context.Context, in FeatureInput) (f Feature, created bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("feature_upsert", start, err) }()

	d, err := toInternalDraft(&in)
	if err != nil {
		return Feature{}, false, fmt.Errorf("upsert feature: %w", err)
	}
	rec, created, err := s.svc.Upsert(ctx, &d)
	if err != nil {
		return Feature{}, false, fmt.Errorf("upsert feature: %w", err)
	}
	return fromInternalRecord(&rec), created, nil
}

// Import stores all inputs in one round trip. Nothing is written
// if any input is invalid.
func (s *FeatureService) Import(ctx context.Context, inputs []FeatureInput) (n int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("feature_import", start, err) }()

	drafts := make([]featureuc.Draft, len(inputs))
	for i := range inputs {
		d, err := toInternalDraft(&inputs[i])
		if err != nil {
			return 0, fmt.Errorf("import feature %q: %w", inputs[i].Name, err)
		}
		drafts[i] = d
	}
	n, err = s.svc.Import(ctx, drafts)
	if err != nil {
		return 0, fmt.Errorf("import features: %w", err)
	}
	return n, nil
}

// Get retrieves a feature by name.
func (s *FeatureService) Get(ctx context.Context, name string) (f Feature, err error) {
	start := time.Now()
	defer func() { s.obs.observe("feature_get", start, err) }()

	rec, err := s.svc.Get(ctx, name)
	if err != nil {
		return Feature{}, fmt.Errorf("get feature: %w", err)
	}
	return fromInternalRecord(&rec), nil
}

// Delete removes a feature.
func (s *FeatureService) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("feature_delete", start, err) }()

	if err = s.svc.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete feature: %w", err)
	}
	return nil
}

// Archive hides a feature from default searches.
func (s *FeatureService) Archive(ctx context.Context, name string) (Feature, error) {
	return s.apply("feature_archive", func() (domfeature.Record, error) {
		return s.svc.Archive(ctx, name)
	})
}

// Revive clears the archive mark.
func (s *FeatureService) Revive(ctx context.Context, name string) (Feature, error) {
	return s.apply("feature_revive", func() (domfeature.Record, error) {
		return s.svc.Revive(ctx, name)
	})
}

// Enable turns a feature on in env.
func (s *FeatureService) Enable(ctx context.Context, name, env string) (Feature, error) {
	return s.apply("feature_enable", func() (domfeature.Record, error) {
		return s.svc.SetEnvironment(ctx, name, env, true)
	})
}

// Disable turns a feature off in env.
func (s *FeatureService) Disable(ctx context.Context, name, env string) (Feature, error) {
	return s.apply("feature_disable", func() (domfeature.Record, error) {
		return s.svc.SetEnvironment(ctx, name, env, false)
	})
}

// MarkSeen records that a client evaluated the feature in env just now.
func (s *FeatureService) MarkSeen(ctx context.Context, name, env string) (Feature, error) {
	return s.apply("feature_seen", func() (domfeature.Record, error) {
		return s.svc.MarkSeen(ctx, name, env)
	})
}

// AddTag attaches a tag. Adding a present tag is a no-op.
func (s *FeatureService) AddTag(ctx context.Context, name string, tag Tag) (Feature, error) {
	return s.apply("feature_tag_add", func() (domfeature.Record, error) {
		t, err := domfeature.NewTag(tag.Type, tag.Value)
		if err != nil {
			return domfeature.Record{}, err //nolint:wrapcheck // wrapped in apply
		}
		return s.svc.AddTag(ctx, name, t)
	})
}

// RemoveTag detaches a tag. Returns ErrNotFound if the tag is absent.
func (s *FeatureService) RemoveTag(ctx context.Context, name string, tag Tag) (Feature, error) {
	return s.apply("feature_tag_remove", func() (domfeature.Record, error) {
		t, err := domfeature.NewTag(tag.Type, tag.Value)
		if err != nil {
			return domfeature.Record{}, err //nolint:wrapcheck // wrapped in apply
		}
		return s.svc.RemoveTag(ctx, name, t)
	})
}

func (s *FeatureService) apply(op string, fn func() (domfeature.Record, error)) (f Feature, err error) {
	start := time.Now()
	defer func() { s.obs.observe(op, start, err) }()

	rec, err := fn()
	if err != nil {
		return Feature{}, fmt.Errorf("%s: %w", op, err)
	}
	return fromInternalRecord(&rec), nil
}
