package feature

import (
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9._~-]+$`)

// Record limits.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 4096
	DefaultType          = "release"
	DefaultProject       = "default"
)

// Timestamps are persisted and compared as Unix nanoseconds, which bounds them
// to roughly 1677-2262.
var (
	MinTime = time.Unix(0, math.MinInt64).UTC()
	MaxTime = time.Unix(0, math.MaxInt64).UTC()
)

// CheckTime returns an error if t cannot be stored as Unix nanoseconds.
func CheckTime(field string, t time.Time) error {
	if t.Before(MinTime) || t.After(MaxTime) {
		return fmt.Errorf("%s %s is out of range (%d-%d)",
			field, t.UTC().Format(time.RFC3339), MinTime.Year(), MaxTime.Year())
	}
	return nil
}

// Record is a feature toggle with its tags and per-environment status (immutable value object).
type Record struct {
	name         string
	featureType  string
	project      string
	description  string
	createdAt    time.Time
	archivedAt   *time.Time
	tags         []Tag
	environments map[string]EnvironmentStatus
}

// New validates and creates a Record.
// Name: ^[a-zA-Z0-9._~-]+$, 1-100 chars. Type and project fall back to defaults when empty.
// Duplicate tags are collapsed.
func New(
	name, featureType, project, description string,
	createdAt time.Time,
	tags []Tag,
	environments map[string]EnvironmentStatus,
) (Record, error) {
	if name == "" {
		return Record{}, fmt.Errorf("feature name is required")
	}
	if len(name) > MaxNameLength {
		return Record{}, fmt.Errorf("feature name too long (max %d)", MaxNameLength)
	}
	if !nameRegex.MatchString(name) {
		return Record{}, fmt.Errorf("feature name must be URL-friendly (letters, digits, '.', '_', '~', '-')")
	}
	if len(description) > MaxDescriptionLength {
		return Record{}, fmt.Errorf("description too long (max %d bytes)", MaxDescriptionLength)
	}
	featureType = strings.TrimSpace(featureType)
	if featureType == "" {
		featureType = DefaultType
	}
	project = strings.TrimSpace(project)
	if project == "" {
		project = DefaultProject
	}
	for env := range environments {
		if strings.TrimSpace(env) == "" {
			return Record{}, fmt.Errorf("environment name is required")
		}
	}
	if createdAt.IsZero() {
		return Record{}, fmt.Errorf("createdAt is required")
	}
	if err := CheckTime("createdAt", createdAt); err != nil {
		return Record{}, err
	}
	for env, st := range environments {
		if st.LastSeenAt() != nil {
			if err := CheckTime("lastSeenAt of "+env, *st.LastSeenAt()); err != nil {
				return Record{}, err
			}
		}
	}

	return Record{
		name:         name,
		featureType:  featureType,
		project:      project,
		description:  description,
		createdAt:    createdAt.UTC(),
		tags:         dedupTags(tags),
		environments: maps.Clone(environments),
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(
	name, featureType, project, description string,
	createdAt time.Time, archivedAt *time.Time,
	tags []Tag, environments map[string]EnvironmentStatus,
) Record {
	return Record{
		name: name, featureType: featureType, project: project, description: description,
		createdAt: createdAt, archivedAt: archivedAt, tags: tags, environments: environments,
	}
}

// Name returns the unique feature name.
func (r *Record) Name() string { return r.name }

// Type returns the feature category.
func (r *Record) Type() string { return r.featureType }

// Project returns the owning project id.
func (r *Record) Project() string { return r.project }

// Description returns the optional description.
func (r *Record) Description() string { return r.description }

// CreatedAt returns the creation timestamp.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// ArchivedAt returns the archive timestamp, nil for live records.
func (r *Record) ArchivedAt() *time.Time { return r.archivedAt }

// IsArchived reports whether the record has been archived.
func (r *Record) IsArchived() bool { return r.archivedAt != nil }

// Tags returns the tag set.
func (r *Record) Tags() []Tag { return r.tags }

// Environments returns the per-environment status map.
func (r *Record) Environments() map[string]EnvironmentStatus { return r.environments }

// EnvironmentNames returns the configured environment names in lexical order.
func (r *Record) EnvironmentNames() []string {
	return slices.Sorted(maps.Keys(r.environments))
}

// Environment returns the status for env. ok is false when the feature is not configured there.
func (r *Record) Environment(env string) (EnvironmentStatus, bool) {
	s, ok := r.environments[env]
	return s, ok
}

// HasTag reports whether the record carries the exact tag.
func (r *Record) HasTag(t Tag) bool {
	return slices.Contains(r.tags, t)
}

// WithEnvironment returns a copy with the environment status replaced.
func (r *Record) WithEnvironment(env string, status EnvironmentStatus) Record {
	envs := maps.Clone(r.environments)
	if envs == nil {
		envs = make(map[string]EnvironmentStatus, 1)
	}
	envs[env] = status
	c := *r
	c.environments = envs
	return c
}

// WithTag returns a copy carrying the tag. Adding an existing tag is a no-op.
func (r *Record) WithTag(t Tag) Record {
	c := *r
	if r.HasTag(t) {
		return c
	}
	c.tags = append(slices.Clone(r.tags), t)
	return c
}

// WithoutTag returns a copy without the tag.
func (r *Record) WithoutTag(t Tag) Record {
	c := *r
	c.tags = slices.DeleteFunc(slices.Clone(r.tags), func(x Tag) bool { return x == t })
	return c
}

// WithArchivedAt returns a copy archived at the given time (nil revives it).
func (r *Record) WithArchivedAt(at *time.Time) Record {
	c := *r
	if at != nil {
		t := at.UTC()
		at = &t
	}
	c.archivedAt = at
	return c
}

// CheckTimes verifies that every timestamp on the record can be persisted.
// Records built by New only need it after With* updates.
func (r *Record) CheckTimes() error {
	if err := CheckTime("createdAt", r.createdAt); err != nil {
		return err
	}
	if r.archivedAt != nil {
		if err := CheckTime("archivedAt", *r.archivedAt); err != nil {
			return err
		}
	}
	for _, env := range r.EnvironmentNames() {
		if at := r.environments[env].LastSeenAt(); at != nil {
			if err := CheckTime("lastSeenAt of "+env, *at); err != nil {
				return err
			}
		}
	}
	return nil
}

func dedupTags(tags []Tag) []Tag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
