package chi

import (
	"time"

	domfeature "github.com/kailas-cloud/flagsearch/internal/domain/feature"
)

// ErrorCode is the machine-readable error code returned in error bodies.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest           ErrorCode = "bad_request"
	ErrorCodeUnauthorized         ErrorCode = "unauthorized"
	ErrorCodeValidationFailed     ErrorCode = "validation_failed"
	ErrorCodeInvalidFilter        ErrorCode = "invalid_filter"
	ErrorCodeNotFound             ErrorCode = "not_found"
	ErrorCodeFeatureNotFound      ErrorCode = "feature_not_found"
	ErrorCodeFeatureAlreadyExists ErrorCode = "feature_already_exists"
	ErrorCodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Tag is a type:value label.
type Tag struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Environment is the per-environment state of a feature.
type Environment struct {
	Name       string     `json:"name"`
	Enabled    bool       `json:"enabled"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

// Feature is the wire shape of a feature record.
type Feature struct {
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	Project      string        `json:"project"`
	Description  string        `json:"description"`
	CreatedAt    time.Time     `json:"createdAt"`
	Archived     bool          `json:"archived"`
	ArchivedAt   *time.Time    `json:"archivedAt,omitempty"`
	Tags         []Tag         `json:"tags"`
	Environments []Environment `json:"environments"`
}

// SearchResponse is the body of GET /api/admin/search/features.
type SearchResponse struct {
	Features   []Feature `json:"features"`
	Total      int       `json:"total"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// EnvironmentState is the writable part of an environment entry.
type EnvironmentState struct {
	Enabled    bool       `json:"enabled"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

// UpsertFeatureRequest is the body of PUT /api/admin/features/{name}.
type UpsertFeatureRequest struct {
	Type         string                      `json:"type,omitempty"`
	Project      string                      `json:"project,omitempty"`
	Description  string                      `json:"description,omitempty"`
	CreatedAt    *time.Time                  `json:"createdAt,omitempty"`
	Archived     bool                        `json:"archived,omitempty"`
	Tags         []Tag                       `json:"tags,omitempty"`
	Environments map[string]EnvironmentState `json:"environments,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func featureToAPI(r *domfeature.Record) Feature {
	tags := make([]Tag, len(r.Tags()))
	for i, t := range r.Tags() {
		tags[i] = Tag{Type: t.Type(), Value: t.Value()}
	}

	names := r.EnvironmentNames()
	envs := make([]Environment, len(names))
	for i, name := range names {
		st, _ := r.Environment(name)
		envs[i] = Environment{Name: name, Enabled: st.Enabled(), LastSeenAt: st.LastSeenAt()}
	}

	return Feature{
		Name:         r.Name(),
		Type:         r.Type(),
		Project:      r.Project(),
		Description:  r.Description(),
		CreatedAt:    r.CreatedAt(),
		Archived:     r.IsArchived(),
		ArchivedAt:   r.ArchivedAt(),
		Tags:         tags,
		Environments: envs,
	}
}

func tagsFromAPI(in []Tag) ([]domfeature.Tag, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]domfeature.Tag, len(in))
	for i, t := range in {
		tag, err := domfeature.NewTag(t.Type, t.Value)
		if err != nil {
			return nil, err //nolint:wrapcheck // message is client-facing
		}
		out[i] = tag
	}
	return out, nil
}

func environmentsFromAPI(in map[string]EnvironmentState) map[string]domfeature.EnvironmentStatus {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]domfeature.EnvironmentStatus, len(in))
	for name, st := range in {
		out[name] = domfeature.NewEnvironmentStatus(st.Enabled, st.LastSeenAt)
	}
	return out
}
