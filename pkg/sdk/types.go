package flagsearch

import "time"

// Tag is a type:value label attached to a feature.
type Tag struct {
	Type  string
	Value string
}

// Environment is the state of a feature in one environment.
type Environment struct {
	Name       string
	Enabled    bool
	LastSeenAt *time.Time // nil = never reported
}

// EnvironmentState is the writable part of an Environment.
type EnvironmentState struct {
	Enabled    bool
	LastSeenAt *time.Time
}

// Feature is a stored feature toggle.
type Feature struct {
	Name         string
	Type         string
	Project      string
	Description  string
	CreatedAt    time.Time
	ArchivedAt   *time.Time
	Tags         []Tag
	Environments []Environment // sorted by name
}

// Archived reports whether the feature is archived.
func (f *Feature) Archived() bool { return f.ArchivedAt != nil }

// FeatureInput describes a feature to create or replace.
// Empty Type and Project fall back to "release" and "default".
// A zero CreatedAt keeps the stored value on update.
type FeatureInput struct {
	Name         string
	Type         string
	Project      string
	Description  string
	CreatedAt    time.Time
	Archived     bool
	Tags         []Tag
	Environments map[string]EnvironmentState
}

// SortField selects the primary sort key.
type SortField string

// Sort fields.
const (
	SortByCreatedAt SortField = "createdAt"
	SortByName      SortField = "name"
)

// SortByEnvironment sorts by the last-seen time in env. Features never seen
// there sort as the earliest value.
func SortByEnvironment(env string) SortField {
	return SortField("environment:" + env)
}

// SortOrder is the sort direction. The name tie-break is always ascending.
type SortOrder string

// Sort orders.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Query is a feature search.
type Query struct {
	Text     string   // case-insensitive substring of name, description or "type:value" tag
	Project  string   // empty = all projects
	Types    []string // any of
	Tags     []string // "type:value", any of
	Statuses []string // "env:enabled" or "env:disabled", any of
	SortBy   SortField
	Order    SortOrder
	Cursor   string // from Page.NextCursor
	Limit    int    // 0 = default
	Archived bool   // true = only archived features
}

// Page is one page of search results.
type Page struct {
	Features   []Feature
	Total      int    // all matches, before paging
	NextCursor string // empty on the last page
}
