package feature

import "time"

// EnvironmentStatus is the per-environment state of a feature record.
type EnvironmentStatus struct {
	enabled    bool
	lastSeenAt *time.Time
}

// NewEnvironmentStatus creates an EnvironmentStatus. lastSeenAt may be nil.
func NewEnvironmentStatus(enabled bool, lastSeenAt *time.Time) EnvironmentStatus {
	if lastSeenAt != nil {
		t := lastSeenAt.UTC()
		lastSeenAt = &t
	}
	return EnvironmentStatus{enabled: enabled, lastSeenAt: lastSeenAt}
}

// Enabled reports whether the feature is enabled in the environment.
func (e EnvironmentStatus) Enabled() bool { return e.enabled }

// LastSeenAt returns the last usage timestamp reported by metrics ingestion.
func (e EnvironmentStatus) LastSeenAt() *time.Time { return e.lastSeenAt }

// WithEnabled returns a copy with the enabled flag set.
func (e EnvironmentStatus) WithEnabled(enabled bool) EnvironmentStatus {
	return EnvironmentStatus{enabled: enabled, lastSeenAt: e.lastSeenAt}
}

// WithLastSeen returns a copy with the last-seen timestamp set.
func (e EnvironmentStatus) WithLastSeen(at time.Time) EnvironmentStatus {
	return NewEnvironmentStatus(e.enabled, &at)
}
