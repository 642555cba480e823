package filter

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/kailas-cloud/flagsearch/internal/domain/feature"
)

// Environment state literals accepted by ParseStatus.
const (
	StateEnabled  = "enabled"
	StateDisabled = "disabled"
)

// Status is an (environment, enabled) pair.
type Status struct {
	environment string
	enabled     bool
}

// NewStatus validates and creates a Status condition.
func NewStatus(environment string, enabled bool) (Status, error) {
	if environment == "" {
		return Status{}, fmt.Errorf("status environment is required")
	}
	return Status{environment: environment, enabled: enabled}, nil
}

// ParseStatus parses "env:enabled" or "env:disabled". The state follows the last colon.
func ParseStatus(raw string) (Status, error) {
	i := strings.LastIndex(raw, ":")
	if i < 0 {
		return Status{}, fmt.Errorf("status %q must have the form env:enabled|disabled", raw)
	}
	env, state := strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+1:])
	switch state {
	case StateEnabled:
		return NewStatus(env, true)
	case StateDisabled:
		return NewStatus(env, false)
	default:
		return Status{}, fmt.Errorf("status %q: unknown state %q", raw, state)
	}
}

// Environment returns the environment name.
func (s Status) Environment() string { return s.environment }

// Enabled returns the required enabled state.
func (s Status) Enabled() bool { return s.enabled }

// String formats the condition as "env:enabled|disabled".
func (s Status) String() string {
	if s.enabled {
		return s.environment + ":" + StateEnabled
	}
	return s.environment + ":" + StateDisabled
}

// Expression is the conjunction of all search constraints.
// Values within a category are OR-combined; categories are AND-combined.
type Expression struct {
	project    string
	archived   bool
	text       string
	foldedText string
	types      []string
	tags       []feature.Tag
	statuses   []Status
}

// NewExpression creates an Expression. Empty categories impose no constraint.
// Duplicate values are collapsed.
func NewExpression(
	project, text string, archived bool,
	types []string, tags []feature.Tag, statuses []Status,
) Expression {
	return Expression{
		project:    project,
		archived:   archived,
		text:       text,
		foldedText: fold(text),
		types:      dedup(types),
		tags:       dedup(tags),
		statuses:   dedup(statuses),
	}
}

// Project returns the project scope ("" = all projects).
func (e Expression) Project() string { return e.project }

// Archived reports whether the expression selects archived records instead of live ones.
func (e Expression) Archived() bool { return e.archived }

// Text returns the free-text predicate.
func (e Expression) Text() string { return e.text }

// Types returns the accepted feature types.
func (e Expression) Types() []string { return e.types }

// Tags returns the accepted tags.
func (e Expression) Tags() []feature.Tag { return e.tags }

// Statuses returns the accepted environment states.
func (e Expression) Statuses() []Status { return e.statuses }

// IsEmpty reports whether the expression constrains nothing beyond the live/archived split.
func (e Expression) IsEmpty() bool {
	return e.project == "" && e.text == "" &&
		len(e.types) == 0 && len(e.tags) == 0 && len(e.statuses) == 0
}

// Matches reports whether the record satisfies every category of the expression.
func (e Expression) Matches(r *feature.Record) bool {
	if r.IsArchived() != e.archived {
		return false
	}
	if e.project != "" && r.Project() != e.project {
		return false
	}
	if len(e.types) > 0 && !slices.Contains(e.types, r.Type()) {
		return false
	}
	if len(e.tags) > 0 && !slices.ContainsFunc(e.tags, r.HasTag) {
		return false
	}
	if len(e.statuses) > 0 && !slices.ContainsFunc(e.statuses, func(s Status) bool {
		env, ok := r.Environment(s.environment)
		return ok && env.Enabled() == s.enabled
	}) {
		return false
	}
	return e.matchesText(r)
}

// matchesText does literal, case-folded substring containment on the name, the description
// and each formatted "type:value" tag string, so a needle may span the tag separator.
func (e Expression) matchesText(r *feature.Record) bool {
	if e.foldedText == "" {
		return true
	}
	if strings.Contains(fold(r.Name()), e.foldedText) {
		return true
	}
	if strings.Contains(fold(r.Description()), e.foldedText) {
		return true
	}
	for _, t := range r.Tags() {
		if strings.Contains(fold(t.String()), e.foldedText) {
			return true
		}
	}
	return false
}

// fold applies Unicode case folding. A fresh Caser per call: Casers are not goroutine-safe.
func fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}

func dedup[T comparable](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
