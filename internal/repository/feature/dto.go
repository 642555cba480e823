package feature

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/flagsearch/internal/domain/feature"
)

// tagRow is the JSON-serializable representation of a tag.
type tagRow struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// environmentRow is the JSON-serializable representation of an environment status.
// LastSeenAt is Unix nanoseconds; nil means no metric.
type environmentRow struct {
	Enabled    bool   `json:"enabled"`
	LastSeenAt *int64 `json:"last_seen_at,omitempty"`
}

// recordToHash converts a domain Record to a map for HSET.
func recordToHash(r *feature.Record) (map[string]string, error) {
	tags := make([]tagRow, len(r.Tags()))
	for i, t := range r.Tags() {
		tags[i] = tagRow{Type: t.Type(), Value: t.Value()}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	envs := make(map[string]environmentRow, len(r.Environments()))
	for name, s := range r.Environments() {
		row := environmentRow{Enabled: s.Enabled()}
		if s.LastSeenAt() != nil {
			ns := s.LastSeenAt().UnixNano()
			row.LastSeenAt = &ns
		}
		envs[name] = row
	}
	envsJSON, err := json.Marshal(envs)
	if err != nil {
		return nil, fmt.Errorf("marshal environments: %w", err)
	}

	archivedAt := ""
	if r.ArchivedAt() != nil {
		archivedAt = strconv.FormatInt(r.ArchivedAt().UnixNano(), 10)
	}

	return map[string]string{
		"name":              r.Name(),
		"type":              r.Type(),
		"project":           r.Project(),
		"description":       r.Description(),
		"created_at":        strconv.FormatInt(r.CreatedAt().UnixNano(), 10),
		"archived_at":       archivedAt,
		"tags_json":         string(tagsJSON),
		"environments_json": string(envsJSON),
	}, nil
}

// recordFromHash hydrates a domain Record from an HGETALL result map.
func recordFromHash(m map[string]string) (feature.Record, error) {
	createdAt, err := parseNanos(m["created_at"])
	if err != nil {
		return feature.Record{}, fmt.Errorf("invalid created_at: %w", err)
	}

	var archivedAt *time.Time
	if s := m["archived_at"]; s != "" {
		t, err := parseNanos(s)
		if err != nil {
			return feature.Record{}, fmt.Errorf("invalid archived_at: %w", err)
		}
		archivedAt = &t
	}

	var tagRows []tagRow
	if s := m["tags_json"]; s != "" {
		if err := json.Unmarshal([]byte(s), &tagRows); err != nil {
			return feature.Record{}, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	var tags []feature.Tag
	for _, row := range tagRows {
		t, err := feature.NewTag(row.Type, row.Value)
		if err != nil {
			continue // corrupt row
		}
		tags = append(tags, t)
	}

	var envRows map[string]environmentRow
	if s := m["environments_json"]; s != "" {
		if err := json.Unmarshal([]byte(s), &envRows); err != nil {
			return feature.Record{}, fmt.Errorf("unmarshal environments: %w", err)
		}
	}
	envs := make(map[string]feature.EnvironmentStatus, len(envRows))
	for name, row := range envRows {
		var lastSeen *time.Time
		if row.LastSeenAt != nil {
			t := time.Unix(0, *row.LastSeenAt).UTC()
			lastSeen = &t
		}
		envs[name] = feature.NewEnvironmentStatus(row.Enabled, lastSeen)
	}

	return feature.Reconstruct(
		m["name"], m["type"], m["project"], m["description"],
		createdAt, archivedAt, tags, envs,
	), nil
}

func parseNanos(s string) (time.Time, error) {
	ns, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err //nolint:wrapcheck // wrapped by callers
	}
	return time.Unix(0, ns).UTC(), nil
}
