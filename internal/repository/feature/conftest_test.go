package feature

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/flagsearch/internal/db"
	domfeature "github.com/kailas-cloud/flagsearch/internal/domain/feature"
)

// mockStore is an in-memory implementation of the consumer interface for tests.
type mockStore struct {
	hashes    map[string]map[string]string
	hsetErr   error
	scanErr   error
	multiErr  error
	existsErr error
}

func newMockStore() *mockStore {
	return &mockStore{hashes: map[string]map[string]string{}}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	h := m.hashes[key]
	if h == nil {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	for _, item := range items {
		if err := m.HSet(ctx, item.Key, item.Fields); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if h, ok := m.hashes[key]; ok {
		return h, nil
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.multiErr != nil {
		return nil, m.multiErr
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i], _ = m.HGetAll(ctx, k)
	}
	return out, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.hashes, key)
	return nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.hashes[key]
	return ok, nil
}

func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(ms), ms
}

func testRecord(t *testing.T, name, project string) domfeature.Record {
	t.Helper()
	tag, err := domfeature.NewTag("simple", "my_tag")
	if err != nil {
		t.Fatalf("NewTag: %v", err)
	}
	seen := time.Date(2024, 2, 1, 12, 0, 0, 123456789, time.UTC)
	r, err := domfeature.New(name, "experimental", project, "a description",
		time.Date(2024, 1, 1, 0, 0, 0, 987654321, time.UTC),
		[]domfeature.Tag{tag},
		map[string]domfeature.EnvironmentStatus{
			"default":    domfeature.NewEnvironmentStatus(true, &seen),
			"production": domfeature.NewEnvironmentStatus(false, nil),
		},
	)
	if err != nil {
		t.Fatalf("feature.New: %v", err)
	}
	return r
}
