package search

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/kailas-cloud/flagsearch/internal/domain"
	"github.com/kailas-cloud/flagsearch/internal/domain/feature"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/cursor"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/request"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/result"
)

// --- Mocks ---

type mockRepo struct {
	records     []feature.Record
	err         error
	lastProject string
}

func (m *mockRepo) Snapshot(_ context.Context, project string) ([]feature.Record, error) {
	m.lastProject = project
	if m.err != nil {
		return nil, m.err
	}
	out := make([]feature.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type recOpt func(*recSpec)

type recSpec struct {
	typ, project, desc string
	tags               []feature.Tag
	envs               map[string]feature.EnvironmentStatus
	archived           bool
}

func withType(typ string) recOpt {
	return func(s *recSpec) { s.typ = typ }
}

func withProject(p string) recOpt {
	return func(s *recSpec) { s.project = p }
}

func withArchived() recOpt {
	return func(s *recSpec) { s.archived = true }
}

func withTag(typ, value string) recOpt {
	return func(s *recSpec) {
		t, _ := feature.NewTag(typ, value)
		s.tags = append(s.tags, t)
	}
}

func withEnv(env string, enabled bool, lastSeen *time.Time) recOpt {
	return func(s *recSpec) {
		if s.envs == nil {
			s.envs = map[string]feature.EnvironmentStatus{}
		}
		s.envs[env] = feature.NewEnvironmentStatus(enabled, lastSeen)
	}
}

// newRecords creates records in creation order: the i-th name is created i seconds after base.
func newRecords(t *testing.T, specs ...any) []feature.Record {
	t.Helper()
	var out []feature.Record
	for i := 0; i < len(specs); {
		name := specs[i].(string)
		i++
		var s recSpec
		for i < len(specs) {
			opt, ok := specs[i].(recOpt)
			if !ok {
				break
			}
			opt(&s)
			i++
		}
		r, err := feature.New(name, s.typ, s.project, s.desc,
			base.Add(time.Duration(len(out))*time.Second), s.tags, s.envs)
		if err != nil {
			t.Fatalf("feature.New(%s): %v", name, err)
		}
		if s.archived {
			at := base.Add(time.Hour)
			r = r.WithArchivedAt(&at)
		}
		out = append(out, r)
	}
	return out
}

func names(p result.Page) []string {
	out := []string{}
	for _, r := range p.Features() {
		out = append(out, r.Name())
	}
	return out
}

func assertNames(t *testing.T, p result.Page, want ...string) {
	t.Helper()
	if want == nil {
		want = []string{}
	}
	if got := names(p); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func search(t *testing.T, svc *Service, p request.Params) result.Page {
	t.Helper()
	page, err := svc.Search(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return page
}

// --- Tests ---

func TestSearch_ByName(t *testing.T) {
	repo := &mockRepo{records: newRecords(t, "my_feature_a", "my_feature_b", "my_feat_c")}
	page := search(t, New(repo, nil), request.Params{Query: "feature", ProjectID: "default"})

	assertNames(t, page, "my_feature_a", "my_feature_b")
	if page.Total() != 2 {
		t.Errorf("Total() = %d, want 2", page.Total())
	}
	if repo.lastProject != "default" {
		t.Errorf("expected snapshot scoped to default, got %q", repo.lastProject)
	}
}

func TestSearch_ByTagText(t *testing.T) {
	repo := &mockRepo{records: newRecords(t,
		"my_feature_a", withTag("simple", "my_tag"),
		"my_feature_b",
	)}
	svc := New(repo, nil)

	for _, q := range []string{"simple:my_tag", "simple", "my_tag", "e:m"} {
		t.Run(q, func(t *testing.T) {
			assertNames(t, search(t, svc, request.Params{Query: q}), "my_feature_a")
		})
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	page := search(t, New(&mockRepo{}, nil), request.Params{})
	assertNames(t, page)
	if page.Total() != 0 || page.HasMore() {
		t.Errorf("expected empty last page, got total=%d more=%v", page.Total(), page.HasMore())
	}
}

func TestSearch_OtherProject(t *testing.T) {
	repo := &mockRepo{records: newRecords(t, "my_feature_a", "my_feature_b")}
	assertNames(t, search(t, New(repo, nil), request.Params{ProjectID: "another_project"}))
}

func TestSearch_NoParamsReturnsAll(t *testing.T) {
	repo := &mockRepo{records: newRecords(t,
		"my_feature_a",
		"my_feature_b", withProject("other"),
	)}
	assertNames(t, search(t, New(repo, nil), request.Params{}), "my_feature_a", "my_feature_b")
}

func TestSearch_ExcludesArchivedByDefault(t *testing.T) {
	repo := &mockRepo{records: newRecords(t, "live", "gone", withArchived())}
	svc := New(repo, nil)
	assertNames(t, search(t, svc, request.Params{}), "live")
	assertNames(t, search(t, svc, request.Params{Archived: "true"}), "gone")
}

func TestSearch_FilterByType(t *testing.T) {
	repo := &mockRepo{records: newRecords(t,
		"my_feature_a", withType("release"),
		"my_feature_b", withType("experimental"),
	)}
	page := search(t, New(repo, nil), request.Params{Types: []string{"experimental", "kill-switch"}})
	assertNames(t, page, "my_feature_b")
}

func TestSearch_FilterByTag(t *testing.T) {
	repo := &mockRepo{records: newRecords(t,
		"my_feature_a", withTag("simple", "my_tag"),
		"my_feature_b",
	)}
	svc := New(repo, nil)

	assertNames(t, search(t, svc, request.Params{Tags: []string{"simple:my_tag"}}), "my_feature_a")
	assertNames(t, search(t, svc, request.Params{Tags: []string{"simple"}}), "my_feature_a", "my_feature_b")
}

func TestSearch_FilterByEnvironmentStatus(t *testing.T) {
	repo := &mockRepo{records: newRecords(t,
		"my_feature_a", withEnv("default", true, nil),
		"my_feature_b", withEnv("default", false, nil),
	)}
	page := search(t, New(repo, nil), request.Params{
		Statuses: []string{"default:enabled", "nonexistentEnv:disabled", "default:wrongStatus"},
	})
	assertNames(t, page, "my_feature_a")
}

func TestSearch_StrictFilters(t *testing.T) {
	svc := New(&mockRepo{}, nil).WithStrictFilters(true)
	_, err := svc.Search(context.Background(), request.Params{Statuses: []string{"default:wrongStatus"}})
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestSearch_Sort(t *testing.T) {
	seen := base.Add(time.Hour)
	repo := &mockRepo{records: newRecords(t,
		"my_feature_a", withEnv("default", false, nil),
		"my_feature_c", withEnv("default", true, &seen),
		"my_feature_b", withEnv("default", false, nil),
	)}
	svc := New(repo, nil)

	tests := []struct {
		sortBy, sortOrder string
		want              []string
	}{
		{"name", "asc", []string{"my_feature_a", "my_feature_b", "my_feature_c"}},
		{"name", "desc", []string{"my_feature_c", "my_feature_b", "my_feature_a"}},
		{"", "", []string{"my_feature_a", "my_feature_c", "my_feature_b"}},
		{"unknown", "desc", []string{"my_feature_a", "my_feature_c", "my_feature_b"}},
		{"environment:default", "asc", []string{"my_feature_a", "my_feature_b", "my_feature_c"}},
		{"environment:default", "desc", []string{"my_feature_c", "my_feature_a", "my_feature_b"}},
	}
	for _, tc := range tests {
		t.Run(tc.sortBy+"/"+tc.sortOrder, func(t *testing.T) {
			page := search(t, svc, request.Params{SortBy: tc.sortBy, SortOrder: tc.sortOrder})
			assertNames(t, page, tc.want...)
			if page.Total() != 3 {
				t.Errorf("Total() = %d, want 3", page.Total())
			}
		})
	}
}

func TestSearch_PaginateWithCursor(t *testing.T) {
	repo := &mockRepo{records: newRecords(t, "my_feature_a", "my_feature_b", "my_feature_c", "my_feature_d")}
	svc := New(repo, cursor.NewCodec("secret"))

	first := search(t, svc, request.Params{Query: "feature", Limit: "2"})
	assertNames(t, first, "my_feature_a", "my_feature_b")
	if first.Total() != 4 || first.NextCursor() == "" {
		t.Fatalf("first page: total=%d cursor=%q", first.Total(), first.NextCursor())
	}

	second := search(t, svc, request.Params{Query: "feature", Limit: "2", Cursor: first.NextCursor()})
	assertNames(t, second, "my_feature_c", "my_feature_d")
	if second.Total() != 4 {
		t.Errorf("second page total = %d, want 4", second.Total())
	}
	if second.NextCursor() != "" {
		t.Errorf("expected no next cursor on last page, got %q", second.NextCursor())
	}
}

func TestSearch_PaginationWalkDescending(t *testing.T) {
	var specs []any
	for i := range 7 {
		specs = append(specs, fmt.Sprintf("f%d", i))
	}
	repo := &mockRepo{records: newRecords(t, specs...)}
	svc := New(repo, nil)

	var got []string
	params := request.Params{SortBy: "name", SortOrder: "desc", Limit: "3"}
	for range 5 {
		page := search(t, svc, params)
		got = append(got, names(page)...)
		if !page.HasMore() {
			break
		}
		params.Cursor = page.NextCursor()
	}
	want := []string{"f6", "f5", "f4", "f3", "f2", "f1", "f0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSearch_CursorForDifferentQueryRestarts(t *testing.T) {
	repo := &mockRepo{records: newRecords(t, "a", "b", "c")}
	svc := New(repo, nil)

	first := search(t, svc, request.Params{Limit: "1", SortBy: "name"})
	page := search(t, svc, request.Params{Limit: "1", SortBy: "name", SortOrder: "desc", Cursor: first.NextCursor()})
	assertNames(t, page, "c")
}

func TestSearch_GarbageCursorRestarts(t *testing.T) {
	repo := &mockRepo{records: newRecords(t, "a", "b")}
	page := search(t, New(repo, nil), request.Params{Cursor: "not-a-cursor"})
	assertNames(t, page, "a", "b")
}

func TestSearch_CursorSurvivesDeletion(t *testing.T) {
	repo := &mockRepo{records: newRecords(t, "a", "b", "c", "d")}
	svc := New(repo, nil)

	first := search(t, svc, request.Params{Limit: "2"})
	repo.records = append(repo.records[:1:1], repo.records[2:]...) // delete "b"

	second := search(t, svc, request.Params{Limit: "2", Cursor: first.NextCursor()})
	assertNames(t, second, "c", "d")
	if second.Total() != 3 {
		t.Errorf("Total() = %d, want 3", second.Total())
	}
}

func TestSearch_Idempotent(t *testing.T) {
	repo := &mockRepo{records: newRecords(t, "a", "b", "c")}
	svc := New(repo, nil)
	params := request.Params{Limit: "2", Query: "a"}

	p1 := search(t, svc, params)
	p2 := search(t, svc, params)
	if !reflect.DeepEqual(names(p1), names(p2)) || p1.NextCursor() != p2.NextCursor() || p1.Total() != p2.Total() {
		t.Error("repeated request must return the same page")
	}
}

func TestSearch_LimitClamped(t *testing.T) {
	var specs []any
	for i := range 5 {
		specs = append(specs, fmt.Sprintf("f%d", i))
	}
	svc := New(&mockRepo{records: newRecords(t, specs...)}, nil).WithLimits(2, 3)

	assertNames(t, search(t, svc, request.Params{}), "f0", "f1")
	assertNames(t, search(t, svc, request.Params{Limit: "100"}), "f0", "f1", "f2")
}

func TestSearch_RepoError(t *testing.T) {
	svc := New(&mockRepo{err: errors.New("boom")}, nil)
	if _, err := svc.Search(context.Background(), request.Params{}); err == nil {
		t.Fatal("expected error")
	}
}
