package chi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/flagsearch/internal/db/memory"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/cursor"
	featurerepo "github.com/kailas-cloud/flagsearch/internal/repository/feature"
	featureuc "github.com/kailas-cloud/flagsearch/internal/usecase/feature"
	healthuc "github.com/kailas-cloud/flagsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/flagsearch/internal/usecase/search"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   *memory.Store
	created int
}

func newTestAPI(t *testing.T, strict bool) *testAPI {
	t.Helper()
	store := memory.NewStore()
	repo := featurerepo.New(store)
	srv := NewServer(
		featureuc.New(repo),
		searchuc.New(repo, cursor.NewCodec("test-secret")).WithStrictFilters(strict),
		healthuc.New(store),
		nil,
	)
	return &testAPI{t: t, handler: srv.Handler(), store: store}
}

func (a *testAPI) do(method, target string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

// createFeature stores a feature; successive calls get increasing creation times.
func (a *testAPI) createFeature(name string, req UpsertFeatureRequest) {
	a.t.Helper()
	at := time.Date(2024, 1, 1, 0, 0, a.created, 0, time.UTC)
	a.created++
	if req.CreatedAt == nil {
		req.CreatedAt = &at
	}
	rr := a.do(http.MethodPut, "/api/admin/features/"+name, req)
	if rr.Code != http.StatusCreated {
		a.t.Fatalf("create %s: got %d: %s", name, rr.Code, rr.Body.String())
	}
}

func (a *testAPI) search(target string) (SearchResponse, *httptest.ResponseRecorder) {
	a.t.Helper()
	rr := a.do(http.MethodGet, target, nil)
	if rr.Code != http.StatusOK {
		a.t.Fatalf("search %s: got %d: %s", target, rr.Code, rr.Body.String())
	}
	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		a.t.Fatalf("decode search response: %v", err)
	}
	return resp, rr
}

func names(fs []Feature) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

func assertNames(t *testing.T, got []Feature, want ...string) {
	t.Helper()
	g := names(got)
	if fmt.Sprint(g) != fmt.Sprint(want) {
		t.Errorf("features = %v, want %v", g, want)
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

func TestSearch_ByName(t *testing.T) {
	api := newTestAPI(t, false)
	api.createFeature("my_feature_a", UpsertFeatureRequest{})
	api.createFeature("my_feature_b", UpsertFeatureRequest{})
	api.createFeature("my_feat_c", UpsertFeatureRequest{})

	resp, _ := api.search("/api/admin/search/features?query=feature&projectId=default")
	assertNames(t, resp.Features, "my_feature_a", "my_feature_b")
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
}

func TestSearch_PaginateWithLink(t *testing.T) {
	api := newTestAPI(t, false)
	for _, n := range []string{"my_feature_a", "my_feature_b", "my_feature_c", "my_feature_d"} {
		api.createFeature(n, UpsertFeatureRequest{})
	}

	first, rr := api.search("/api/admin/search/features?query=feature&projectId=default&cursor=&limit=2")
	assertNames(t, first.Features, "my_feature_a", "my_feature_b")
	if first.Total != 4 {
		t.Errorf("total = %d, want 4", first.Total)
	}
	link := rr.Header().Get("Link")
	if link == "" || first.NextCursor == "" {
		t.Fatalf("expected next page link and cursor, got link=%q cursor=%q", link, first.NextCursor)
	}

	second, rr := api.search(link)
	assertNames(t, second.Features, "my_feature_c", "my_feature_d")
	if second.Total != 4 {
		t.Errorf("total = %d, want 4", second.Total)
	}
	if _, ok := rr.Header()["Link"]; !ok {
		t.Error("Link header should be present on the last page")
	}
	if got := rr.Header().Get("Link"); got != "" {
		t.Errorf("last page Link = %q, want empty", got)
	}
	if second.NextCursor != "" {
		t.Errorf("last page nextCursor = %q, want empty", second.NextCursor)
	}
}

func TestSearch_CursorFromOtherQueryRestarts(t *testing.T) {
	api := newTestAPI(t, false)
	for _, n := range []string{"a", "b", "c"} {
		api.createFeature(n, UpsertFeatureRequest{})
	}

	first, _ := api.search("/api/admin/search/features?limit=1")
	resp, _ := api.search("/api/admin/search/features?limit=1&sortBy=name&cursor=" + first.NextCursor)
	assertNames(t, resp.Features, "a")
}

func TestSearch_FilterByType(t *testing.T) {
	api := newTestAPI(t, false)
	api.createFeature("my_feature_a", UpsertFeatureRequest{Type: "release"})
	api.createFeature("my_feature_b", UpsertFeatureRequest{Type: "experimental"})

	resp, _ := api.search("/api/admin/search/features?type[]=experimental&type[]=kill-switch")
	assertNames(t, resp.Features, "my_feature_b")

	resp, _ = api.search("/api/admin/search/features?type=release")
	assertNames(t, resp.Features, "my_feature_a")
}

func TestSearch_FilterByTag(t *testing.T) {
	api := newTestAPI(t, false)
	api.createFeature("my_feature_a", UpsertFeatureRequest{})
	api.createFeature("my_feature_b", UpsertFeatureRequest{})

	rr := api.do(http.MethodPost, "/api/admin/features/my_feature_a/tags", Tag{Type: "simple", Value: "my_tag"})
	if rr.Code != http.StatusOK {
		t.Fatalf("add tag: got %d: %s", rr.Code, rr.Body.String())
	}

	resp, _ := api.search("/api/admin/search/features?tag[]=simple:my_tag")
	assertNames(t, resp.Features, "my_feature_a")

	resp, _ = api.search("/api/admin/search/features?tag[]=simple")
	assertNames(t, resp.Features, "my_feature_a", "my_feature_b")
}

func TestSearch_FilterByEnvironmentStatus(t *testing.T) {
	api := newTestAPI(t, false)
	api.createFeature("my_feature_a", UpsertFeatureRequest{})
	api.createFeature("my_feature_b", UpsertFeatureRequest{})

	rr := api.do(http.MethodPost, "/api/admin/features/my_feature_a/environments/default/on", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("enable: got %d: %s", rr.Code, rr.Body.String())
	}

	resp, _ := api.search("/api/admin/search/features?" +
		"status[]=default:enabled&status[]=nonexistentEnv:disabled&status[]=default:wrongStatus")
	assertNames(t, resp.Features, "my_feature_a")
}

func TestSearch_StrictFilters(t *testing.T) {
	api := newTestAPI(t, true)
	api.createFeature("a", UpsertFeatureRequest{})

	rr := api.do(http.MethodGet, "/api/admin/search/features?status[]=default:wrongStatus", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorCodeInvalidFilter {
		t.Errorf("code = %s, want %s", e.Code, ErrorCodeInvalidFilter)
	}
}

func TestSearch_SortByNameDesc(t *testing.T) {
	api := newTestAPI(t, false)
	for _, n := range []string{"b", "a", "c"} {
		api.createFeature(n, UpsertFeatureRequest{})
	}

	resp, _ := api.search("/api/admin/search/features?sortBy=name&sortOrder=desc")
	assertNames(t, resp.Features, "c", "b", "a")
}

func TestSearch_SortByEnvironmentLastSeen(t *testing.T) {
	api := newTestAPI(t, false)
	early := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	api.createFeature("a", UpsertFeatureRequest{Environments: map[string]EnvironmentState{
		"production": {LastSeenAt: &late},
	}})
	api.createFeature("b", UpsertFeatureRequest{Environments: map[string]EnvironmentState{
		"production": {LastSeenAt: &early},
	}})
	api.createFeature("c", UpsertFeatureRequest{})

	resp, _ := api.search("/api/admin/search/features?sortBy=environment:production&sortOrder=asc")
	assertNames(t, resp.Features, "c", "b", "a")
}

func TestSearch_ArchivedExcluded(t *testing.T) {
	api := newTestAPI(t, false)
	api.createFeature("live", UpsertFeatureRequest{})
	api.createFeature("old", UpsertFeatureRequest{Archived: true})

	resp, _ := api.search("/api/admin/search/features")
	assertNames(t, resp.Features, "live")

	resp, _ = api.search("/api/admin/search/features?archived=true")
	assertNames(t, resp.Features, "old")

	if rr := api.do(http.MethodPost, "/api/admin/features/old/revive", nil); rr.Code != http.StatusOK {
		t.Fatalf("revive: got %d", rr.Code)
	}
	if rr := api.do(http.MethodPost, "/api/admin/features/live/archive", nil); rr.Code != http.StatusOK {
		t.Fatalf("archive: got %d", rr.Code)
	}
	resp, _ = api.search("/api/admin/search/features")
	assertNames(t, resp.Features, "old")
}

func TestFeature_Lifecycle(t *testing.T) {
	api := newTestAPI(t, false)
	api.createFeature("checkout", UpsertFeatureRequest{Description: "v1"})

	rr := api.do(http.MethodPut, "/api/admin/features/checkout", UpsertFeatureRequest{Description: "v2"})
	if rr.Code != http.StatusOK {
		t.Fatalf("update: got %d", rr.Code)
	}

	rr = api.do(http.MethodGet, "/api/admin/features/checkout", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got %d", rr.Code)
	}
	var f Feature
	if err := json.NewDecoder(rr.Body).Decode(&f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Description != "v2" || f.Project != "default" || f.Type != "release" {
		t.Errorf("unexpected feature: %+v", f)
	}

	rr = api.do(http.MethodDelete, "/api/admin/features/checkout", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rr.Code)
	}

	rr = api.do(http.MethodGet, "/api/admin/features/checkout", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorCodeFeatureNotFound {
		t.Errorf("code = %s, want %s", e.Code, ErrorCodeFeatureNotFound)
	}
}

func TestFeature_InvalidName(t *testing.T) {
	api := newTestAPI(t, false)
	rr := api.do(http.MethodPut, "/api/admin/features/bad!name", UpsertFeatureRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorCodeValidationFailed {
		t.Errorf("code = %s, want %s", e.Code, ErrorCodeValidationFailed)
	}
}

func TestSearch_LongQueryNotTruncated(t *testing.T) {
	api := newTestAPI(t, false)
	long := strings.Repeat("a", 4096)
	api.createFeature("long_desc", UpsertFeatureRequest{Description: long})

	resp, _ := api.search("/api/admin/search/features?query=" + long)
	assertNames(t, resp.Features, "long_desc")

	resp, _ = api.search("/api/admin/search/features?query=" + long + "zzz")
	assertNames(t, resp.Features)
}

func TestFeature_CreatedAtOutOfRange(t *testing.T) {
	api := newTestAPI(t, false)
	api.createFeature("recent", UpsertFeatureRequest{})

	ancient := time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC)
	rr := api.do(http.MethodPut, "/api/admin/features/ancient", UpsertFeatureRequest{CreatedAt: &ancient})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400: %s", rr.Code, rr.Body.String())
	}
	if e := decodeError(t, rr); e.Code != ErrorCodeValidationFailed {
		t.Errorf("code = %s, want %s", e.Code, ErrorCodeValidationFailed)
	}

	rr = api.do(http.MethodPut, "/api/admin/features/ancient", UpsertFeatureRequest{
		Environments: map[string]EnvironmentState{"production": {Enabled: true, LastSeenAt: &ancient}},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("lastSeenAt: got %d, want 400", rr.Code)
	}

	resp, _ := api.search("/api/admin/search/features")
	assertNames(t, resp.Features, "recent")
}

func TestFeature_UnknownBodyField(t *testing.T) {
	api := newTestAPI(t, false)
	rr := api.do(http.MethodPut, "/api/admin/features/a", map[string]any{"bogus": 1})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestFeature_EnvironmentAndTags(t *testing.T) {
	api := newTestAPI(t, false)
	api.createFeature("a", UpsertFeatureRequest{})

	rr := api.do(http.MethodPost, "/api/admin/features/a/environments/production/seen", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("seen: got %d", rr.Code)
	}
	var f Feature
	_ = json.NewDecoder(rr.Body).Decode(&f)
	if len(f.Environments) != 1 || f.Environments[0].Name != "production" || f.Environments[0].LastSeenAt == nil {
		t.Errorf("unexpected environments: %+v", f.Environments)
	}

	rr = api.do(http.MethodPost, "/api/admin/features/a/environments/production/off", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("off: got %d", rr.Code)
	}

	api.do(http.MethodPost, "/api/admin/features/a/tags", Tag{Type: "team", Value: "growth"})
	rr = api.do(http.MethodDelete, "/api/admin/features/a/tags/team/growth", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("remove tag: got %d", rr.Code)
	}
	rr = api.do(http.MethodDelete, "/api/admin/features/a/tags/team/growth", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("remove absent tag: got %d, want 404", rr.Code)
	}

	rr = api.do(http.MethodPost, "/api/admin/features/a/tags", Tag{Type: "team"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty tag value: got %d, want 400", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	api := newTestAPI(t, false)

	rr := api.do(http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	var h HealthResponse
	_ = json.NewDecoder(rr.Body).Decode(&h)
	if h.Status != "ok" || h.Checks["database"] != "ok" {
		t.Errorf("unexpected health: %+v", h)
	}

	api.store.Close()
	rr = api.do(http.MethodGet, "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("closed store: got %d, want 503", rr.Code)
	}
}

func TestNextPageLink(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/search/features?type[]=a&cursor=old&limit=2", http.NoBody)
	if got := nextPageLink(req.URL, ""); got != "" {
		t.Errorf("empty cursor: got %q", got)
	}
	got := nextPageLink(req.URL, "tok")
	want := "/api/admin/search/features?cursor=tok&limit=2&type%5B%5D=a"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
