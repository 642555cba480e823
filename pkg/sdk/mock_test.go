package flagsearch

import (
	"context"

	domfeature "github.com/kailas-cloud/flagsearch/internal/domain/feature"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/request"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/result"
	featureuc "github.com/kailas-cloud/flagsearch/internal/usecase/feature"
)

// --- featureUseCase mock ---

type mockFeatureUC struct {
	upsertFn    func(ctx context.Context, d *featureuc.Draft) (domfeature.Record, bool, error)
	importFn    func(ctx context.Context, drafts []featureuc.Draft) (int, error)
	getFn       func(ctx context.Context, name string) (domfeature.Record, error)
	deleteFn    func(ctx context.Context, name string) error
	updateFn    func(ctx context.Context, name string) (domfeature.Record, error)
	setEnvFn    func(ctx context.Context, name, env string, enabled bool) (domfeature.Record, error)
	tagFn       func(ctx context.Context, name string, tag domfeature.Tag) (domfeature.Record, error)
	lastTag     domfeature.Tag
	lastEnabled bool
}

func (m *mockFeatureUC) Upsert(ctx context.Context, d *featureuc.Draft) (domfeature.Record, bool, error) {
	return m.upsertFn(ctx, d)
}

func (m *mockFeatureUC) Import(ctx context.Context, drafts []featureuc.Draft) (int, error) {
	return m.importFn(ctx, drafts)
}

func (m *mockFeatureUC) Get(ctx context.Context, name string) (domfeature.Record, error) {
	return m.getFn(ctx, name)
}

func (m *mockFeatureUC) Delete(ctx context.Context, name string) error {
	return m.deleteFn(ctx, name)
}

func (m *mockFeatureUC) Archive(ctx context.Context, name string) (domfeature.Record, error) {
	return m.updateFn(ctx, name)
}

func (m *mockFeatureUC) Revive(ctx context.Context, name string) (domfeature.Record, error) {
	return m.updateFn(ctx, name)
}

func (m *mockFeatureUC) SetEnvironment(
	ctx context.Context, name, env string, enabled bool,
) (domfeature.Record, error) {
	m.lastEnabled = enabled
	return m.setEnvFn(ctx, name, env, enabled)
}

func (m *mockFeatureUC) MarkSeen(ctx context.Context, name, _ string) (domfeature.Record, error) {
	return m.updateFn(ctx, name)
}

func (m *mockFeatureUC) AddTag(ctx context.Context, name string, tag domfeature.Tag) (domfeature.Record, error) {
	m.lastTag = tag
	return m.tagFn(ctx, name, tag)
}

func (m *mockFeatureUC) RemoveTag(ctx context.Context, name string, tag domfeature.Tag) (domfeature.Record, error) {
	m.lastTag = tag
	return m.tagFn(ctx, name, tag)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, params request.Params) (result.Page, error)
	calls    []request.Params
}

func (m *mockSearchUC) Search(ctx context.Context, params request.Params) (result.Page, error) {
	m.calls = append(m.calls, params)
	return m.searchFn(ctx, params)
}
