package flagsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/flagsearch/internal/config"
	"github.com/kailas-cloud/flagsearch/internal/db"
	"github.com/kailas-cloud/flagsearch/internal/db/factory"
	domfeature "github.com/kailas-cloud/flagsearch/internal/domain/feature"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/cursor"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/request"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/result"
	featurerepo "github.com/kailas-cloud/flagsearch/internal/repository/feature"
	featureuc "github.com/kailas-cloud/flagsearch/internal/usecase/feature"
	healthuc "github.com/kailas-cloud/flagsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/flagsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type featureUseCase interface {
	Upsert(ctx context.Context, d *featureuc.Draft) (domfeature.Record, bool, error)
	Import(ctx context.Context, drafts []featureuc.Draft) (int, error)
	Get(ctx context.Context, name string) (domfeature.Record, error)
	Delete(ctx context.Context, name string) error
	Archive(ctx context.Context, name string) (domfeature.Record, error)
	Revive(ctx context.Context, name string) (domfeature.Record, error)
	SetEnvironment(ctx context.Context, name, env string, enabled bool) (domfeature.Record, error)
	MarkSeen(ctx context.Context, name, env string) (domfeature.Record, error)
	AddTag(ctx context.Context, name string, tag domfeature.Tag) (domfeature.Record, error)
	RemoveTag(ctx context.Context, name string, tag domfeature.Tag) (domfeature.Record, error)
}

type searchUseCase interface {
	Search(ctx context.Context, params request.Params) (result.Page, error)
}

// Client is the flagsearch SDK entry point.
type Client struct {
	store      db.Store
	featureSvc featureUseCase
	searchSvc  searchUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("flagsearch: storage required (use WithValkey, WithRedis or WithMemory)")
	}
	if cfg.driver != config.DriverMemory && len(cfg.addrs) == 0 {
		return nil, errors.New("flagsearch: database address required")
	}

	store, err := factory.New(config.DatabaseConfig{
		Driver:   cfg.driver,
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("flagsearch: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("flagsearch: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	repo := featurerepo.New(store).WithKeyPrefix(cfg.keyPrefix)

	searchSvc := searchuc.New(repo, cursor.NewCodec(cfg.cursorSecret)).
		WithLimits(cfg.defaultLimit, cfg.maxLimit).
		WithStrictFilters(cfg.strictFilters)

	return &Client{
		store:      store,
		featureSvc: featureuc.New(repo),
		searchSvc:  searchSvc,
		healthSvc:  healthuc.New(store),
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Features returns the feature management service.
func (c *Client) Features() *FeatureService {
	return &FeatureService{svc: c.featureSvc, obs: c.obs}
}

// Search returns the search service.
func (c *Client) Search() *SearchService {
	return &SearchService{svc: c.searchSvc, obs: c.obs}
}
