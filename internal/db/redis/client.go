package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/flagsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// DefaultClientName is reported to the server via CLIENT SETNAME.
const DefaultClientName = "flagsearch"

// Readiness polling backoff bounds.
const (
	readyMinBackoff = 50 * time.Millisecond
	readyMaxBackoff = time.Second
)

// Config holds connection parameters for a Redis or Valkey store.
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	ClientName  string        // default: DefaultClientName
	DialTimeout time.Duration // zero keeps the rueidis default
	// ConnTimeout bounds each read/write and the background health PINGs.
	ConnTimeout time.Duration
}

func (c *Config) validate() error {
	if len(c.Addrs) == 0 {
		return fmt.Errorf("addrs is required")
	}
	for _, addr := range c.Addrs {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("addr %q must be host:port: %w", addr, err)
		}
	}
	if c.DB < 0 {
		return fmt.Errorf("db must be non-negative, got %d", c.DB)
	}
	return nil
}

// clientOption maps Config onto rueidis options. Client-side caching is off:
// search snapshots must observe writes from other instances immediately.
func (c *Config) clientOption() rueidis.ClientOption {
	name := c.ClientName
	if name == "" {
		name = DefaultClientName
	}
	return rueidis.ClientOption{
		InitAddress:      c.Addrs,
		Username:         c.Username,
		Password:         c.Password,
		SelectDB:         c.DB,
		ClientName:       name,
		Dialer:           net.Dialer{Timeout: c.DialTimeout},
		ConnWriteTimeout: c.ConnTimeout,
		DisableCache:     true,
	}
}

// Store implements db.Store via rueidis. Only core hash and keyspace commands
// are used, so any Redis or Valkey server works.
type Store struct {
	client rueidis.Client
}

// NewStore validates cfg and connects.
func NewStore(cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client, err := rueidis.NewClient(cfg.clientOption())
	if err != nil {
		return nil, fmt.Errorf("connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings immediately, then retries with doubling backoff until the
// store answers or timeout expires. The last ping error is reported on timeout.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := readyMinBackoff
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("store not ready after %s: %w", timeout, err)
		case <-timer.C:
		}
		backoff = min(backoff*2, readyMaxBackoff)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
