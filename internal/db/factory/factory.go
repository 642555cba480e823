// Package factory opens the db.Store selected by configuration.
package factory

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/flagsearch/internal/config"
	"github.com/kailas-cloud/flagsearch/internal/db"
	"github.com/kailas-cloud/flagsearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/flagsearch/internal/db/redis"
)

// New creates a store for cfg.Driver. Redis and Valkey share the rueidis
// store since only core hash commands are used.
func New(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:       cfg.Addrs,
			Username:    cfg.Username,
			Password:    cfg.Password,
			DB:          cfg.DB,
			ClientName:  cfg.ClientName,
			DialTimeout: time.Duration(cfg.DialTimeoutSec) * time.Second,
			ConnTimeout: time.Duration(cfg.ConnTimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
		}
		return s, nil
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
