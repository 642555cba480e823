package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/flagsearch/internal/config"
	flagsearch "github.com/kailas-cloud/flagsearch/pkg/sdk"
)

// clientOptions maps the service configuration onto SDK options.
func clientOptions(cfg *config.Config, debug bool) ([]flagsearch.Option, error) {
	var opts []flagsearch.Option
	switch cfg.Database.Driver {
	case config.DriverMemory:
		opts = append(opts, flagsearch.WithMemory())
	case config.DriverRedis, config.DriverValkey:
		if len(cfg.Database.Addrs) == 0 {
			return nil, fmt.Errorf("database.addrs is required for driver %q", cfg.Database.Driver)
		}
		addr, pass := cfg.Database.Addrs[0], cfg.Database.Password
		if cfg.Database.Driver == config.DriverValkey {
			opts = append(opts, flagsearch.WithValkey(addr, pass))
		} else {
			opts = append(opts, flagsearch.WithRedis(addr, pass))
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	opts = append(opts,
		flagsearch.WithKeyPrefix(cfg.Storage.KeyPrefix),
		flagsearch.WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		flagsearch.WithCursorSecret(cfg.Search.CursorSecret),
	)
	if cfg.Search.StrictFilters {
		opts = append(opts, flagsearch.WithStrictFilters())
	}
	if debug {
		opts = append(opts, flagsearch.WithLogger(
			slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
		))
	}
	return opts, nil
}

func openClient(ctx context.Context, c *cli.Command) (*flagsearch.Client, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	opts, err := clientOptions(&cfg, c.Bool("debug"))
	if err != nil {
		return nil, err
	}
	client, err := flagsearch.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	return client, nil
}
