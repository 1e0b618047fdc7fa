package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/article-catalog/pkg/batch"
	"github.com/Sternrassler/article-catalog/pkg/catalog"
	"github.com/Sternrassler/article-catalog/pkg/config"
	"github.com/Sternrassler/article-catalog/pkg/source"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// newSource builds the configured document source. The returned cleanup
// releases its connections and is never nil.
func newSource(ctx context.Context, cfg *config.Config) (source.Source, func(), error) {
	noop := func() {}

	switch cfg.Source.Kind {
	case config.KindHTTP:
		locator, err := source.NewLocator(cfg.Source.Locator)
		if err != nil {
			return nil, noop, err
		}
		httpCfg := source.DefaultHTTPConfig(cfg.Source.BaseURL)
		httpCfg.Locator = locator
		httpCfg.UserAgent = cfg.Source.UserAgent
		httpCfg.Timeout = cfg.Source.Timeout
		httpCfg.RateLimit = cfg.Source.RateLimit
		httpCfg.Retry.MaxAttempts = cfg.Source.MaxAttempts

		src, err := source.NewHTTP(httpCfg)
		if err != nil {
			return nil, noop, fmt.Errorf("create http source: %w", err)
		}
		return src, noop, nil

	case config.KindRedis:
		locator, err := source.NewLocator(cfg.Redis.Locator)
		if err != nil {
			return nil, noop, err
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")

		src, err := source.NewRedis(client, locator)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return src, func() { _ = client.Close() }, nil

	case config.KindDir:
		locator, err := source.NewLocator(cfg.Dir.Locator)
		if err != nil {
			return nil, noop, err
		}
		src, err := source.NewDir(cfg.Dir.Root, locator)
		if err != nil {
			return nil, noop, fmt.Errorf("create dir source: %w", err)
		}
		return src, noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

// newCatalog wires the configured source into a Catalog.
func newCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, func(), error) {
	src, cleanup, err := newSource(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	c := catalog.New(src, cfg.Catalog.IDs, catalog.Config{
		Batch: batch.Config{
			MaxConcurrency: cfg.Fetch.MaxConcurrency,
			Timeout:        cfg.Fetch.Timeout,
		},
	})
	return c, cleanup, nil
}
