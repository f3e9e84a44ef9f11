package main

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/vaultre-client/pkg/cache"
	"github.com/Sternrassler/vaultre-client/pkg/config"
)

// backend is the selected cache store plus its lifecycle hooks.
type backend struct {
	store cache.Store
	ping  func(ctx context.Context) error
	close func() error
}

func noopPing(context.Context) error { return nil }
func noopClose() error               { return nil }

// openBackend builds the store named by cfg.Backend.
func openBackend(ctx context.Context, cfg config.CacheConfig, clk clock.Clock, logger zerolog.Logger) (*backend, error) {
	storeLogger := logger.With().Str("component", "cache-store").Str("backend", cfg.Backend).Logger()

	switch cfg.Backend {
	case config.BackendFile:
		return &backend{
			store: cache.NewFileStore(cfg.Dir, clk, storeLogger),
			ping:  noopPing,
			close: noopClose,
		}, nil

	case config.BackendMemory:
		store, err := cache.NewMemoryStore(cache.DefaultMemoryConfig(), clk, storeLogger)
		if err != nil {
			return nil, fmt.Errorf("create memory store: %w", err)
		}
		return &backend{store: store, ping: noopPing, close: store.Close}, nil

	case config.BackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		store := cache.NewRedisStore(redisClient, cfg.RedisPrefix, clk, storeLogger)
		return &backend{store: store, ping: store.Ping, close: redisClient.Close}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
