package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

// DefaultRedisPrefix prefixes every key written by RedisStore.
const DefaultRedisPrefix = "listings"

// RedisStore keeps entries in Redis as JSON-encoded CacheEntry values.
// Keys carry no Redis expiry; staleness is decided on read.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	clock  clock.Clock
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client, prefix string, clk clock.Clock, logger zerolog.Logger) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if clk == nil {
		clk = clock.New()
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
		clock:  clk,
		logger: logger,
	}
}

// redisKey builds the final Redis key.
// Format: prefix:namespace:key
func (s *RedisStore) redisKey(namespace, key string) string {
	return s.prefix + ":" + namespace + ":" + key
}

// get loads and decodes the entry for (namespace, key).
func (s *RedisStore) get(ctx context.Context, namespace, key string) (*CacheEntry, error) {
	if err := checkNames(namespace, key); err != nil {
		return nil, err
	}

	data, err := s.redis.Get(ctx, s.redisKey(namespace, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return &entry, nil
}

// IsFresh loads the entry and compares its write time against ttl.
func (s *RedisStore) IsFresh(ctx context.Context, namespace, key string, ttl time.Duration) bool {
	entry, err := s.get(ctx, namespace, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			CacheErrors.WithLabelValues("fresh").Inc()
			s.logger.Warn().Err(err).Str("namespace", namespace).Str("key", key).Msg("Cache freshness check failed")
		}
		return false
	}
	return entry.IsFresh(s.clock.Now(), ttl)
}

// Read returns the stored payload.
func (s *RedisStore) Read(ctx context.Context, namespace, key string) ([]byte, error) {
	entry, err := s.get(ctx, namespace, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			CacheErrors.WithLabelValues("read").Inc()
		}
		return nil, err
	}
	return entry.Data, nil
}

// Write stores payload stamped with the store clock.
func (s *RedisStore) Write(ctx context.Context, namespace, key string, payload []byte) error {
	if err := checkNames(namespace, key); err != nil {
		return err
	}

	data, err := json.Marshal(CacheEntry{
		Data:     payload,
		CachedAt: s.clock.Now(),
	})
	if err != nil {
		CacheErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, s.redisKey(namespace, key), data, 0).Err(); err != nil {
		CacheErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	s.logger.Debug().
		Str("namespace", namespace).
		Str("key", key).
		Int("bytes", len(payload)).
		Msg("Cached response")

	return nil
}

// Ping checks if the Redis connection is healthy.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
