package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// MemoryConfig configures the in-process store.
type MemoryConfig struct {
	// Retention bounds how long bigcache keeps an entry at all. It must exceed
	// any TTL callers use; freshness is still decided per read.
	Retention time.Duration

	// MaxSizeMB caps the cache size (0 = unbounded).
	MaxSizeMB int
}

// DefaultMemoryConfig returns a configuration suitable for a single site.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Retention: 24 * time.Hour,
		MaxSizeMB: 64,
	}
}

// MemoryStore keeps entries in an in-process bigcache. It does not survive a
// restart and is not shared between processes.
type MemoryStore struct {
	cache  *bigcache.BigCache
	clock  clock.Clock
	logger zerolog.Logger
}

// NewMemoryStore creates a bigcache-backed store.
func NewMemoryStore(cfg MemoryConfig, clk clock.Clock, logger zerolog.Logger) (*MemoryStore, error) {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultMemoryConfig().Retention
	}
	if clk == nil {
		clk = clock.New()
	}

	bcCfg := bigcache.DefaultConfig(cfg.Retention)
	bcCfg.CleanWindow = 0 // no background sweeper
	bcCfg.Shards = 16
	bcCfg.MaxEntriesInWindow = 1024
	bcCfg.MaxEntrySize = 16 * 1024
	bcCfg.HardMaxCacheSize = cfg.MaxSizeMB
	bcCfg.Verbose = false

	bc, err := bigcache.New(context.Background(), bcCfg)
	if err != nil {
		return nil, fmt.Errorf("create bigcache: %w", err)
	}

	return &MemoryStore{
		cache:  bc,
		clock:  clk,
		logger: logger,
	}, nil
}

func memoryKey(namespace, key string) string {
	return namespace + ":" + key
}

func (s *MemoryStore) get(namespace, key string) (*CacheEntry, error) {
	if err := checkNames(namespace, key); err != nil {
		return nil, err
	}

	data, err := s.cache.Get(memoryKey(namespace, key))
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("bigcache get: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return &entry, nil
}

// IsFresh decodes the entry and compares its write time against ttl.
func (s *MemoryStore) IsFresh(_ context.Context, namespace, key string, ttl time.Duration) bool {
	entry, err := s.get(namespace, key)
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
func (s *MemoryStore) Read(_ context.Context, namespace, key string) ([]byte, error) {
	entry, err := s.get(namespace, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			CacheErrors.WithLabelValues("read").Inc()
		}
		return nil, err
	}
	return entry.Data, nil
}

// Write stores payload stamped with the store clock.
func (s *MemoryStore) Write(_ context.Context, namespace, key string, payload []byte) error {
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

	if err := s.cache.Set(memoryKey(namespace, key), data); err != nil {
		CacheErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("bigcache set: %w", err)
	}
	return nil
}

// Len returns the number of entries held.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

// Close releases the underlying cache.
func (s *MemoryStore) Close() error {
	return s.cache.Close()
}
