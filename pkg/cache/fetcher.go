package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultNamespace partitions the VaultRE integration's entries.
	DefaultNamespace = "vaultre"

	// DefaultTTL is how long a fetched response is served from cache.
	DefaultTTL = 3600 * time.Second
)

// RawFetcher performs the uncached upstream call for a request identifier.
type RawFetcher interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// RawFetcherFunc adapts a plain function to RawFetcher.
type RawFetcherFunc func(ctx context.Context, path string) ([]byte, error)

// Get calls f.
func (f RawFetcherFunc) Get(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

type bypassKey struct{}

// WithBypass marks ctx so Fetcher skips the cache read for this request.
func WithBypass(ctx context.Context, bypass bool) context.Context {
	return context.WithValue(ctx, bypassKey{}, bypass)
}

// BypassFromContext reports whether ctx carries a bypass request.
func BypassFromContext(ctx context.Context) bool {
	bypass, _ := ctx.Value(bypassKey{}).(bool)
	return bypass
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// Namespace partitions this integration's entries (default "vaultre").
	Namespace string

	// TTL is the maximum age of a served entry (default 3600s).
	TTL time.Duration

	// Logger receives cache events. Defaults to the global logger.
	Logger *zerolog.Logger
}

// Fetcher serves upstream responses from a Store, refreshing entries from a
// RawFetcher on miss, on staleness, or when the request asks for a bypass.
type Fetcher struct {
	store     Store
	raw       RawFetcher
	namespace string
	ttl       time.Duration
	logger    zerolog.Logger
}

// NewFetcher creates a cached fetcher.
func NewFetcher(store Store, raw RawFetcher, opts FetcherOptions) *Fetcher {
	if store == nil {
		panic("cache store cannot be nil")
	}
	if raw == nil {
		panic("raw fetcher cannot be nil")
	}
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	logger := log.With().Str("component", "cached-fetch").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Fetcher{
		store:     store,
		raw:       raw,
		namespace: opts.Namespace,
		ttl:       opts.TTL,
		logger:    logger,
	}
}

// Namespace returns the namespace entries are stored under.
func (f *Fetcher) Namespace() string {
	return f.namespace
}

// TTL returns the freshness window.
func (f *Fetcher) TTL() time.Duration {
	return f.ttl
}

// Get returns the response body for identifier.
//
// Without a bypass, a fresh entry is returned and the raw fetcher is not
// called. Otherwise the body is fetched and written back before returning.
// A failed fetch writes nothing and its error is returned unchanged. A failed
// write is logged and does not affect the result.
func (f *Fetcher) Get(ctx context.Context, identifier string) ([]byte, error) {
	key := Key(identifier)

	if BypassFromContext(ctx) {
		CacheBypass.WithLabelValues(f.namespace).Inc()
		f.logger.Debug().
			Str("identifier", identifier).
			Str("key", key).
			Msg("Cache bypass requested")
	} else {
		if f.store.IsFresh(ctx, f.namespace, key, f.ttl) {
			payload, err := f.store.Read(ctx, f.namespace, key)
			if err == nil {
				CacheHits.WithLabelValues(f.namespace).Inc()
				f.logger.Debug().
					Str("identifier", identifier).
					Str("key", key).
					Msg("Cache hit")
				return payload, nil
			}
			f.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed after freshness check")
		}
		CacheMisses.WithLabelValues(f.namespace).Inc()
		f.logger.Debug().
			Str("identifier", identifier).
			Str("key", key).
			Msg("Cache miss")
	}

	body, err := f.raw.Get(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := f.store.Write(ctx, f.namespace, key, body); err != nil {
		f.logger.Warn().
			Err(err).
			Str("identifier", identifier).
			Str("key", key).
			Msg("Failed to cache response")
	}

	return body, nil
}
