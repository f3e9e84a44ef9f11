// Package cache provides the response cache used in front of the VaultRE API.
//
// A Store persists raw response bodies by (namespace, key) together with the
// time they were written. Freshness is decided when an entry is read: an entry
// older than the caller's TTL is treated as absent. Nothing is evicted in the
// background.
//
// Three stores are available:
//
//   - FileStore keeps one file per entry under <dir>/<namespace>/<key>.
//   - RedisStore keeps entries in Redis under <prefix>:<namespace>:<key>.
//   - MemoryStore keeps entries in an in-process bigcache.
//
// # Cached Fetch
//
// Fetcher wraps a RawFetcher (normally *client.Client) with the cache:
//
//	store := cache.NewFileStore("/var/cache/listings", clock.New(), logger)
//	fetcher := cache.NewFetcher(store, apiClient, cache.FetcherOptions{
//		Namespace: "vaultre",
//		TTL:       time.Hour,
//	})
//
//	body, err := fetcher.Get(ctx, "/properties/residential/sale?sort=inserted")
//
// A request can skip the cache read with WithBypass. The fetched body is still
// written so the next request sees the refreshed entry:
//
//	ctx = cache.WithBypass(ctx, r.URL.Query().Has("nocache"))
//
// # Metrics
//
//   - vaultre_cache_hits_total{namespace}
//   - vaultre_cache_misses_total{namespace}
//   - vaultre_cache_bypass_total{namespace}
//   - vaultre_cache_errors_total{operation}
package cache
