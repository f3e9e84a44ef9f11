package cache

import (
	"time"
)

// CacheEntry represents a cached upstream response.
type CacheEntry struct {
	// Data is the response body, stored verbatim.
	Data []byte `json:"data"`

	// CachedAt is when the entry was written.
	CachedAt time.Time `json:"cached_at"`
}

// Age returns how long ago the entry was written relative to now.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedAt)
}

// IsFresh reports whether the entry is still usable at now for the given TTL.
// An entry is fresh up to and including the moment its age equals ttl.
func (e *CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) <= ttl
}
