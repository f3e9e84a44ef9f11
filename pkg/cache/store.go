package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrInvalidName indicates a namespace or key that cannot be stored
	ErrInvalidName = errors.New("invalid cache name")
)

// Store persists response bodies partitioned by namespace.
//
// Callers check IsFresh before Read. The pair is not atomic: an entry may be
// overwritten between the two calls, which is acceptable for a best-effort
// response cache.
type Store interface {
	// IsFresh reports whether an entry exists for (namespace, key) and was
	// written no more than ttl ago. Backend errors read as not fresh.
	IsFresh(ctx context.Context, namespace, key string, ttl time.Duration) bool

	// Read returns the stored payload, or ErrCacheMiss if there is none.
	Read(ctx context.Context, namespace, key string) ([]byte, error)

	// Write stores payload with the current time, replacing any prior entry.
	Write(ctx context.Context, namespace, key string, payload []byte) error
}
