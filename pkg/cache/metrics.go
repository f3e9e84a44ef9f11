package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Sternrassler/vaultre-client/pkg/metrics"
)

var factory = promauto.With(metrics.Registry)

var (
	// CacheHits tracks fresh entries served from the store
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaultre_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"namespace"},
	)

	// CacheMisses tracks lookups that had to go upstream
	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaultre_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"namespace"},
	)

	// CacheBypass tracks requests that skipped the cache read
	CacheBypass = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaultre_cache_bypass_total",
			Help: "Total number of requests that bypassed the response cache",
		},
		[]string{"namespace"},
	)

	// CacheErrors tracks store operation errors
	CacheErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaultre_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "fresh", "read", "write"
	)
)
