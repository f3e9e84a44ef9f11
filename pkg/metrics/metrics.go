// Package metrics exposes the Prometheus metrics of the listings services.
// Metrics are defined in the packages that record them (cache, client) with
// promauto.With(Registry) and served from Gatherer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package's metrics are added to.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the metrics served by Handler.
var Gatherer = prometheus.DefaultGatherer

var buildInfo = promauto.With(Registry).NewGaugeVec(prometheus.GaugeOpts{
	Name: "vaultre_build_info",
	Help: "Build information of the running binary",
}, []string{"version", "cache_backend"})

// SetBuildInfo records the running version and selected cache backend.
func SetBuildInfo(version, cacheBackend string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, cacheBackend).Set(1)
}

// Handler serves the collected metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics
//
// Cache (pkg/cache):
//   - vaultre_cache_hits_total{namespace}: responses served from cache
//   - vaultre_cache_misses_total{namespace}: absent or stale entries
//   - vaultre_cache_bypass_total{namespace}: requests that skipped the cache
//   - vaultre_cache_errors_total{operation}: store failures
//
// Upstream (pkg/client):
//   - vaultre_requests_total{status}: VaultRE requests by HTTP status
//   - vaultre_request_duration_seconds: VaultRE request latency
//   - vaultre_errors_total{class}: failures by class (auth, client, server, network)
//
// Example queries:
//
//	# Cache hit rate
//	sum(rate(vaultre_cache_hits_total[5m])) /
//	(sum(rate(vaultre_cache_hits_total[5m])) + sum(rate(vaultre_cache_misses_total[5m])))
//
//	# Credential problems
//	increase(vaultre_errors_total{class="auth"}[1h]) > 0
