package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sternrassler/vaultre-client/pkg/cache"
	"github.com/Sternrassler/vaultre-client/pkg/metrics"
)

func TestHandler_ServesCacheMetrics(t *testing.T) {
	cache.CacheHits.WithLabelValues("registry-test").Inc()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `vaultre_cache_hits_total{namespace="registry-test"} 1`) {
		t.Errorf("cache metrics not registered on metrics.Registry:\n%s", body)
	}
}
