package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegistry(t *testing.T) {
	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
	if Gatherer != prometheus.DefaultGatherer {
		t.Error("Gatherer should be the default Prometheus gatherer")
	}
}

func TestHandler_ServesBuildInfo(t *testing.T) {
	SetBuildInfo("1.2.3", "memory")
	SetBuildInfo("1.2.4", "redis")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	if !strings.Contains(out, `vaultre_build_info{cache_backend="redis",version="1.2.4"} 1`) {
		t.Errorf("metrics output missing current build info:\n%s", out)
	}
	if strings.Contains(out, `version="1.2.3"`) {
		t.Error("stale build info should be reset")
	}
}
