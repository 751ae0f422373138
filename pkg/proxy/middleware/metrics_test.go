package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"xget-hq/edge/pkg/config"
	"xget-hq/edge/pkg/telemetry/metrics"
)

func TestMetricsMiddleware(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(config.MetricsConfig{Enabled: true, Namespace: "test", Subsystem: "mw"}, registry)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	})
	wrapped := MetricsMiddleware(collector)(handler)

	for _, path := range []string{"/api/health", "/a", "/b", "/missing"} {
		wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP test_mw_requests_total Total number of HTTP requests served
# TYPE test_mw_requests_total counter
test_mw_requests_total{handler="health",method="GET",status="200"} 1
test_mw_requests_total{handler="proxy",method="GET",status="200"} 2
test_mw_requests_total{handler="proxy",method="GET",status="404"} 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_mw_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestMetricsMiddleware_NilCollector(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	w := httptest.NewRecorder()
	MetricsMiddleware(nil)(handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d", w.Code)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), nil, mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(order, ","); got != "outer,inner,handler" {
		t.Errorf("order = %s", got)
	}
}
