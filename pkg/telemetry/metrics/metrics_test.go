package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"xget-hq/edge/pkg/config"
)

func testConfig() config.MetricsConfig {
	return config.MetricsConfig{
		Enabled:                true,
		Namespace:              "test",
		Subsystem:              "edge",
		RequestDurationBuckets: []float64{0.1, 0.5, 1.0, 5.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(testConfig(), registry)

	if collector.Registry() != registry {
		t.Error("expected collector to use the supplied registry")
	}

	if NewCollector(config.MetricsConfig{Enabled: true}, nil).Registry() == nil {
		t.Error("expected a registry to be created")
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordRequest("proxy", "GET", 200, 50*time.Millisecond)
	collector.RecordRequest("proxy", "GET", 200, 70*time.Millisecond)
	collector.RecordRequest("health", "GET", 500, time.Millisecond)

	if got := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues("proxy", "GET", "200")); got != 2 {
		t.Errorf("requests_total{proxy,GET,200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues("health", "GET", "500")); got != 1 {
		t.Errorf("requests_total{health,GET,500} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(collector.requestMetrics.requestDuration); got != 2 {
		t.Errorf("request_duration_seconds series = %d, want 2", got)
	}
}

func TestCollector_MethodCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	for i := 0; i < 40; i++ {
		collector.RecordRequest("proxy", fmt.Sprintf("M%d", i), 405, time.Millisecond)
	}

	if got := collector.methods.Count(); got != 32 {
		t.Errorf("admitted methods = %d, want 32", got)
	}
	if got := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues("proxy", "other", "405")); got != 8 {
		t.Errorf("other bucket = %v, want 8", got)
	}
}

func TestCollector_ServerMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordRedirect()
	collector.RecordRedirect()
	collector.SetCertificateExpiry(12.5)
	collector.RecordCertificateReload(true)
	collector.RecordCertificateReload(false)
	collector.RecordDispatchFailure("proxy", "handler_error")
	collector.RecordResponseBody("json", 512)

	if got := testutil.ToFloat64(collector.serverMetrics.redirectsTotal); got != 2 {
		t.Errorf("redirects_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.serverMetrics.certExpiryDays); got != 12.5 {
		t.Errorf("tls_certificate_expiry_days = %v, want 12.5", got)
	}
	if got := testutil.ToFloat64(collector.serverMetrics.certReloads.WithLabelValues("failure")); got != 1 {
		t.Errorf("reloads{failure} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.requestMetrics.dispatchFailures.WithLabelValues("proxy", "handler_error")); got != 1 {
		t.Errorf("dispatch_failures_total = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RecordRequest("proxy", "GET", 200, time.Millisecond)
	collector.RecordRedirect()

	if got := testutil.ToFloat64(collector.serverMetrics.redirectsTotal); got != 0 {
		t.Errorf("redirects_total = %v, want 0 when disabled", got)
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var collector *Collector
	collector.RecordRequest("proxy", "GET", 200, time.Millisecond)
	collector.RecordRedirect()
	collector.SetCertificateExpiry(1)
	if collector.Registry() != nil {
		t.Error("nil collector should have nil registry")
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordRedirect()

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_edge_redirects_total 1") {
		t.Errorf("exposition missing redirect counter:\n%s", rec.Body.String())
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("expected first two values to be allowed")
	}
	if cl.Allow("c") {
		t.Error("expected third value to be rejected")
	}
	if !cl.Allow("a") {
		t.Error("expected known value to stay allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}

func BenchmarkCollector_RecordRequest(b *testing.B) {
	collector := NewCollector(testConfig(), nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordRequest("proxy", "GET", 200, 10*time.Millisecond)
	}
}
