package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"xget-hq/edge/pkg/config"
)

// Collector owns the Prometheus registry and every metric the edge server
// records. A nil *Collector is valid and records nothing, so components can
// take one unconditionally.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics *RequestMetrics
	serverMetrics  *ServerMetrics

	// methods bounds the method label, which is client controlled.
	methods *CardinalityLimiter
}

// NewCollector creates a collector for cfg. If registry is nil a fresh
// registry is created.
//
// Example:
//
//	collector := metrics.NewCollector(config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "xget",
//		Subsystem: "edge",
//	}, nil)
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
		methods:  NewCardinalityLimiter(32),
	}
	c.requestMetrics = NewRequestMetrics(&c.config, registry)
	c.serverMetrics = NewServerMetrics(&c.config, registry)
	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRequest records a completed request.
//
// Parameters:
//   - handler: the route that served the request ("health" or "proxy")
//   - method: HTTP method
//   - status: HTTP status code sent
//   - duration: total time spent in the handler chain
func (c *Collector) RecordRequest(handler, method string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	if !c.methods.Allow(method) {
		method = "other"
	}
	c.requestMetrics.RecordRequest(handler, method, strconv.Itoa(status), duration)
}

// RecordResponseBody records the size of a response body by strategy
// ("json", "binary", "text").
func (c *Collector) RecordResponseBody(strategy string, bytes int) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordBody(strategy, bytes)
}

// RecordDispatchFailure records a request that ended in a failure response.
func (c *Collector) RecordDispatchFailure(handler, kind string) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordFailure(handler, kind)
}

// RecordRedirect records a plaintext request redirected to HTTPS.
func (c *Collector) RecordRedirect() {
	if !c.enabled() {
		return
	}
	c.serverMetrics.RecordRedirect()
}

// SetCertificateExpiry records the days remaining on the serving certificate.
func (c *Collector) SetCertificateExpiry(days float64) {
	if !c.enabled() {
		return
	}
	c.serverMetrics.SetCertificateExpiry(days)
}

// RecordCertificateReload records a certificate reload attempt.
func (c *Collector) RecordCertificateReload(success bool) {
	if !c.enabled() {
		return
	}
	c.serverMetrics.RecordReload(success)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// CardinalityLimiter prevents label cardinality explosion by limiting
// the number of distinct values admitted for a label.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label value. Values already
// seen are always allowed; new values are allowed until the limit is hit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
