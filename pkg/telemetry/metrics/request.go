package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"xget-hq/edge/pkg/config"
)

// RequestMetrics tracks request dispatch.
//
// Metrics:
//   - <ns>_<sub>_requests_total: requests by handler, method, status
//   - <ns>_<sub>_request_duration_seconds: latency by handler
//   - <ns>_<sub>_response_bytes: body size by body strategy
//   - <ns>_<sub>_dispatch_failures_total: failure responses by handler and error kind
type RequestMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	responseBytes    *prometheus.HistogramVec
	dispatchFailures *prometheus.CounterVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"handler", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"handler"},
		),

		responseBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "response_bytes",
				Help:      "Size of response bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 10), // 256B to 64MB
			},
			[]string{"body"},
		),

		dispatchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dispatch_failures_total",
				Help:      "Total number of requests that ended in a failure response",
			},
			[]string{"handler", "kind"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.responseBytes,
		rm.dispatchFailures,
	)

	return rm
}

// RecordRequest records one completed request.
func (rm *RequestMetrics) RecordRequest(handler, method, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(handler, method, status).Inc()
	rm.requestDuration.WithLabelValues(handler).Observe(duration.Seconds())
}

// RecordBody records a response body size.
func (rm *RequestMetrics) RecordBody(strategy string, bytes int) {
	rm.responseBytes.WithLabelValues(strategy).Observe(float64(bytes))
}

// RecordFailure records a failure response.
func (rm *RequestMetrics) RecordFailure(handler, kind string) {
	rm.dispatchFailures.WithLabelValues(handler, kind).Inc()
}
