package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"xget-hq/edge/pkg/config"
)

// ServerMetrics tracks listener-level events.
//
// Metrics:
//   - <ns>_<sub>_redirects_total: plaintext requests redirected to HTTPS
//   - <ns>_<sub>_tls_certificate_expiry_days: days until the serving certificate expires
//   - <ns>_<sub>_tls_certificate_reloads_total: certificate reloads by result
type ServerMetrics struct {
	redirectsTotal prometheus.Counter
	certExpiryDays prometheus.Gauge
	certReloads    *prometheus.CounterVec
}

// NewServerMetrics creates and registers server metrics with the provided registry.
func NewServerMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ServerMetrics {
	sm := &ServerMetrics{
		redirectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "redirects_total",
			Help:      "Total number of plaintext requests redirected to HTTPS",
		}),
		certExpiryDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "tls_certificate_expiry_days",
			Help:      "Days until the serving TLS certificate expires",
		}),
		certReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "tls_certificate_reloads_total",
			Help:      "Total number of TLS certificate reload attempts",
		}, []string{"result"}),
	}

	registry.MustRegister(sm.redirectsTotal, sm.certExpiryDays, sm.certReloads)
	return sm
}

// RecordRedirect increments the redirect counter.
func (sm *ServerMetrics) RecordRedirect() {
	sm.redirectsTotal.Inc()
}

// SetCertificateExpiry sets the certificate expiry gauge.
func (sm *ServerMetrics) SetCertificateExpiry(days float64) {
	sm.certExpiryDays.Set(days)
}

// RecordReload records a reload attempt.
func (sm *ServerMetrics) RecordReload(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	sm.certReloads.WithLabelValues(result).Inc()
}
