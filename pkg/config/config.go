package config

import (
	"strings"
	"time"
)

// Config is the root configuration structure for the xget edge server.
// A loaded Config is treated as immutable: components receive it (or the
// section they need) explicitly at construction time.
type Config struct {
	// Server contains listener configuration including ports, bind address,
	// timeouts and request limits.
	Server ServerConfig `yaml:"server"`

	// Routing contains configuration for the routing handler that serves
	// every path other than the health endpoint.
	Routing RoutingConfig `yaml:"routing"`

	// Security contains TLS settings.
	Security SecurityConfig `yaml:"security"`

	// Telemetry contains configuration for logging, metrics, tracing and
	// health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP listeners.
type ServerConfig struct {
	// BindAddress is the interface every listener binds to.
	// Default: "0.0.0.0"
	BindAddress string `yaml:"bind_address"`

	// HTTPPort is the plaintext port. In TLS mode the plaintext listener
	// only redirects to HTTPS.
	// Default: 3000
	HTTPPort int `yaml:"http_port"`

	// HTTPSPort is the TLS port. Only used when security.tls.enabled is true.
	// Default: 3443
	HTTPSPort int `yaml:"https_port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown of all listeners.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes caps the request body the request adapter will buffer.
	// Default: 52428800 (50MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// RoutingConfig configures the routing handler.
type RoutingConfig struct {
	// Upstream is the base URL requests are forwarded to. When empty the
	// routing handler answers every request with 404.
	Upstream string `yaml:"upstream"`

	// Timeout bounds a single upstream exchange including the body.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// TLS contains TLS listener configuration.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS configuration for the HTTPS listener.
type TLSConfig struct {
	// Enabled switches the server into TLS mode: an HTTPS listener plus a
	// plaintext listener that redirects to it.
	Enabled bool `yaml:"enabled"`

	// CertFile is the PEM certificate chain.
	// Default: "domain.crt"
	CertFile string `yaml:"cert_file"`

	// KeyFile is the PEM private key.
	// Default: "domain.key"
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version ("1.2" or "1.3").
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// CipherSuites restricts the TLS 1.2 cipher suites. Empty uses Go's defaults.
	CipherSuites []string `yaml:"cipher_suites"`

	// Watch reloads the certificate when either file changes on disk.
	Watch bool `yaml:"watch"`

	// ExpiryCheckSchedule is a cron expression for the certificate expiry
	// monitor, or "off" to disable it.
	// Default: "@hourly"
	ExpiryCheckSchedule string `yaml:"expiry_check_schedule"`

	// ExpiryWarningDays is the remaining-validity threshold below which the
	// monitor and the health check report a warning.
	// Default: 30
	ExpiryWarningDays int `yaml:"expiry_warning_days"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes the source file and line in each record.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns on metric collection.
	Enabled bool `yaml:"enabled"`

	// Port is the dedicated metrics listener port. Zero disables the listener
	// while metrics are still collected.
	Port int `yaml:"port"`

	// Path is the scrape path on the metrics listener.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "xget"
	Namespace string `yaml:"namespace"`

	// Subsystem follows the namespace in every metric name.
	// Default: "edge"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets are the histogram buckets for request latency.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns on span export. When false a no-op tracer is used.
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is reported as service.name.
	// Default: "xget-edge"
	ServiceName string `yaml:"service_name"`

	// Sampler is one of always, never, ratio.
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is used by the ratio sampler.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds a single export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig configures the health endpoint.
type HealthConfig struct {
	// CheckTimeout bounds the full set of registered checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// ExpirySchedule returns the expiry monitor schedule, or "" when the monitor
// is turned off.
func (t TLSConfig) ExpirySchedule() string {
	if strings.EqualFold(t.ExpiryCheckSchedule, ExpiryCheckOff) {
		return ""
	}
	return t.ExpiryCheckSchedule
}

// TLSEnabled reports whether the server runs in TLS mode.
func (c *Config) TLSEnabled() bool {
	return c.Security.TLS.Enabled
}
