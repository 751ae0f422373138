package config

import "time"

// Default configuration values.
const (
	// Server defaults
	DefaultBindAddress     = "0.0.0.0"
	DefaultHTTPPort        = 3000
	DefaultHTTPSPort       = 3443
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20
	DefaultMaxBodyBytes    = 50 << 20

	// Routing defaults
	DefaultRoutingTimeout = 60 * time.Second

	// TLS defaults
	DefaultCertFile            = "domain.crt"
	DefaultKeyFile             = "domain.key"
	DefaultTLSMinVersion       = "1.2"
	DefaultExpiryCheckSchedule = "@hourly"
	ExpiryCheckOff             = "off"
	DefaultExpiryWarningDays   = 30

	// Telemetry defaults
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "xget"
	DefaultMetricsSubsystem   = "edge"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingService     = "xget-edge"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingTimeout     = 10 * time.Second
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultRequestDurationBuckets are the default latency histogram buckets in seconds.
var DefaultRequestDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values and is idempotent.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.BindAddress == "" {
		cfg.Server.BindAddress = DefaultBindAddress
	}
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = DefaultHTTPPort
	}
	if cfg.Server.HTTPSPort == 0 {
		cfg.Server.HTTPSPort = DefaultHTTPSPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if cfg.Routing.Timeout == 0 {
		cfg.Routing.Timeout = DefaultRoutingTimeout
	}

	// TLS defaults apply whether or not TLS is enabled so that turning it on
	// through the environment picks up the conventional file names.
	if cfg.Security.TLS.CertFile == "" {
		cfg.Security.TLS.CertFile = DefaultCertFile
	}
	if cfg.Security.TLS.KeyFile == "" {
		cfg.Security.TLS.KeyFile = DefaultKeyFile
	}
	if cfg.Security.TLS.MinVersion == "" {
		cfg.Security.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Security.TLS.ExpiryCheckSchedule == "" {
		cfg.Security.TLS.ExpiryCheckSchedule = DefaultExpiryCheckSchedule
	}
	if cfg.Security.TLS.ExpiryWarningDays == 0 {
		cfg.Security.TLS.ExpiryWarningDays = DefaultExpiryWarningDays
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
