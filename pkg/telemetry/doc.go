// Package telemetry groups the observability packages of the edge server.
//
// # Components
//
//   - logging: slog construction with request and trace IDs, header redaction
//   - metrics: Prometheus collectors for requests, dispatch failures,
//     redirects and the served certificate
//   - tracing: OpenTelemetry tracer, W3C propagation and the HTTP span middleware
//   - health: the checker behind /api/health
//
// Each package is configured from its own section of config.TelemetryConfig
// and is safe to use with a nil or disabled value, so the server can be
// assembled without any of them.
//
// # Usage
//
//	logger, _ := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, prometheus.NewRegistry())
//	tracer, _ := tracing.New(ctx, cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout, health.WithVersion(version))
package telemetry
