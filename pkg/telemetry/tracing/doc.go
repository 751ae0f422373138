// Package tracing provides OpenTelemetry distributed tracing.
//
// When enabled, spans are exported over OTLP gRPC and W3C Trace Context is
// propagated in both directions: extracted from inbound requests by
// HTTPMiddleware and injected into forwarded requests with Inject.
//
// Configuration:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: "localhost:4317"
//	    sampler: ratio
//	    sample_ratio: 0.1
//	    insecure: true
//
// A disabled or nil Tracer produces no-op spans.
package tracing
