// Package metrics provides Prometheus metrics for the xget edge server.
//
// # Metrics
//
// With the default namespace and subsystem:
//
//   - xget_edge_requests_total{handler,method,status}
//   - xget_edge_request_duration_seconds{handler}
//   - xget_edge_response_bytes{body}
//   - xget_edge_dispatch_failures_total{handler,kind}
//   - xget_edge_redirects_total
//   - xget_edge_tls_certificate_expiry_days
//   - xget_edge_tls_certificate_reloads_total{result}
//
// # Usage
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	mux.Handle("/metrics", collector.Handler())
//
// A nil *Collector records nothing, as does one built from a disabled config.
package metrics
