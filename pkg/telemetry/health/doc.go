// Package health implements the service health endpoint.
//
// Components register named checks on a Checker. Handle runs them
// concurrently, each bounded by the check timeout, and reports:
//
//   - 200 {"status":"ok", ...} when every check passed
//   - 503 {"status":"degraded", ...} when any check failed or timed out
//
// Usage:
//
//	checker := health.New(5*time.Second, health.WithVersion(version))
//	checker.RegisterCheck("tls_certificate", reloader.HealthCheck(30))
package health
