package middleware

import (
	"net/http"
	"time"

	"xget-hq/edge/pkg/proxy/handlers"
	"xget-hq/edge/pkg/telemetry/metrics"
)

// MetricsMiddleware records request count and latency labelled by the route
// the dispatcher will pick. A nil collector records nothing.
func MetricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			route := handlers.RouteFor(r.URL.Path)
			collector.RecordRequest(string(route), r.Method, rw.statusCode, time.Since(start))
		})
	}
}
