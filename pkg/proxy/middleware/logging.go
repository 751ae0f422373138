package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"xget-hq/edge/pkg/proxy"
	"xget-hq/edge/pkg/telemetry/logging"
)

// LoggingMiddleware logs one record per request. The level follows the
// response status (see logging.LevelForStatus). At debug level the request
// headers are logged too, with credentials redacted.
//
// Log format (JSON):
//
//	{
//	  "time": "2025-11-16T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000",
//	  "method": "GET",
//	  "path": "/gh/owner/repo/archive/main.zip",
//	  "status": 200,
//	  "bytes": 1048576,
//	  "latency_ms": 125,
//	  "remote_addr": "192.168.1.100:54321",
//	  "user_agent": "curl/8.5.0"
//	}
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	redactor := logging.NewRedactor()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := WithStartTime(r.Context(), start)
			r = r.WithContext(ctx)

			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.LogAttrs(ctx, slog.LevelDebug, "request started",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					redactor.HeaderAttr("headers", r.Header),
				)
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			meta := proxy.ExtractRequestMetadata(r)
			attrs := append(meta.Attrs(),
				slog.Int("status", rw.statusCode),
				slog.Int("bytes", rw.bytes),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			)
			logger.LogAttrs(ctx, logging.LevelForStatus(rw.statusCode), "request completed", attrs...)
		})
	}
}
