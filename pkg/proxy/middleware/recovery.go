package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"xget-hq/edge/pkg/proxy"
	"xget-hq/edge/pkg/telemetry/logging"
)

// RecoveryMiddleware recovers from panics that escape the rest of the chain
// and answers with the same JSON 500 the dispatcher uses for handler errors.
// The stack trace is logged, never sent.
//
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
//
// Example usage:
//
//	handler = RecoveryMiddleware(logger)(handler)
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}

				logger.ErrorContext(r.Context(), "panic in handler",
					"error", p,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				if rw.written {
					// Too late for a status line; drop the connection instead.
					panic(http.ErrAbortHandler)
				}
				resp := proxy.FailureResponse(proxy.HandlerError(fmt.Errorf("panic: %v", p)), time.Now())
				_, _ = proxy.WriteResponse(rw, resp)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
