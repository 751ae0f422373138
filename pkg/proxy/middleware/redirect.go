package middleware

import (
	"net/http"

	"xget-hq/edge/pkg/proxy"
	"xget-hq/edge/pkg/telemetry/metrics"
)

// RedirectMiddleware sends insecure requests to their HTTPS equivalent with
// a 302 Found. Secure requests (see proxy.IsSecure) pass through untouched.
//
// The target is https://<Host><RequestURI>. The Host header is used verbatim,
// port included. A request without a Host gets 400 and never reaches next.
//
// Install it only when TLS is enabled.
func RedirectMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if proxy.IsSecure(r) {
				next.ServeHTTP(w, r)
				return
			}

			if r.Host == "" {
				resp := proxy.StatusResponse(http.StatusBadRequest, "missing Host header")
				_, _ = proxy.WriteResponse(w, resp)
				return
			}

			collector.RecordRedirect()
			http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusFound)
		})
	}
}
