// Package middleware provides the HTTP middleware wrapped around the
// dispatcher.
//
// # Middleware Chain
//
// Every listener builds its own chain, outermost first:
//
//	Recovery → RequestID → Tracing → Logging → Metrics → [Redirect] → Dispatcher
//
// Redirect is installed only when TLS is enabled. Use Chain to compose:
//
//	h := middleware.Chain(dispatcher,
//	    middleware.RecoveryMiddleware(logger),
//	    middleware.RequestIDMiddleware,
//	    tracing.HTTPMiddleware(tracer),
//	    middleware.LoggingMiddleware(logger),
//	    middleware.MetricsMiddleware(collector),
//	    middleware.RedirectMiddleware(collector),
//	)
//
// # Redirect
//
// RedirectMiddleware bounces insecure requests to HTTPS:
//
//	GET http://example.com:3000/a?b=c
//	→ 302 Found, Location: https://example.com:3000/a?b=c
//
// A request counts as secure when it arrived over TLS or when the first
// X-Forwarded-Proto value is https.
//
// # Request ID
//
// RequestIDMiddleware stores the request ID in the context, where the
// logging handler picks it up, and echoes it in X-Request-ID.
//
// # Recovery
//
// RecoveryMiddleware turns a panic that escaped the dispatcher into the
// standard JSON 500:
//
//	{"error":"Internal server error","message":"panic: ...","timestamp":"..."}
package middleware
