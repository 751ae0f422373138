// Package handlers contains the request dispatcher and the routing handler.
//
// # Dispatch
//
// Dispatcher is the innermost http.Handler of every listener. For each
// request it:
//
//  1. Builds a uniform request with proxy.FromHTTPRequest
//  2. Calls the health handler for exactly /api/health and the routing
//     handler for every other path
//  3. Writes the handler's response with proxy.WriteResponse
//
// Adapter, handler and serialization failures, including handler panics,
// become a JSON 500. Health failures carry a fixed body:
//
//	{"error":"Health check failed"}
//
// # Routing
//
// Forwarder replays requests against a configured upstream. Hop-by-hop
// headers are removed in both directions and the active trace context is
// injected into the upstream request. Without an upstream it answers 404.
package handlers
