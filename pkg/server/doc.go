// Package server bootstraps the edge server's listeners.
//
// The mode is chosen once from security.tls.enabled:
//
//   - Plaintext: one listener on server.http_port serving the pipeline.
//   - TLS: the certificate is loaded first (failure is fatal), then one TLS
//     listener on server.https_port and one plaintext listener on
//     server.http_port. Both carry the redirect middleware; on the TLS
//     listener it always passes, on the plaintext one it redirects.
//
// A metrics listener is added when telemetry.metrics.port is set. Each
// listener gets its own handler chain and shares only the configuration.
//
//	s := server.New(cfg, server.Options{Health: checker, Routing: forwarder, Logger: logger})
//	if err := s.Listen(); err != nil {
//	    return err
//	}
//	return s.Serve(ctx) // returns after ctx is canceled and listeners drained
package server
