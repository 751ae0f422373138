// xget is the HTTP edge server of the xget proxy.
//
// It accepts every request on a plaintext port (or, with TLS enabled, on an
// HTTPS port with the plaintext port redirecting to it), serves a health
// report on /api/health and forwards everything else to the configured
// upstream. Failures are answered with a uniform JSON 500 body.
//
// Usage:
//
//	# Start with config.yaml from the working directory (optional)
//	xget run
//
//	# Start with an explicit configuration file
//	xget run --config /etc/xget/config.yaml
//
//	# Validate configuration without binding any port
//	xget run --dry-run
//
//	# Generate a development certificate
//	xget certs generate --host localhost
package main

import "os"

func main() {
	os.Exit(Execute())
}
