// Package config provides configuration management for the xget edge server.
//
// Configuration is loaded from an optional YAML file, completed with
// defaults, overridden from the environment and validated. The result is a
// plain value that callers pass to the components that need it.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// An empty path skips the file and starts from defaults.
//
// # Environment Variable Overrides
//
// Two families of variables are recognised. The legacy deployment variables
// are applied first:
//
//   - PORT overrides server.http_port
//   - HTTPS_PORT overrides server.https_port
//   - SSL_ENABLED enables TLS only when set to exactly "true"
//
// Structured variables follow XGET_SECTION_FIELD and are applied second, so
// they win over the legacy form:
//
//   - XGET_SERVER_HTTP_PORT overrides server.http_port
//   - XGET_SECURITY_TLS_ENABLED overrides security.tls.enabled
//   - XGET_ROUTING_UPSTREAM overrides routing.upstream
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Legacy environment variables
//  4. XGET_ environment variables
//  5. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	server:
//	  bind_address: "0.0.0.0"
//	  http_port: 3000
//	  https_port: 3443
//	routing:
//	  upstream: "http://127.0.0.1:9000"
//	security:
//	  tls:
//	    enabled: true
//	    cert_file: "domain.crt"
//	    key_file: "domain.key"
//	    watch: true
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//	  metrics:
//	    enabled: true
//	    port: 9090
package config
