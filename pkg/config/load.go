package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every structured environment override.
const EnvPrefix = "XGET_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values and validates the result. Environment variables
// are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. An empty path skips the file and starts
// from defaults.
//
// The loading sequence is:
// 1. Load YAML from file (or defaults)
// 2. Apply legacy variables PORT, HTTPS_PORT and SSL_ENABLED
// 3. Apply XGET_SECTION_FIELD variables
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

// applyEnvOverrides applies environment variable overrides to the configuration.
// Legacy variables are applied first so the XGET_ form wins when both are set.
func applyEnvOverrides(cfg *Config, lookup lookupFunc) error {
	var errs []FieldError
	env := envReader{lookup: lookup, errs: &errs}

	// Legacy deployment variables
	env.int("PORT", "server.http_port", &cfg.Server.HTTPPort)
	env.int("HTTPS_PORT", "server.https_port", &cfg.Server.HTTPSPort)
	if val, ok := lookup("SSL_ENABLED"); ok {
		cfg.Security.TLS.Enabled = val == "true"
	}

	// Server overrides
	env.string(EnvPrefix+"SERVER_BIND_ADDRESS", &cfg.Server.BindAddress)
	env.int(EnvPrefix+"SERVER_HTTP_PORT", "server.http_port", &cfg.Server.HTTPPort)
	env.int(EnvPrefix+"SERVER_HTTPS_PORT", "server.https_port", &cfg.Server.HTTPSPort)
	env.duration(EnvPrefix+"SERVER_READ_TIMEOUT", "server.read_timeout", &cfg.Server.ReadTimeout)
	env.duration(EnvPrefix+"SERVER_WRITE_TIMEOUT", "server.write_timeout", &cfg.Server.WriteTimeout)
	env.duration(EnvPrefix+"SERVER_IDLE_TIMEOUT", "server.idle_timeout", &cfg.Server.IdleTimeout)
	env.duration(EnvPrefix+"SERVER_SHUTDOWN_TIMEOUT", "server.shutdown_timeout", &cfg.Server.ShutdownTimeout)
	env.int64(EnvPrefix+"SERVER_MAX_BODY_BYTES", "server.max_body_bytes", &cfg.Server.MaxBodyBytes)

	// Routing overrides
	env.string(EnvPrefix+"ROUTING_UPSTREAM", &cfg.Routing.Upstream)
	env.duration(EnvPrefix+"ROUTING_TIMEOUT", "routing.timeout", &cfg.Routing.Timeout)

	// TLS overrides
	env.bool(EnvPrefix+"SECURITY_TLS_ENABLED", "security.tls.enabled", &cfg.Security.TLS.Enabled)
	env.string(EnvPrefix+"SECURITY_TLS_CERT_FILE", &cfg.Security.TLS.CertFile)
	env.string(EnvPrefix+"SECURITY_TLS_KEY_FILE", &cfg.Security.TLS.KeyFile)
	env.string(EnvPrefix+"SECURITY_TLS_MIN_VERSION", &cfg.Security.TLS.MinVersion)
	env.bool(EnvPrefix+"SECURITY_TLS_WATCH", "security.tls.watch", &cfg.Security.TLS.Watch)
	env.string(EnvPrefix+"SECURITY_TLS_EXPIRY_CHECK_SCHEDULE", &cfg.Security.TLS.ExpiryCheckSchedule)

	// Telemetry overrides
	env.string(EnvPrefix+"TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	env.string(EnvPrefix+"TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	env.bool(EnvPrefix+"TELEMETRY_METRICS_ENABLED", "telemetry.metrics.enabled", &cfg.Telemetry.Metrics.Enabled)
	env.int(EnvPrefix+"TELEMETRY_METRICS_PORT", "telemetry.metrics.port", &cfg.Telemetry.Metrics.Port)
	env.bool(EnvPrefix+"TELEMETRY_TRACING_ENABLED", "telemetry.tracing.enabled", &cfg.Telemetry.Tracing.Enabled)
	env.string(EnvPrefix+"TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	env.string(EnvPrefix+"TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// envReader reads typed values from the environment and records a FieldError
// for each variable that fails to parse.
type envReader struct {
	lookup lookupFunc
	errs   *[]FieldError
}

func (r envReader) string(key string, dst *string) {
	if val, ok := r.lookup(key); ok && val != "" {
		*dst = val
	}
}

func (r envReader) int(key, field string, dst *int) {
	val, ok := r.lookup(key)
	if !ok || val == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		r.fail(key, field, val, "an integer")
		return
	}
	*dst = n
}

func (r envReader) int64(key, field string, dst *int64) {
	val, ok := r.lookup(key)
	if !ok || val == "" {
		return
	}
	n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		r.fail(key, field, val, "an integer")
		return
	}
	*dst = n
}

func (r envReader) bool(key, field string, dst *bool) {
	val, ok := r.lookup(key)
	if !ok || val == "" {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		r.fail(key, field, val, "a boolean")
		return
	}
	*dst = b
}

func (r envReader) duration(key, field string, dst *time.Duration) {
	val, ok := r.lookup(key)
	if !ok || val == "" {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		r.fail(key, field, val, "a duration")
		return
	}
	*dst = d
}

func (r envReader) fail(key, field, val, want string) {
	*r.errs = append(*r.errs, FieldError{
		Field:   field,
		Message: fmt.Sprintf("environment variable %s=%q is not %s", key, val, want),
	})
}
