package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.http_port").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any rule fails. All field errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(cfg)...)
	errs = append(errs, validateRouting(&cfg.Routing)...)
	errs = append(errs, validateSecurity(&cfg.Security)...)
	errs = append(errs, validateTelemetry(cfg)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *Config) []FieldError {
	var errs []FieldError
	s := &cfg.Server

	if s.BindAddress != "" && net.ParseIP(s.BindAddress) == nil && s.BindAddress != "localhost" {
		errs = append(errs, FieldError{
			Field:   "server.bind_address",
			Message: fmt.Sprintf("%q is not an IP address", s.BindAddress),
		})
	}

	if !validPort(s.HTTPPort) {
		errs = append(errs, FieldError{
			Field:   "server.http_port",
			Message: fmt.Sprintf("port %d out of range 1-65535", s.HTTPPort),
		})
	}
	if cfg.Security.TLS.Enabled {
		if !validPort(s.HTTPSPort) {
			errs = append(errs, FieldError{
				Field:   "server.https_port",
				Message: fmt.Sprintf("port %d out of range 1-65535", s.HTTPSPort),
			})
		}
		if s.HTTPSPort == s.HTTPPort {
			errs = append(errs, FieldError{
				Field:   "server.https_port",
				Message: "HTTPS port must differ from the HTTP port when TLS is enabled",
			})
		}
	}

	if s.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "read timeout must be positive"})
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "write timeout must be positive"})
	}
	if s.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.idle_timeout", Message: "idle timeout must be positive"})
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"})
	}
	if s.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_header_bytes", Message: "max header bytes must be non-negative"})
	}
	if s.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_body_bytes", Message: "max body bytes must be non-negative"})
	}

	return errs
}

func validateRouting(cfg *RoutingConfig) []FieldError {
	var errs []FieldError

	if cfg.Upstream != "" {
		u, err := url.Parse(cfg.Upstream)
		switch {
		case err != nil:
			errs = append(errs, FieldError{
				Field:   "routing.upstream",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, FieldError{
				Field:   "routing.upstream",
				Message: "upstream must use the http or https scheme",
			})
		case u.Host == "":
			errs = append(errs, FieldError{
				Field:   "routing.upstream",
				Message: "upstream must include a host",
			})
		}
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "routing.timeout", Message: "timeout must be positive"})
	}

	return errs
}

func validateSecurity(cfg *SecurityConfig) []FieldError {
	var errs []FieldError
	t := &cfg.TLS

	if t.Enabled {
		if t.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "security.tls.cert_file",
				Message: "TLS certificate file is required when TLS is enabled",
			})
		}
		if t.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "security.tls.key_file",
				Message: "TLS key file is required when TLS is enabled",
			})
		}
	}

	switch t.MinVersion {
	case "", "1.2", "1.3":
	default:
		errs = append(errs, FieldError{
			Field:   "security.tls.min_version",
			Message: fmt.Sprintf("unsupported TLS version %q (want 1.2 or 1.3)", t.MinVersion),
		})
	}

	if s := t.ExpirySchedule(); s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			errs = append(errs, FieldError{
				Field:   "security.tls.expiry_check_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}
	if t.ExpiryWarningDays < 0 {
		errs = append(errs, FieldError{
			Field:   "security.tls.expiry_warning_days",
			Message: "expiry warning days must be non-negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *Config) []FieldError {
	var errs []FieldError
	t := &cfg.Telemetry

	switch strings.ToLower(t.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (want debug, info, warn or error)", t.Logging.Level),
		})
	}
	switch strings.ToLower(t.Logging.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (want json or text)", t.Logging.Format),
		})
	}

	if t.Metrics.Port != 0 {
		if !validPort(t.Metrics.Port) {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.port",
				Message: fmt.Sprintf("port %d out of range 1-65535", t.Metrics.Port),
			})
		} else if t.Metrics.Port == cfg.Server.HTTPPort || (cfg.Security.TLS.Enabled && t.Metrics.Port == cfg.Server.HTTPSPort) {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.port",
				Message: "metrics port must differ from the server ports",
			})
		}
	}
	if t.Metrics.Path != "" && !strings.HasPrefix(t.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	switch t.Tracing.Sampler {
	case "", "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q (want always, never or ratio)", t.Tracing.Sampler),
		})
	}
	if t.Tracing.SampleRatio < 0 || t.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0 and 1",
		})
	}
	if t.Tracing.Enabled && t.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}
	if t.Health.CheckTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.check_timeout",
			Message: "check timeout must be positive",
		})
	}

	return errs
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}
