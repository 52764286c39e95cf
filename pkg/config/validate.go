package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g.,
	// "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access to
// all field errors.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. It returns nil if the
// configuration is valid. All validation errors are collected and
// returned together rather than failing on the first one.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateIntelligence(&cfg.Intelligence)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateSecurityAndAudit(cfg)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError

	if s.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, FieldError{"server.read_timeout", "must not be negative"})
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, FieldError{"server.write_timeout", "must not be negative"})
	}
	if s.MaxAttachmentBytes <= 0 {
		errs = append(errs, FieldError{"server.max_attachment_bytes", "must be positive"})
	}
	if s.UploadsRoot == "" {
		errs = append(errs, FieldError{"server.uploads_root", "must not be empty"})
	}

	if s.CORS.Enabled && len(s.CORS.AllowedOrigins) == 0 {
		errs = append(errs, FieldError{"server.cors.allowed_origins", "must have at least one entry when CORS is enabled"})
	}
	if s.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{"server.cors.max_age", "must not be negative"})
	}

	return errs
}

func validateStore(s *StoreConfig) []FieldError {
	var errs []FieldError

	if s.DatabaseURL == "" {
		errs = append(errs, FieldError{"store.database_url", "must not be empty"})
	}
	if s.MaxOpenConns <= 0 {
		errs = append(errs, FieldError{"store.max_open_conns", "must be positive"})
	}
	if s.BusyTimeout <= 0 {
		errs = append(errs, FieldError{"store.busy_timeout", "must be positive"})
	}

	return errs
}

func validateIntelligence(i *IntelligenceConfig) []FieldError {
	var errs []FieldError

	if i.ChainDatabaseURL == "" {
		errs = append(errs, FieldError{"intelligence.chain_database_url", "must not be empty"})
	}
	if i.RecomputeIntervalFloor <= 0 {
		errs = append(errs, FieldError{"intelligence.recompute_interval_floor", "must be positive"})
	}
	if i.ThrottleSeconds < 0 {
		errs = append(errs, FieldError{"intelligence.throttle_seconds", "must not be negative"})
	}

	return errs
}

func validateRetention(r *RetentionConfig) []FieldError {
	var errs []FieldError

	if r.EvidenceRetentionDays <= 0 {
		errs = append(errs, FieldError{"retention.evidence_retention_days", "must be positive"})
	}
	if r.PayloadRetentionDays <= 0 {
		errs = append(errs, FieldError{"retention.payload_retention_days", "must be positive"})
	}
	if r.Schedule == "" {
		errs = append(errs, FieldError{"retention.schedule", "must not be empty"})
	}

	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", "must be one of debug, info, warn, error"})
	}

	switch t.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", "must be one of json, text"})
	}

	if t.Metrics.Enabled && t.Metrics.Path == "" {
		errs = append(errs, FieldError{"telemetry.metrics.path", "must not be empty when metrics are enabled"})
	}

	return errs
}

// validateSecurityAndAudit enforces spec.md §6.3's production startup
// rules: DATABASE_URL and AUDIT_SIGNING_KEY are critical in prod, the dev
// signing key default is refused, and a "*" CORS origin in prod is a
// warning surfaced by health/details rather than a hard validation error.
func validateSecurityAndAudit(cfg *Config) []FieldError {
	var errs []FieldError

	switch cfg.Security.Environment {
	case "dev", "prod":
	default:
		errs = append(errs, FieldError{"security.environment", `must be one of "dev", "prod"`})
	}

	if cfg.Security.Environment == "prod" {
		if cfg.Store.DatabaseURL == "" {
			errs = append(errs, FieldError{"store.database_url", "must be set for production startup"})
		}
		if cfg.Audit.SigningKey == "" || cfg.Audit.SigningKey == DevSigningKeyDefault {
			errs = append(errs, FieldError{"audit.signing_key", "must be set to a non-default value for production startup"})
		}
	}

	return errs
}

// Warnings describes non-fatal startup concerns (spec.md §6.3's "Warnings"
// category): logged, never block startup. Warnings inspects cfg (not the
// process environment) for each documented condition.
func Warnings(cfg *Config) []string {
	var warnings []string

	if cfg.Security.OpenAIAPIKey == "" && cfg.Security.GeminiAPIKey == "" {
		warnings = append(warnings, "OPENAI_API_KEY/GEMINI_API_KEY not set: RAG evidence-lookup features disabled")
	}
	if cfg.Security.Environment == "prod" {
		for _, origin := range cfg.Server.CORS.AllowedOrigins {
			if origin == "*" {
				warnings = append(warnings, `CORS_ORIGINS includes "*" in production`)
				break
			}
		}
		if cfg.Security.DevSeedToken == "" {
			warnings = append(warnings, "DEV_SEED_TOKEN not set: seed endpoint unavailable")
		}
	}

	return warnings
}
