package config

import "time"

// Config is the root configuration structure for the casework service.
// It contains all configuration sections for the HTTP server, the
// relational store, the intelligence subsystem, retention sweeps, audit
// export signing, telemetry, and security settings.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`

	// Store contains configuration for the primary relational store.
	Store StoreConfig `yaml:"store"`

	// Intelligence contains configuration for the decision intelligence
	// engine, including its dedicated chain database and recompute
	// throttling.
	Intelligence IntelligenceConfig `yaml:"intelligence"`

	// Retention contains configuration for the evidence/payload retention
	// sweep scheduler.
	Retention RetentionConfig `yaml:"retention"`

	// Audit contains configuration for export bundle signing.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for observability: logging and
	// metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains environment/role related configuration not bound
	// to transport-layer auth (that is deliberately out of scope here).
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "0.0.0.0:8001").
	// Default: "0.0.0.0:8001"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Default: 30s.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Default: 30s.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled. Default: 120s.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown. Default: 30s.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// ExportDeadline bounds how long an audit export request may run
	// before it is abandoned as a partial failure (spec recommends 30s).
	ExportDeadline time.Duration `yaml:"export_deadline"`

	// UploadsRoot is the filesystem directory attachment blobs are
	// written beneath, one file per attachment under
	// {UploadsRoot}/{case_id}/{attachment_id}.{ext}.
	UploadsRoot string `yaml:"uploads_root"`

	// MaxAttachmentBytes caps accepted attachment upload size.
	// Default: 10485760 (10 MiB).
	MaxAttachmentBytes int64 `yaml:"max_attachment_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled. Default: true.
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins. "*" allows all (not
	// recommended for production; see the warnings reported by Warnings).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers.
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers exposed to the client.
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache duration in seconds.
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed.
	AllowCredentials bool `yaml:"allow_credentials"`
}

// StoreConfig contains configuration for the primary relational store.
type StoreConfig struct {
	// DatabaseURL is the sqlite DSN for the primary store
	// (submissions, cases, evidence, events, attachments). Overridden by
	// the DATABASE_URL environment variable (spec.md §6.3).
	DatabaseURL string `yaml:"database_url"`

	// MaxOpenConns bounds the connection pool size.
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is passed to the driver as _busy_timeout, bounding how
	// long a writer waits on SQLITE_BUSY before failing.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// IntelligenceConfig contains configuration for the decision intelligence
// engine.
type IntelligenceConfig struct {
	// ChainDatabaseURL is the sqlite DSN for the append-only intelligence
	// history chain, kept on a separate database from StoreConfig's
	// general CRUD tables.
	ChainDatabaseURL string `yaml:"chain_database_url"`

	// RecomputeIntervalFloor is loaded from configuration but not read by
	// the Intelligence Repository, whose minimum spacing between writes
	// per case is its fixed 2s internal throttle (spec.md §4.3).
	RecomputeIntervalFloor time.Duration `yaml:"recompute_interval_floor"`

	// ThrottleSeconds is the default Auto-Recompute throttle window
	// (spec.md §4.6, 30s) applied unless a caller forces recompute.
	ThrottleSeconds int `yaml:"throttle_seconds"`

	// RulePackOverlayDir, if set, is watched with fsnotify for
	// data-only rule-pack overlays (field aliases, state codes). The
	// rule logic itself is never hot-reloaded.
	RulePackOverlayDir string `yaml:"rule_pack_overlay_dir"`
}

// RetentionConfig contains configuration for the retention sweep.
type RetentionConfig struct {
	// EvidenceRetentionDays is how long evidence entries are kept before
	// being pruned at export time. Overridden by EVIDENCE_RETENTION_DAYS.
	// Default: 30.
	EvidenceRetentionDays int `yaml:"evidence_retention_days"`

	// PayloadRetentionDays is how long history entry payloads are kept
	// before being blanked (metadata survives). Overridden by
	// PAYLOAD_RETENTION_DAYS. Default: 90.
	PayloadRetentionDays int `yaml:"payload_retention_days"`

	// Schedule is the cron expression the daily sweep runs on.
	// Default: "0 3 * * *" (03:00 daily).
	Schedule string `yaml:"schedule"`
}

// AuditConfig contains configuration for export bundle signing.
type AuditConfig struct {
	// SigningKey is the HMAC-SHA256 secret used to sign export bundles.
	// Overridden by AUDIT_SIGNING_KEY. Production startup refuses to run
	// if this is empty or equal to DevSigningKeyDefault.
	SigningKey string `yaml:"signing_key"`
}

// DevSigningKeyDefault is the documented development default for
// AuditConfig.SigningKey. Production startup refuses to run with this
// value set (spec.md §6.3).
const DevSigningKeyDefault = "dev-only-insecure-signing-key"

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error". Default: "info".
	Level string `yaml:"level"`

	// Format is one of "json", "text". Default: "json".
	Format string `yaml:"format"`

	// AddSource includes the source file/line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactPII runs log field values through the logging package's own
	// redaction patterns before they are written.
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether /metrics is registered.
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path metrics are exposed on. Default: "/metrics".
	Path string `yaml:"path"`
}

// SecurityConfig contains environment and role related settings.
type SecurityConfig struct {
	// Environment is "dev" or "prod", overridden by APP_ENV.
	Environment string `yaml:"environment"`

	// DevSeedToken, if set, enables a development seed endpoint.
	// Overridden by DEV_SEED_TOKEN. Must be unset in production.
	DevSeedToken string `yaml:"dev_seed_token"`

	// OpenAIAPIKey / GeminiAPIKey gate optional RAG evidence-lookup
	// features; their absence only produces a startup warning
	// (spec.md §6.3).
	OpenAIAPIKey string `yaml:"openai_api_key"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
}
