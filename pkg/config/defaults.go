package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress      = "0.0.0.0:8001"
	DefaultReadTimeout        = 30 * time.Second
	DefaultWriteTimeout       = 30 * time.Second
	DefaultIdleTimeout        = 120 * time.Second
	DefaultShutdownTimeout    = 30 * time.Second
	DefaultExportDeadline     = 30 * time.Second
	DefaultUploadsRoot        = "data/uploads"
	DefaultMaxAttachmentBytes = 10 * 1024 * 1024 // 10 MiB

	// CORS defaults
	DefaultCORSEnabled          = true
	DefaultCORSMaxAge           = 3600
	DefaultCORSAllowCredentials = false

	// Store defaults
	DefaultDatabaseURL  = "data/casework.db"
	DefaultMaxOpenConns = 10
	DefaultBusyTimeout  = 5 * time.Second

	// Intelligence defaults
	DefaultChainDatabaseURL        = "data/intelligence-chain.db"
	DefaultRecomputeIntervalFloor  = 2 * time.Second
	DefaultThrottleSeconds         = 30
	DefaultRulePackOverlayInterval = 0

	// Retention defaults
	DefaultEvidenceRetentionDays = 30
	DefaultPayloadRetentionDays  = 90
	DefaultRetentionSchedule     = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
	DefaultMetricsPath   = "/metrics"

	// Security defaults
	DefaultEnvironment = "dev"
)

// DefaultAllowedOrigins, DefaultAllowedMethods, DefaultAllowedHeaders, and
// DefaultExposedHeaders are the CORS list defaults; declared as variables
// since Go constants cannot hold slices.
var (
	DefaultAllowedOrigins = []string{"*"}
	DefaultAllowedMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	DefaultAllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID", "X-AutoComply-Role"}
	DefaultExposedHeaders = []string{"X-Request-ID"}
)

// ApplyDefaults fills unset fields of cfg with their documented defaults.
// It never overwrites a value the caller (or the YAML file) already set.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.ExportDeadline == 0 {
		cfg.Server.ExportDeadline = DefaultExportDeadline
	}
	if cfg.Server.UploadsRoot == "" {
		cfg.Server.UploadsRoot = DefaultUploadsRoot
	}
	if cfg.Server.MaxAttachmentBytes == 0 {
		cfg.Server.MaxAttachmentBytes = DefaultMaxAttachmentBytes
	}

	applyCORSDefaults(cfg)

	if cfg.Store.DatabaseURL == "" {
		cfg.Store.DatabaseURL = DefaultDatabaseURL
	}
	if cfg.Store.MaxOpenConns == 0 {
		cfg.Store.MaxOpenConns = DefaultMaxOpenConns
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = DefaultBusyTimeout
	}

	if cfg.Intelligence.ChainDatabaseURL == "" {
		cfg.Intelligence.ChainDatabaseURL = DefaultChainDatabaseURL
	}
	if cfg.Intelligence.RecomputeIntervalFloor == 0 {
		cfg.Intelligence.RecomputeIntervalFloor = DefaultRecomputeIntervalFloor
	}
	if cfg.Intelligence.ThrottleSeconds == 0 {
		cfg.Intelligence.ThrottleSeconds = DefaultThrottleSeconds
	}

	if cfg.Retention.EvidenceRetentionDays == 0 {
		cfg.Retention.EvidenceRetentionDays = DefaultEvidenceRetentionDays
	}
	if cfg.Retention.PayloadRetentionDays == 0 {
		cfg.Retention.PayloadRetentionDays = DefaultPayloadRetentionDays
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Security.Environment == "" {
		cfg.Security.Environment = DefaultEnvironment
	}
	if cfg.Audit.SigningKey == "" {
		cfg.Audit.SigningKey = DevSigningKeyDefault
	}
}

// applyCORSDefaults fills in the CORS section, treating Enabled specially
// since its zero value (false) is indistinguishable from an explicit
// opt-out: if no other CORS field was set either, assume the whole
// section was left blank and apply every default.
func applyCORSDefaults(cfg *Config) {
	cors := &cfg.Server.CORS

	if !cors.Enabled {
		hasAnyConfig := len(cors.AllowedOrigins) > 0 ||
			len(cors.AllowedMethods) > 0 ||
			len(cors.AllowedHeaders) > 0 ||
			len(cors.ExposedHeaders) > 0 ||
			cors.MaxAge > 0

		if !hasAnyConfig {
			cors.Enabled = DefaultCORSEnabled
		}
	}

	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = DefaultAllowedOrigins
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = DefaultAllowedMethods
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = DefaultAllowedHeaders
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = DefaultExposedHeaders
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
