// Package config provides configuration management for the casework
// service.
//
// This package handles loading, validating, and managing configuration
// from YAML files with environment variable overrides. It provides a
// type-safe configuration system with sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// The critical and warning variables named in spec §6.3 use their
// documented bare names (DATABASE_URL, AUDIT_SIGNING_KEY, OPENAI_API_KEY,
// GEMINI_API_KEY, CORS_ORIGINS, DEV_SEED_TOKEN, PORT, APP_ENV,
// EVIDENCE_RETENTION_DAYS, PAYLOAD_RETENTION_DAYS). Every other field
// follows CASEWORK_SECTION_FIELD, e.g. CASEWORK_TELEMETRY_LOGGING_LEVEL.
//
// # Singleton Pattern
//
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// Validate is run automatically by LoadConfig/LoadConfigWithEnvOverrides.
// Production (APP_ENV=prod) additionally requires a non-default
// AUDIT_SIGNING_KEY; Warnings surfaces the non-fatal conditions from
// spec §6.3 for /health/details to report.
package config
