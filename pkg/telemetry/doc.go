// Package telemetry groups the observability surface of the casework
// service: structured logging, Prometheus metrics, and health checks.
//
// # Components
//
//   - logging: structured logging with PII redaction (log/slog based)
//   - metrics: Prometheus counters and histograms for recompute,
//     rule evaluation, export signing, and retention sweeps
//   - health: liveness/readiness checks backing /healthz and
//     /health/details
//
// # PII protection
//
// When enabled, logging redacts common sensitive patterns before a
// record is written:
//
//   - API keys: sk-abc123 → sk-***
//   - Emails: user@example.com → u***@example.com
//   - SSN: 123-45-6789 → ***-**-****
//   - IP addresses: 192.168.1.1 → 192.*.*.*
package telemetry
