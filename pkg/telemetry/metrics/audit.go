package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// auditMetrics tracks metrics related to export bundle assembly and
// signing.
//
// Metrics:
//   - casework_audit_exports_total: export bundles assembled, by redaction mode
//   - casework_audit_export_duration_seconds: export assembly duration
//   - casework_audit_verify_failures_total: chain verification failures surfaced on export
type auditMetrics struct {
	exports        *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	verifyFailures *prometheus.CounterVec
}

func newAuditMetrics(registry *prometheus.Registry) *auditMetrics {
	m := &auditMetrics{
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "exports_total",
				Help:      "Total number of signed export bundles assembled, by redaction mode",
			},
			[]string{"redaction_mode"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "export_duration_seconds",
				Help:      "Duration of export bundle assembly and signing in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"redaction_mode"},
		),
		verifyFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "verify_failures_total",
				Help:      "Total number of exports whose intelligence chain failed integrity verification",
			},
			[]string{"reason"},
		),
	}
	registry.MustRegister(m.exports, m.duration, m.verifyFailures)
	return m
}

// RecordExport records a completed export+sign, labeled by the
// effective redaction mode (pii.Mode stringified by the caller).
func (c *Collector) RecordExport(redactionMode string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.audit.exports.WithLabelValues(redactionMode).Inc()
	c.audit.duration.WithLabelValues(redactionMode).Observe(duration.Seconds())
}

// RecordVerifyFailure records an export whose intelligence chain did
// not verify intact (broken link, hash mismatch, etc).
func (c *Collector) RecordVerifyFailure(reason string) {
	if !c.enabled() {
		return
	}
	c.audit.verifyFailures.WithLabelValues(reason).Inc()
}
