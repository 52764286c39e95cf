package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// retentionMetrics tracks metrics related to scheduled retention
// sweeps over evidence payloads and attachments.
//
// Metrics:
//   - casework_retention_sweeps_total: completed sweep runs, by outcome
//   - casework_retention_sweep_duration_seconds: sweep duration histogram
//   - casework_retention_items_pruned_total: items pruned per sweep, by item kind
type retentionMetrics struct {
	sweeps   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	pruned   *prometheus.CounterVec
}

func newRetentionMetrics(registry *prometheus.Registry) *retentionMetrics {
	m := &retentionMetrics{
		sweeps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "sweeps_total",
				Help:      "Total number of retention sweep runs, by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "sweep_duration_seconds",
				Help:      "Duration of a retention sweep run in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{},
		),
		pruned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "items_pruned_total",
				Help:      "Total number of items pruned by retention sweeps, by item kind",
			},
			[]string{"kind"},
		),
	}
	registry.MustRegister(m.sweeps, m.duration, m.pruned)
	return m
}

// RecordSweep records a completed retention sweep run.
func (c *Collector) RecordSweep(outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.retention.sweeps.WithLabelValues(outcome).Inc()
	c.retention.duration.WithLabelValues().Observe(duration.Seconds())
}

// RecordPruned records items pruned during a sweep for the given kind
// (e.g. "evidence_payload", "attachment").
func (c *Collector) RecordPruned(kind string, count int) {
	if !c.enabled() || count <= 0 {
		return
	}
	c.retention.pruned.WithLabelValues(kind).Add(float64(count))
}
