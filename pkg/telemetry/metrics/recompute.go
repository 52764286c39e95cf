package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// recomputeMetrics tracks metrics related to intelligence recompute.
//
// Metrics:
//   - casework_recompute_total: recompute invocations by trigger, outcome
//   - casework_recompute_duration_seconds: recompute duration histogram
//   - casework_recompute_throttled_total: throttled (skipped) recomputes
type recomputeMetrics struct {
	total     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	throttled *prometheus.CounterVec
}

func newRecomputeMetrics(registry *prometheus.Registry) *recomputeMetrics {
	m := &recomputeMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "recompute",
				Name:      "total",
				Help:      "Total number of intelligence recompute invocations",
			},
			[]string{"trigger", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "recompute",
				Name:      "duration_seconds",
				Help:      "Duration of intelligence recompute in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"trigger"},
		),
		throttled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "recompute",
				Name:      "throttled_total",
				Help:      "Total number of recomputes skipped by a throttle window",
			},
			[]string{"trigger", "layer"},
		),
	}
	registry.MustRegister(m.total, m.duration, m.throttled)
	return m
}

// RecordRecompute records a completed (non-throttled) recompute.
func (c *Collector) RecordRecompute(trigger, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.recompute.total.WithLabelValues(trigger, outcome).Inc()
	c.recompute.duration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// RecordRecomputeThrottled records a recompute skipped by a throttle
// window. layer distinguishes the intelligence repository's internal
// write-dedup window from the auto-recompute hook's per-case window,
// since the two operate at different timescales.
func (c *Collector) RecordRecomputeThrottled(trigger, layer string) {
	if !c.enabled() {
		return
	}
	c.recompute.throttled.WithLabelValues(trigger, layer).Inc()
}
