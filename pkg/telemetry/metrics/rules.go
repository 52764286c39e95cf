package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ruleMetrics tracks metrics related to rule pack evaluation.
//
// Metrics:
//   - casework_rule_evaluations_total: evaluations by decision type, result
//   - casework_rule_evaluation_duration_seconds: evaluation duration histogram
type ruleMetrics struct {
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newRuleMetrics(registry *prometheus.Registry) *ruleMetrics {
	m := &ruleMetrics{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rules",
				Name:      "evaluations_total",
				Help:      "Total number of rule pack evaluations, by decision type and outcome",
			},
			[]string{"decision_type", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rules",
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of rule pack evaluation in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"decision_type"},
		),
	}
	registry.MustRegister(m.evaluations, m.duration)
	return m
}

// RecordRuleEvaluation records one rule pack evaluation. result is
// typically "pass", "fail", or "error" depending on how the caller
// classifies the Results returned by Pack.Evaluate.
func (c *Collector) RecordRuleEvaluation(decisionType, result string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.rules.evaluations.WithLabelValues(decisionType, result).Inc()
	c.rules.duration.WithLabelValues(decisionType).Observe(duration.Seconds())
}
