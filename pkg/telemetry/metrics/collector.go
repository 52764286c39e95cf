// Package metrics provides Prometheus metrics collection for the
// casework service.
//
// # Overview
//
// The metrics package exposes counters and histograms for the
// recompute/throttle pipeline, rule evaluations, export signings, and
// retention sweeps — the subsystems whose behavior operators most need
// visibility into (spec.md §4.3, §4.6, §4.8, §4.5).
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	hook := recompute.NewHook(repo)
//	hook.SetMetrics(collector)
//
//	http.Handle("/metrics", collector.Handler())
package metrics

import (
	"github.com/autocomply/casework/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// namespace is the fixed Prometheus metric namespace for this service.
// Unlike the teacher's MetricsConfig, ours carries no Namespace/Subsystem
// override fields, so this is a constant rather than config-driven.
const namespace = "casework"

// Collector is the orchestrator for all Prometheus metrics in the
// casework service. It manages metric registration and provides a
// typed recording interface for each instrumented subsystem.
type Collector struct {
	cfg      *config.MetricsConfig
	registry *prometheus.Registry

	recompute *recomputeMetrics
	rules     *ruleMetrics
	audit     *auditMetrics
	retention *retentionMetrics
}

// NewCollector creates a metrics collector with the given configuration
// and registry. If registry is nil, a fresh prometheus.Registry is used
// (never the global DefaultRegisterer, so tests can construct
// independent collectors without collisions).
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{cfg: cfg, registry: registry}
	c.recompute = newRecomputeMetrics(registry)
	c.rules = newRuleMetrics(registry)
	c.audit = newAuditMetrics(registry)
	c.retention = newRetentionMetrics(registry)
	return c
}

// enabled reports whether metric recording is turned on. Every Record*
// method is a no-op when it is not, so instrumented call sites never
// need their own enabled checks.
func (c *Collector) enabled() bool {
	return c != nil && c.cfg != nil && c.cfg.Enabled
}
