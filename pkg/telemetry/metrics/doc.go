// Package metrics provides Prometheus instrumentation for the casework
// service.
//
// # Categories
//
//   - recompute: invocation counts, duration, and throttle-skip counts
//     for the intelligence recompute pipeline (spec.md §4.3), labeled
//     by throttle layer since the intelligence repository's internal
//     write-dedup window and the auto-recompute hook's per-case window
//     operate independently.
//   - rules: rule pack evaluation counts and duration, by decision type
//     (spec.md §4.4).
//   - audit: export bundle assembly/signing counts and duration, plus
//     chain verification failures surfaced during export (spec.md §4.8).
//   - retention: scheduled sweep run counts, duration, and items pruned
//     by kind (spec.md §4.5).
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
//	hook := recompute.NewHook(repo)
//	hook.SetMetrics(collector)
//
// Every Record* method is a no-op when the collector's configuration
// has metrics disabled, so callers never need to guard calls with
// their own enabled checks.
package metrics
