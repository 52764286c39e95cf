// Package retention implements the scheduled sweep half of spec.md
// §4.5's redaction + retention pipeline.
//
// # Overview
//
// Two things age out of the store independent of any single export:
//
//   - Evidence entries older than EvidenceRetentionDays (default 30)
//     are deleted outright.
//   - Soft-deleted attachments past the same window have their
//     physical blob file removed from disk; the metadata row (and the
//     fact that it was deleted) is retained for audit purposes.
//
// History entry payload blanking — the third leg of §4.5 — is scoped
// to the case being exported and runs inline in pkg/audit, not here.
//
// # Usage
//
//	pruner := retention.NewPruner(store, retention.Config{
//	    EvidenceRetentionDays: cfg.Retention.EvidenceRetentionDays,
//	    Schedule:              cfg.Retention.Schedule,
//	})
//	pruner.SetMetrics(collector)
//	if err := pruner.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pruner.Stop()
//
// Sweep can also be invoked directly, outside the scheduler, for an
// operator-triggered manual run.
package retention
