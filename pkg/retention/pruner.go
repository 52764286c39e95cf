// Package retention implements the evidence/attachment retention sweep
// of spec.md §4.5: evidence entries older than evidence_retention_days
// are pruned, and the physical blob of a soft-deleted attachment is
// purged from disk once past the same retention window. History entry
// payload blanking (the other half of §4.5) happens inline at export
// time (pkg/audit.applyPayloadRetention) since it only needs to run
// over the case being exported, not the whole store.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/autocomply/casework/pkg/pii"
	"github.com/autocomply/casework/pkg/store"
	"github.com/autocomply/casework/pkg/telemetry/metrics"
)

// DefaultSchedule is the cron expression the sweep runs on absent a
// config override (spec.md §9: "implementers should run it daily").
const DefaultSchedule = "0 3 * * *"

// Config configures a Pruner.
type Config struct {
	EvidenceRetentionDays int
	Schedule              string
}

// Result reports what a single sweep run did.
type Result struct {
	EvidenceDeleted  int
	AttachmentBlobsPurged int
}

// Pruner enforces the retention sweep over the primary store.
type Pruner struct {
	store   *store.Store
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Collector

	scheduler *Scheduler
}

// NewPruner constructs a Pruner over s. If cfg.Schedule is empty,
// DefaultSchedule is used.
func NewPruner(s *store.Store, cfg Config) *Pruner {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	p := &Pruner{
		store:  s,
		cfg:    cfg,
		logger: slog.Default().With("component", "retention"),
	}
	p.scheduler = NewScheduler(p)
	return p
}

// SetMetrics attaches a metrics collector. It is optional; a Pruner
// with no collector attached records nothing.
func (p *Pruner) SetMetrics(m *metrics.Collector) {
	p.metrics = m
}

// Sweep runs one retention pass: it deletes evidence entries older than
// EvidenceRetentionDays and purges the blob file (not the metadata row)
// of any soft-deleted attachment past the same window. A
// EvidenceRetentionDays of 0 disables evidence pruning but attachment
// blob purging still runs, since spec.md §7 has no "disable" knob for
// it — soft-deleted blobs are always eventually swept.
func (p *Pruner) Sweep(ctx context.Context) (Result, error) {
	start := time.Now()
	var result Result

	if p.cfg.EvidenceRetentionDays > 0 {
		deleted, err := p.pruneEvidence(ctx)
		if err != nil {
			p.metrics.RecordSweep("error", time.Since(start))
			return result, fmt.Errorf("prune evidence: %w", err)
		}
		result.EvidenceDeleted = deleted
	}

	purged, err := p.purgeAttachmentBlobs(ctx)
	if err != nil {
		p.metrics.RecordSweep("error", time.Since(start))
		return result, fmt.Errorf("purge attachment blobs: %w", err)
	}
	result.AttachmentBlobsPurged = purged

	p.metrics.RecordPruned("evidence", result.EvidenceDeleted)
	p.metrics.RecordPruned("attachment_blob", result.AttachmentBlobsPurged)
	p.metrics.RecordSweep("ok", time.Since(start))

	if result.EvidenceDeleted == 0 && result.AttachmentBlobsPurged == 0 {
		p.logger.Debug("retention sweep completed, nothing pruned")
	} else {
		p.logger.Info("retention sweep completed",
			"evidence_deleted", result.EvidenceDeleted,
			"attachment_blobs_purged", result.AttachmentBlobsPurged,
		)
	}
	return result, nil
}

func (p *Pruner) pruneEvidence(ctx context.Context) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -p.cfg.EvidenceRetentionDays)
	items, err := p.store.ListEvidenceOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	prunable := make([]pii.Prunable, len(items))
	for i, item := range items {
		prunable[i] = pii.Prunable{ID: item.ID, CreatedAt: item.CreatedAt}
	}
	ids := pii.PlanEvidencePrune(prunable, time.Now(), p.cfg.EvidenceRetentionDays)

	deleted := 0
	for _, id := range ids {
		if err := p.store.RemoveEvidence(ctx, id); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (p *Pruner) purgeAttachmentBlobs(ctx context.Context) (int, error) {
	retentionDays := p.cfg.EvidenceRetentionDays
	if retentionDays <= 0 {
		retentionDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	candidates, err := p.store.ListSoftDeletedAttachmentsForPurge(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	now := time.Now().UTC()
	for _, a := range candidates {
		if err := os.Remove(a.StoragePath); err != nil && !os.IsNotExist(err) {
			return purged, fmt.Errorf("remove blob %s: %w", a.StoragePath, err)
		}
		if err := p.store.MarkAttachmentBlobPurged(ctx, a.ID, now); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}

// Start starts the automatic sweep scheduler. Call this once during
// application startup.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the scheduler and waits for a running sweep to finish.
// Call this during graceful shutdown.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextSweep returns the time of the next scheduled sweep, or nil if the
// scheduler has not started.
func (p *Pruner) NextSweep() *time.Time {
	return p.scheduler.NextRun()
}
