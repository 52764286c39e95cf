// Package audit implements Audit Export + Signing (spec.md §4.8):
// assembling a case's full snapshot and decision history into a single
// redacted, integrity-checked, HMAC-signed bundle.
package audit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/autocomply/casework/pkg/actor"
	"github.com/autocomply/casework/pkg/domain"
	"github.com/autocomply/casework/pkg/integrity"
	"github.com/autocomply/casework/pkg/intelligence"
	"github.com/autocomply/casework/pkg/pii"
	"github.com/autocomply/casework/pkg/store"
	"github.com/autocomply/casework/pkg/telemetry/metrics"
)

// FormatVersion is stamped into every bundle's metadata.
const FormatVersion = "1"

// maxExportEvents bounds the timeline an export bundle carries; a case
// with more events than this is expected to be exceptional, not the norm.
const maxExportEvents = 10000

// Exporter assembles and signs export bundles.
type Exporter struct {
	store             *store.Store
	chain             *intelligence.ChainStore
	signingKey        []byte
	evidenceRetention int
	payloadRetention  int
	metrics           *metrics.Collector
}

// Config configures an Exporter.
type Config struct {
	SigningKey            string
	EvidenceRetentionDays int
	PayloadRetentionDays  int
}

// New constructs an Exporter.
func New(s *store.Store, chain *intelligence.ChainStore, cfg Config) *Exporter {
	return &Exporter{
		store:             s,
		chain:             chain,
		signingKey:        []byte(cfg.SigningKey),
		evidenceRetention: cfg.EvidenceRetentionDays,
		payloadRetention:  cfg.PayloadRetentionDays,
	}
}

// SetMetrics attaches a metrics collector. It is optional; an Exporter
// with no collector attached records nothing.
func (x *Exporter) SetMetrics(m *metrics.Collector) {
	x.metrics = m
}

// Metadata is the bundle's top-level metadata block.
type Metadata struct {
	CaseID          string `json:"case_id"`
	ExportTimestamp string `json:"export_timestamp"`
	TotalEntries    int    `json:"total_entries"`
	IncludePayload  bool   `json:"include_payload"`
	FormatVersion   string `json:"format_version"`
}

// CaseSnapshot is the case plus its evidence, events, and attachment
// metadata, as of export time.
type CaseSnapshot struct {
	Case        *domain.Case            `json:"case"`
	Evidence    []*domain.EvidenceItem  `json:"evidence"`
	Events      []*domain.CaseEvent     `json:"events"`
	Attachments []*domain.Attachment    `json:"attachments"`
}

// ExportMetadata carries the redaction report alongside the mode applied.
type ExportMetadata struct {
	RedactionMode        pii.Mode       `json:"redaction_mode"`
	RedactedFieldsCount  int            `json:"redacted_fields_count"`
	RetentionPolicy      RetentionPolicy `json:"retention_policy"`
	RedactionReport      pii.Report     `json:"redaction_report"`
}

// RetentionPolicy documents the configured retention windows applied
// before this export was assembled.
type RetentionPolicy struct {
	EvidenceRetentionDays int `json:"evidence_retention_days"`
	PayloadRetentionDays  int `json:"payload_retention_days"`
}

// Signature is the bundle's trailing HMAC block.
type Signature struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"value"`
}

// Bundle is the full export document of spec.md §4.8. Case carries the
// redacted snapshot as a generic JSON value (the shape of CaseSnapshot,
// but round-tripped through encoding/json so the PII scanner/redactor —
// which only traverses map[string]any/[]any/string — can walk it).
type Bundle struct {
	Metadata          Metadata                         `json:"metadata"`
	IntegrityCheck    integrity.Report                 `json:"integrity_check"`
	DuplicateAnalysis integrity.DuplicateAnalysis       `json:"duplicate_analysis"`
	History           []domain.IntelligenceHistoryEntry `json:"history"`
	Case              any                               `json:"case"`
	ExportMetadata    ExportMetadata                    `json:"export_metadata"`
	Signature         Signature                         `json:"signature"`
}

// Export runs the full steps of spec.md §4.8 and returns a signed bundle.
func (x *Exporter) Export(ctx context.Context, caseID string, includePayload bool, requestFull bool, act actor.Actor) (*Bundle, error) {
	start := time.Now()
	c, err := x.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	evidence, err := x.store.ListEvidence(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if x.evidenceRetention > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -x.evidenceRetention)
		kept := evidence[:0]
		for _, e := range evidence {
			if !e.CreatedAt.Before(cutoff) {
				kept = append(kept, e)
			}
		}
		evidence = kept
	}
	events, err := x.store.ListEvents(ctx, caseID, maxExportEvents)
	if err != nil {
		return nil, err
	}
	attachments, err := x.store.ListAttachments(ctx, caseID)
	if err != nil {
		return nil, err
	}
	history, err := x.chain.History(ctx, caseID)
	if err != nil {
		return nil, err
	}

	history = applyPayloadRetention(history, x.payloadRetention, time.Now().UTC())

	integrityCheck := integrity.VerifyChain(history)
	if !integrityCheck.IsValid {
		reason := "broken_link"
		if len(integrityCheck.BrokenLinks) == 0 && len(integrityCheck.OrphanedEntries) > 0 {
			reason = "orphaned_entry"
		}
		x.metrics.RecordVerifyFailure(reason)
	}
	duplicateAnalysis := integrity.AnalyzeDuplicates(history)

	mode := pii.EffectiveMode(act.CanRedactFull(), requestFull)

	if !includePayload {
		for i := range history {
			history[i].PayloadJSON = nil
		}
	}

	snapshot := CaseSnapshot{Case: c, Evidence: evidence, Events: events, Attachments: attachments}
	genericSnapshot, err := toGeneric(snapshot)
	if err != nil {
		return nil, domain.Internal("encode case snapshot for redaction", err)
	}

	findings := pii.Scan(genericSnapshot)
	redactedSnapshot, report := pii.Redact(genericSnapshot, findings, mode)

	bundle := &Bundle{
		Metadata: Metadata{
			CaseID: caseID, ExportTimestamp: time.Now().UTC().Format(time.RFC3339),
			TotalEntries: len(history), IncludePayload: includePayload, FormatVersion: FormatVersion,
		},
		IntegrityCheck:    integrityCheck,
		DuplicateAnalysis: duplicateAnalysis,
		History:           history,
		Case:              redactedSnapshot,
		ExportMetadata: ExportMetadata{
			RedactionMode:       mode,
			RedactedFieldsCount: report.RedactedFieldsCount,
			RetentionPolicy: RetentionPolicy{
				EvidenceRetentionDays: x.evidenceRetention,
				PayloadRetentionDays:  x.payloadRetention,
			},
			RedactionReport: report,
		},
	}

	sig, err := x.sign(bundle)
	if err != nil {
		return nil, domain.Internal("sign export bundle", err)
	}
	bundle.Signature = sig
	x.metrics.RecordExport(string(mode), time.Since(start))
	return bundle, nil
}

// sign canonicalizes bundle with an empty Signature field and returns the
// HMAC-SHA256 over the resulting bytes (spec.md §4.8 step 6).
func (x *Exporter) sign(bundle *Bundle) (Signature, error) {
	unsigned := *bundle
	unsigned.Signature = Signature{}

	canonical, err := integrity.CanonicalJSON(unsigned)
	if err != nil {
		return Signature{}, err
	}

	mac := hmac.New(sha256.New, x.signingKey)
	mac.Write(canonical)
	return Signature{Algorithm: "hmac-sha256", Value: hex.EncodeToString(mac.Sum(nil))}, nil
}

// Verify recomputes the HMAC over bundle minus its signature and compares
// it to the carried value, then checks integrity_check.is_valid — the
// consumer-side verification procedure of spec.md §4.8.
func (x *Exporter) Verify(bundle *Bundle) bool {
	want, err := x.sign(bundle)
	if err != nil {
		return false
	}
	if !hmac.Equal([]byte(want.Value), []byte(bundle.Signature.Value)) {
		return false
	}
	return bundle.IntegrityCheck.IsValid
}

// toGeneric round-trips v through encoding/json so the PII scanner and
// redactor, which only walk map[string]any/[]any/string, can traverse a
// typed Go value the same way they traverse a decoded JSON request body.
func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

// applyPayloadRetention blanks PayloadJSON on history entries older than
// the configured retention window (spec.md §4.5), using
// pii.PlanHistoryPayloadBlank to decide which entries qualify.
func applyPayloadRetention(history []domain.IntelligenceHistoryEntry, retentionDays int, now time.Time) []domain.IntelligenceHistoryEntry {
	if retentionDays <= 0 {
		return history
	}
	items := make([]pii.Prunable, len(history))
	for i, e := range history {
		items[i] = pii.Prunable{ID: e.ID, CreatedAt: e.ComputedAt}
	}
	blank := make(map[string]bool)
	for _, id := range pii.PlanHistoryPayloadBlank(items, now, retentionDays) {
		blank[id] = true
	}
	for i := range history {
		if blank[history[i].ID] {
			history[i].PayloadJSON = nil
		}
	}
	return history
}
