package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/autocomply/casework/pkg/actor"
	"github.com/autocomply/casework/pkg/domain"
	"github.com/autocomply/casework/pkg/intelligence"
	"github.com/autocomply/casework/pkg/store"
)

func newTestExporter(t *testing.T) (*Exporter, *store.Store, *intelligence.ChainStore) {
	t.Helper()
	dir := t.TempDir()

	s, err := store.New(&store.Config{Path: filepath.Join(dir, "casework.db"), WALMode: true, BusyTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	chain, err := intelligence.NewChainStore(&intelligence.ChainConfig{Path: filepath.Join(dir, "chain.db"), BusyTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewChainStore: %v", err)
	}
	t.Cleanup(func() { chain.Close() })

	x := New(s, chain, Config{SigningKey: "test-signing-key", EvidenceRetentionDays: 0, PayloadRetentionDays: 0})
	return x, s, chain
}

func seedExportableCase(t *testing.T, s *store.Store, chain *intelligence.ChainStore, caseID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	c := &domain.Case{
		ID: caseID, DecisionType: "csf", Title: "Jane Doe (csf)",
		Status: domain.CaseInReview, DueAt: now.Add(24 * time.Hour),
		PacketEvidenceIDs: []string{}, SearchableText: "jane doe csf",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateCase(ctx, c); err != nil {
		t.Fatalf("CreateCase: %v", err)
	}

	ev := &domain.CaseEvent{
		ID: "ev-1", CaseID: caseID, CreatedAt: now, EventType: domain.EventCaseCreated,
		ActorRole: domain.RoleSystem, Message: "case created",
	}
	if err := s.AppendEvent(ctx, ev); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	e := &domain.EvidenceItem{
		ID: "evid-1", CaseID: caseID, Title: "License scan", Snippet: "contact jane@example.com",
		CreatedAt: now,
	}
	if err := s.CreateEvidence(ctx, e); err != nil {
		t.Fatalf("CreateEvidence: %v", err)
	}

	entry := &domain.IntelligenceHistoryEntry{
		ID: "hist-1", CaseID: caseID, ComputedAt: now, ConfidenceScore: 87.5,
		ConfidenceBand: domain.BandHigh, RulesPassed: 7, RulesTotal: 8,
		Trigger: domain.TriggerSubmission, ActorRole: domain.RoleSystem,
		InputHash: "abc123", PayloadJSON: map[string]any{"decision": "approved"},
	}
	if err := chain.Append(ctx, entry); err != nil {
		t.Fatalf("chain.Append: %v", err)
	}
}

func TestExportProducesValidSignature(t *testing.T) {
	x, s, chain := newTestExporter(t)
	seedExportableCase(t, s, chain, "case-1")

	bundle, err := x.Export(context.Background(), "case-1", true, false, actor.Actor{Role: domain.RoleVerifier, ID: "v-1"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if bundle.Signature.Algorithm != "hmac-sha256" || bundle.Signature.Value == "" {
		t.Fatalf("bundle not signed: %+v", bundle.Signature)
	}
	if !x.Verify(bundle) {
		t.Error("expected Verify to accept a freshly signed bundle")
	}
}

func TestExportVerifyRejectsTamperedBundle(t *testing.T) {
	x, s, chain := newTestExporter(t)
	seedExportableCase(t, s, chain, "case-2")

	bundle, err := x.Export(context.Background(), "case-2", true, false, actor.Actor{Role: domain.RoleAdmin, ID: "a-1"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	bundle.Metadata.TotalEntries = 999
	if x.Verify(bundle) {
		t.Error("expected Verify to reject a bundle mutated after signing")
	}
}

func TestExportForcesVerifierToSafeMode(t *testing.T) {
	x, s, chain := newTestExporter(t)
	seedExportableCase(t, s, chain, "case-3")

	bundle, err := x.Export(context.Background(), "case-3", true, true, actor.Actor{Role: domain.RoleVerifier, ID: "v-1"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if bundle.ExportMetadata.RedactionMode != "safe" {
		t.Errorf("verifier requesting full mode should be forced to safe, got %v", bundle.ExportMetadata.RedactionMode)
	}
}

func TestExportAdminCanRequestFullMode(t *testing.T) {
	x, s, chain := newTestExporter(t)
	seedExportableCase(t, s, chain, "case-4")

	bundle, err := x.Export(context.Background(), "case-4", true, true, actor.Actor{Role: domain.RoleAdmin, ID: "a-1"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if bundle.ExportMetadata.RedactionMode != "full" {
		t.Errorf("admin requesting full mode should get full, got %v", bundle.ExportMetadata.RedactionMode)
	}
}

func TestExportRedactsEvidencePII(t *testing.T) {
	x, s, chain := newTestExporter(t)
	seedExportableCase(t, s, chain, "case-5")

	bundle, err := x.Export(context.Background(), "case-5", true, false, actor.Actor{Role: domain.RoleVerifier, ID: "v-1"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if bundle.ExportMetadata.RedactedFieldsCount == 0 {
		t.Error("expected at least one redacted field for the embedded email address")
	}
}

func TestExportIncludesIntegrityCheck(t *testing.T) {
	x, s, chain := newTestExporter(t)
	seedExportableCase(t, s, chain, "case-6")

	bundle, err := x.Export(context.Background(), "case-6", true, false, actor.Actor{Role: domain.RoleAdmin, ID: "a-1"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bundle.IntegrityCheck.IsValid {
		t.Errorf("expected a single well-formed history entry to verify as valid: %+v", bundle.IntegrityCheck)
	}
	if bundle.IntegrityCheck.TotalEntries != 1 {
		t.Errorf("total_entries = %d, want 1", bundle.IntegrityCheck.TotalEntries)
	}
}

func TestExportOmitsPayloadWhenNotRequested(t *testing.T) {
	x, s, chain := newTestExporter(t)
	seedExportableCase(t, s, chain, "case-7")

	bundle, err := x.Export(context.Background(), "case-7", false, false, actor.Actor{Role: domain.RoleAdmin, ID: "a-1"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(bundle.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(bundle.History))
	}
	if bundle.History[0].PayloadJSON != nil {
		t.Error("expected payload_json to be stripped when include_payload is false")
	}
}
