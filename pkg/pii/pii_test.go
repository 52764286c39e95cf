package pii

import (
	"testing"
	"time"
)

func TestScanDetectsValuePatterns(t *testing.T) {
	doc := map[string]any{
		"contact": map[string]any{
			"email": "applicant@example.com",
			"notes": "SSN on file: 123-45-6789",
		},
	}
	findings := Scan(doc)
	if len(findings) < 2 {
		t.Fatalf("expected at least 2 findings, got %d: %+v", len(findings), findings)
	}

	var sawEmail, sawSSN bool
	for _, f := range findings {
		if f.Rule == RuleEmail {
			sawEmail = true
		}
		if f.Rule == RuleSSN {
			sawSSN = true
		}
	}
	if !sawEmail || !sawSSN {
		t.Errorf("expected email and ssn findings, got %+v", findings)
	}
}

func TestScanDetectsSensitiveFieldName(t *testing.T) {
	doc := map[string]any{"mrn": "A1234", "unrelated": "x"}
	findings := Scan(doc)
	var found bool
	for _, f := range findings {
		if f.Rule == RuleSensitiveFieldName && f.FieldName == "mrn" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected sensitive_field_name finding for mrn, got %+v", findings)
	}
}

func TestScanIsOrderDeterministic(t *testing.T) {
	doc := map[string]any{
		"z": "applicant@example.com",
		"a": "other@example.com",
		"m": map[string]any{"dea": "DEA-123456789"},
	}
	f1 := Scan(doc)
	f2 := Scan(doc)
	if len(f1) != len(f2) {
		t.Fatalf("finding counts differ: %d vs %d", len(f1), len(f2))
	}
	for i := range f1 {
		if f1[i].Path != f2[i].Path || f1[i].Rule != f2[i].Rule {
			t.Errorf("scan order not deterministic at index %d: %+v vs %+v", i, f1[i], f2[i])
		}
	}
}

func TestRedactSafeModeMasksValues(t *testing.T) {
	doc := map[string]any{"email": "applicant@example.com", "note": "plain text"}
	findings := Scan(doc)
	redacted, report := Redact(doc, findings, ModeSafe)

	out, ok := redacted.(map[string]any)
	if !ok {
		t.Fatalf("expected redacted to be a map, got %T", redacted)
	}
	if out["email"] != Sentinel {
		t.Errorf("email = %v, want sentinel", out["email"])
	}
	if out["note"] != "plain text" {
		t.Errorf("unrelated field mutated: %v", out["note"])
	}
	if report.Mode != ModeSafe {
		t.Errorf("report mode = %v, want safe", report.Mode)
	}
	if report.FindingsCount != len(findings) {
		t.Errorf("findings_count = %d, want %d", report.FindingsCount, len(findings))
	}
}

func TestRedactFullModeLeavesValuesIntact(t *testing.T) {
	doc := map[string]any{"email": "applicant@example.com"}
	findings := Scan(doc)
	redacted, report := Redact(doc, findings, ModeFull)

	out := redacted.(map[string]any)
	if out["email"] != "applicant@example.com" {
		t.Errorf("full mode mutated value: %v", out["email"])
	}
	if report.Mode != ModeFull {
		t.Errorf("report mode = %v, want full", report.Mode)
	}
	if report.FindingsCount != len(findings) {
		t.Errorf("findings_count = %d, want %d", report.FindingsCount, len(findings))
	}
}

func TestRedactIsDeterministic(t *testing.T) {
	doc := map[string]any{
		"b": "bbb@example.com",
		"a": "aaa@example.com",
		"c": map[string]any{"ssn": "123-45-6789"},
	}
	findings := Scan(doc)
	_, r1 := Redact(doc, findings, ModeSafe)
	_, r2 := Redact(doc, findings, ModeSafe)

	if r1.RedactedFieldsCount != r2.RedactedFieldsCount {
		t.Fatalf("redacted field counts differ: %d vs %d", r1.RedactedFieldsCount, r2.RedactedFieldsCount)
	}
	for i := range r1.RedactedFieldsSample {
		if r1.RedactedFieldsSample[i] != r2.RedactedFieldsSample[i] {
			t.Errorf("sample order differs at %d: %s vs %s", i, r1.RedactedFieldsSample[i], r2.RedactedFieldsSample[i])
		}
	}
}

func TestEffectiveMode(t *testing.T) {
	if got := EffectiveMode(false, true); got != ModeSafe {
		t.Errorf("verifier requesting full = %v, want safe", got)
	}
	if got := EffectiveMode(true, true); got != ModeFull {
		t.Errorf("admin requesting full = %v, want full", got)
	}
	if got := EffectiveMode(true, false); got != ModeSafe {
		t.Errorf("admin not requesting full = %v, want safe", got)
	}
}

func TestPlanEvidencePrune(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	items := []Prunable{
		{ID: "old", CreatedAt: now.AddDate(0, 0, -100)},
		{ID: "new", CreatedAt: now.AddDate(0, 0, -1)},
	}
	ids := PlanEvidencePrune(items, now, 90)
	if len(ids) != 1 || ids[0] != "old" {
		t.Errorf("plan = %v, want [old]", ids)
	}
}

func TestPlanEvidencePruneDisabled(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	items := []Prunable{{ID: "old", CreatedAt: now.AddDate(0, 0, -1000)}}
	if ids := PlanEvidencePrune(items, now, 0); ids != nil {
		t.Errorf("expected no-op when retention disabled, got %v", ids)
	}
}

func TestPlanHistoryPayloadBlank(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	items := []Prunable{
		{ID: "e0", CreatedAt: now.AddDate(0, -13, 0)},
		{ID: "e1", CreatedAt: now.AddDate(0, -1, 0)},
	}
	ids := PlanHistoryPayloadBlank(items, now, 365)
	if len(ids) != 1 || ids[0] != "e0" {
		t.Errorf("plan = %v, want [e0]", ids)
	}
}
