package intelligence

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/autocomply/casework/pkg/domain"
	"github.com/autocomply/casework/pkg/integrity"
	"github.com/autocomply/casework/pkg/rules"
	"github.com/autocomply/casework/pkg/store"
	"github.com/autocomply/casework/pkg/telemetry/metrics"
)

// caseStore is the subset of *store.Store the Repository needs, so tests
// can substitute a fake without pulling in the full sqlite store.
type caseStore interface {
	GetCase(ctx context.Context, id string) (*domain.Case, error)
	GetSubmission(ctx context.Context, id string) (*domain.Submission, error)
	ListEvidence(ctx context.Context, caseID string) ([]*domain.EvidenceItem, error)
	AppendEvent(ctx context.Context, ev *domain.CaseEvent) error
}

var _ caseStore = (*store.Store)(nil)

// RulePackVersion is a package-level rule pack version string. Compute
// does not read it: canonical hashing (spec.md §4.4) is fed the evaluated
// pack's own Version field.
const RulePackVersion = "1"

// throttleWindow is the minimum spacing between two history writes for
// the same case (spec.md §4.3): a recompute inside this window returns
// the existing latest entry unchanged instead of writing a new one.
const throttleWindow = 2 * time.Second

// Repository is the Intelligence Repository of spec.md §4.3.
type Repository struct {
	store   caseStore
	chain   *ChainStore
	metrics *metrics.Collector
}

// NewRepository constructs a Repository over the primary store and the
// intelligence chain store.
func NewRepository(s *store.Store, chain *ChainStore) *Repository {
	return &Repository{store: s, chain: chain}
}

// SetMetrics attaches a metrics collector. It is optional; a Repository
// with no collector attached records nothing.
func (r *Repository) SetMetrics(m *metrics.Collector) {
	r.metrics = m
}

// Compute runs the full Intelligence Repository algorithm for caseID and
// returns the resulting history entry. wasThrottled is true when the
// 2-second internal throttle caused this call to return the existing
// latest entry instead of computing a new one.
func (r *Repository) Compute(ctx context.Context, caseID string, trigger domain.RecomputeTrigger, actor domain.ActorRole) (entry *domain.IntelligenceHistoryEntry, wasThrottled bool, err error) {
	latest, err := r.chain.Latest(ctx, caseID)
	if err != nil {
		return nil, false, err
	}
	if latest != nil && time.Since(latest.ComputedAt) < throttleWindow {
		r.metrics.RecordRecomputeThrottled(string(trigger), "repository")
		return latest, true, nil
	}

	c, err := r.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, false, err
	}

	var formData map[string]any
	if c.SubmissionID != "" {
		sub, err := r.store.GetSubmission(ctx, c.SubmissionID)
		if err != nil {
			return nil, false, err
		}
		formData = sub.FormData
	}

	pack, ok := rules.PackFor(c.DecisionType)
	if !ok {
		return nil, false, domain.BadRequest("no rule pack registered for decision type " + c.DecisionType)
	}
	evalStart := time.Now()
	results := pack.Evaluate(formData)

	passed, total, gapCount, biasCount := tally(results)
	evalResult := "pass"
	if gapCount > 0 {
		evalResult = "fail"
	} else if biasCount > 0 {
		evalResult = "warn"
	}
	r.metrics.RecordRuleEvaluation(c.DecisionType, evalResult, time.Since(evalStart))
	score := confidenceScore(passed, total)
	band := domain.BandFor(score)

	evidenceItems, err := r.store.ListEvidence(ctx, caseID)
	if err != nil {
		return nil, false, err
	}
	summaries := evidenceSummaries(evidenceItems)

	inputHash := integrity.InputHash(integrity.CanonicalizationInput{
		FormData:          formData,
		EvidenceSummaries: summaries,
		RulePackVersion:   pack.Version,
	})

	previousRunID := ""
	if latest != nil {
		previousRunID = latest.ID
	}

	now := time.Now().UTC()
	newEntry := &domain.IntelligenceHistoryEntry{
		ID:              uuid.New().String(),
		CaseID:          caseID,
		ComputedAt:      now,
		ConfidenceScore: score,
		ConfidenceBand:  band,
		RulesPassed:     passed,
		RulesTotal:      total,
		GapCount:        gapCount,
		BiasCount:       biasCount,
		Trigger:         trigger,
		ActorRole:       actor,
		InputHash:       inputHash,
		PreviousRunID:   previousRunID,
		PayloadJSON: map[string]any{
			"decision_type": c.DecisionType,
			"rule_results":  results,
		},
	}

	if err := r.chain.Append(ctx, newEntry); err != nil {
		return nil, false, err
	}

	ev := &domain.CaseEvent{
		ID:        uuid.New().String(),
		CaseID:    caseID,
		CreatedAt: now,
		EventType: domain.EventDecisionIntelligenceUpdated,
		ActorRole: actor,
		Message:   "decision intelligence recomputed",
		PayloadJSON: map[string]any{
			"confidence_score": score,
			"confidence_band":  string(band),
			"trigger":          string(trigger),
		},
	}
	if err := r.store.AppendEvent(ctx, ev); err != nil {
		return nil, false, err
	}

	return newEntry, false, nil
}

// confidenceScore computes the floored, rounded confidence score
// (spec.md §4.3 step 3).
func confidenceScore(passed, total int) float64 {
	if total == 0 {
		return domain.ConfidenceFloor
	}
	raw := (float64(passed) / float64(total)) * 100
	if raw < domain.ConfidenceFloor {
		raw = domain.ConfidenceFloor
	}
	return math.Round(raw*100) / 100
}

// tally counts passed/total rules and buckets failures into gaps
// (critical-severity failures — required information missing entirely)
// and bias flags (medium-severity failures — present but inconsistent or
// questionable information). Low-severity failures are tracked in
// rule_results but counted toward neither bucket.
func tally(results []rules.Result) (passed, total, gapCount, biasCount int) {
	total = len(results)
	for _, res := range results {
		if res.Passed {
			passed++
			continue
		}
		switch res.Severity {
		case rules.SeverityCritical:
			gapCount++
		case rules.SeverityMedium:
			biasCount++
		}
	}
	return
}

func evidenceSummaries(items []*domain.EvidenceItem) []string {
	summaries := make([]string, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, item.Title+": "+item.Snippet)
	}
	return summaries
}
