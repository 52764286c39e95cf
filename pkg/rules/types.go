// Package rules implements the stateless decision-type rule engine:
// given a decision type and a submission, it returns an ordered list of
// rule results. No I/O, no time, no random — same input always yields the
// same output (spec.md §4.2).
package rules

// Severity is how serious a failed rule is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Result is the outcome of evaluating a single rule against a submission.
type Result struct {
	RuleID    string   `json:"rule_id"`
	Passed    bool     `json:"passed"`
	Severity  Severity `json:"severity"`
	Reason    string   `json:"reason"`
	FieldPath string   `json:"field_path"`
}

// Rule is a single stateless validator: given the form data of a
// submission, it reports whether the rule is satisfied.
type Rule struct {
	ID        string
	Severity  Severity
	FieldPath string // primary (canonical) dot-path, used for reporting
	// AliasKey, if set, names an entry in the hot-reloadable field alias
	// table (see overlay.go); the rule probes FieldPath followed by
	// whatever alias list is currently registered under this key.
	// Leave empty for rules with no aliases.
	AliasKey string
	// Check validates the value found at the first resolving field
	// name. found is false when none of FieldPath/Aliases resolved.
	Check func(value any, found bool) (passed bool, reason string)
}

// Pack is an ordered, named set of rules for one decision type.
type Pack struct {
	DecisionType string
	Version      string
	Rules        []Rule
}

// Evaluate runs every rule in p against formData's dot-path fields and
// returns one Result per rule, in pack order.
func (p Pack) Evaluate(formData map[string]any) []Result {
	results := make([]Result, 0, len(p.Rules))
	for _, rule := range p.Rules {
		candidates := []string{rule.FieldPath}
		if rule.AliasKey != "" {
			candidates = append(candidates, aliasesFor(rule.AliasKey)...)
		}
		value, found := resolveFirst(formData, candidates)
		passed, reason := rule.Check(value, found)
		results = append(results, Result{
			RuleID:    rule.ID,
			Passed:    passed,
			Severity:  rule.Severity,
			Reason:    reason,
			FieldPath: rule.FieldPath,
		})
	}
	return results
}

// packs holds the compiled-in rule packs, keyed by decision type. CSA and
// CSF aliases (e.g. "csf_practitioner" -> "csf") are resolved in
// PackFor.
var packs = map[string]Pack{}

func register(p Pack) {
	packs[p.DecisionType] = p
}

// PackFor resolves decisionType to its compiled rule pack. Unknown
// decision types return ok=false; callers should treat this as a
// BadRequest at the workflow layer.
func PackFor(decisionType string) (Pack, bool) {
	if p, ok := packs[decisionType]; ok {
		return p, true
	}
	if p, ok := packs[canonicalDecisionType(decisionType)]; ok {
		return p, true
	}
	return Pack{}, false
}

// canonicalDecisionType maps known decision-type aliases to the pack name
// they share rules with.
func canonicalDecisionType(decisionType string) string {
	switch decisionType {
	case "csf_practitioner":
		return "csf"
	default:
		return decisionType
	}
}
