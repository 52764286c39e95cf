package pii

import "sort"

// Mode is a redaction mode (spec.md §4.5).
type Mode string

const (
	// ModeSafe redacts detected values, replacing them with Sentinel;
	// mandatory for verifier-role exports.
	ModeSafe Mode = "safe"
	// ModeFull performs no value redaction but still reports stats;
	// allowed only for admin/devsupport.
	ModeFull Mode = "full"
)

// Sentinel replaces a detected PII value in safe mode.
const Sentinel = "[REDACTED]"

// Report is the deterministic output of a redaction pass (spec.md §4.5).
type Report struct {
	Mode                 Mode           `json:"mode"`
	FindingsCount        int            `json:"findings_count"`
	RedactedFieldsCount  int            `json:"redacted_fields_count"`
	RedactedFieldsSample []string       `json:"redacted_fields_sample"`
	RulesTriggered       map[Rule]int   `json:"rules_triggered"`
	RetentionApplied     bool           `json:"retention_applied"`
	RetentionStats       RetentionStats `json:"retention_stats"`
	PIIFindingsSample    []Finding      `json:"pii_findings_sample,omitempty"`
}

// maxSample bounds the sample slices embedded in a Report so exports stay
// a bounded size regardless of how much PII a case accumulates.
const maxSample = 20

// Redact does not scan v itself; for ModeSafe it replaces every string
// value at a path named in findings
// in-place (returning a deep-copied, redacted value); for ModeFull it
// leaves v untouched. Either way it returns a deterministic Report.
// findings is assumed to be Scan(v)'s output so callers that already
// scanned don't pay for it twice.
func Redact(v any, findings []Finding, mode Mode) (redacted any, report Report) {
	report = Report{
		Mode:           mode,
		FindingsCount:  len(findings),
		RulesTriggered: map[Rule]int{},
	}

	fieldSet := map[string]bool{}
	for _, f := range findings {
		report.RulesTriggered[f.Rule]++
		fieldSet[f.Path] = true
	}

	fields := make([]string, 0, len(fieldSet))
	for f := range fieldSet {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	report.RedactedFieldsCount = len(fields)
	if len(fields) > maxSample {
		report.RedactedFieldsSample = fields[:maxSample]
	} else {
		report.RedactedFieldsSample = fields
	}

	sampleFindings := findings
	if len(sampleFindings) > maxSample {
		sampleFindings = sampleFindings[:maxSample]
	}
	report.PIIFindingsSample = sampleFindings

	if mode == ModeFull {
		return v, report
	}
	return redactValue("$", v, fieldSet), report
}

// redactValue deep-copies v, replacing any value whose path is in
// flaggedPaths with Sentinel.
func redactValue(path string, v any, flaggedPaths map[string]bool) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			childPath := path + "." + k
			out[k] = redactValue(childPath, child, flaggedPaths)
		}
		return out

	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = redactValue(pathIndex(path, i), child, flaggedPaths)
		}
		return out

	case string:
		if flaggedPaths[path] {
			return Sentinel
		}
		return val

	default:
		return val
	}
}

func pathIndex(path string, i int) string {
	return path + "[" + itoa(i) + "]"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// EffectiveMode determines the redaction mode a role is allowed, given a
// request's requestFull flag (spec.md §4.8 step 4):
//   - verifier is forced into ModeSafe regardless of the request.
//   - admin/devsupport honor the request, defaulting to ModeFull if
//     requestFull is set, otherwise ModeSafe.
func EffectiveMode(canRedactFull bool, requestFull bool) Mode {
	if !canRedactFull {
		return ModeSafe
	}
	if requestFull {
		return ModeFull
	}
	return ModeSafe
}
