// Package integrity implements the three primitives of spec.md §4.4:
// canonical input hashing, history chain verification, and duplicate
// analysis. None of it touches the store directly — it operates on
// already-loaded domain.IntelligenceHistoryEntry slices so it stays a pure
// function of its inputs, same as the rule engine.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// CanonicalizationInput is the set of fields that feed input_hash
// (spec.md §4.4): form_data, evidence_summaries, and the rule pack
// version. Volatile fields — computed_at, generated IDs, actor identity —
// are deliberately excluded.
type CanonicalizationInput struct {
	FormData          map[string]any `json:"form_data"`
	EvidenceSummaries []string       `json:"evidence_summaries"`
	RulePackVersion    string         `json:"rule_pack_version"`
}

// InputHash serializes in with recursively sorted keys and minimal
// separators, then returns the hex-encoded SHA-256 digest of the UTF-8
// bytes. Equal inputs always produce equal hashes regardless of map key
// iteration order (spec.md §8 property 2).
func InputHash(in CanonicalizationInput) string {
	canonical := canonicalize(map[string]any{
		"form_data":          in.FormData,
		"evidence_summaries": stringSliceToAny(in.EvidenceSummaries),
		"rule_pack_version":  in.RulePackVersion,
	})
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// canonicalize produces deterministic JSON bytes for v: object keys are
// sorted recursively and separators are minimized ("," and ":", no
// whitespace), matching spec.md §4.4 / §6.5.
func canonicalize(v any) []byte {
	return marshalCanonical(v)
}

func marshalCanonical(v any) []byte {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				out = append(out, ',')
			}
			keyBytes, _ := json.Marshal(k)
			out = append(out, keyBytes...)
			out = append(out, ':')
			out = append(out, marshalCanonical(val[k])...)
		}
		out = append(out, '}')
		return out

	case []any:
		out := []byte{'['}
		for i, elem := range val {
			if i > 0 {
				out = append(out, ',')
			}
			out = append(out, marshalCanonical(elem)...)
		}
		out = append(out, ']')
		return out

	default:
		b, err := json.Marshal(val)
		if err != nil {
			b, _ = json.Marshal(nil)
		}
		return b
	}
}

func stringSliceToAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// CanonicalJSON is exported for the audit export bundle (spec.md §6.5):
// it canonicalizes an arbitrary JSON-shaped value the same way InputHash
// does, for HMAC signing over the whole bundle minus its signature field.
func CanonicalJSON(v any) ([]byte, error) {
	// Round-trip through encoding/json first so that arbitrary Go
	// structs (not just map[string]any) get canonicalized consistently:
	// marshal to get a plain JSON representation, unmarshal into
	// interface{}, then recanonicalize with sorted keys.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return marshalCanonical(generic), nil
}
