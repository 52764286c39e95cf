// Package pii implements the scanner, redaction modes, and retention
// helpers of spec.md §4.5: it traverses an arbitrary JSON value, reports
// findings with JSONPath-style locations, and produces a deterministic
// redaction report.
package pii

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rule names one PII detection source (spec.md §4.5 table).
type Rule string

const (
	RuleEmail              Rule = "email"
	RulePhone              Rule = "phone"
	RuleSSN                Rule = "ssn"
	RuleDEA                Rule = "dea"
	RuleLicense            Rule = "license"
	RuleZip                Rule = "zip"
	RuleSensitiveFieldName Rule = "sensitive_field_name"
)

var patterns = map[Rule]*regexp.Regexp{
	RuleEmail:   regexp.MustCompile(`[^\s@]+@[^\s@]+\.[^\s@]+`),
	RulePhone:   regexp.MustCompile(`\d{3}[-.\s]\d{3,4}(?:[-.\s]\d{4})?|\d{7}|\d{10}`),
	RuleSSN:     regexp.MustCompile(`\d{3}-\d{2}-\d{4}`),
	RuleDEA:     regexp.MustCompile(`(?i)dea-\d{9,}`),
	RuleLicense: regexp.MustCompile(`(?i)lic(?:ense)?-\d+`),
	RuleZip:     regexp.MustCompile(`\b\d{5}(-\d{4})?\b`),
}

// sensitiveFieldNames is the 40-entry reserved key-name list that flags
// RuleSensitiveFieldName regardless of the value's content.
var sensitiveFieldNames = map[string]bool{
	"patient_name": true, "patientname": true, "dob": true, "date_of_birth": true,
	"mrn": true, "medical_record_number": true, "ssn": true, "social_security_number": true,
	"passport_number": true, "passport": true, "drivers_license": true, "driver_license": true,
	"credit_card": true, "card_number": true, "cvv": true, "bank_account": true,
	"routing_number": true, "tax_id": true, "ein": true, "home_address": true,
	"mailing_address": true, "personal_email": true, "personal_phone": true, "emergency_contact": true,
	"next_of_kin": true, "maiden_name": true, "mothers_maiden_name": true, "biometric_id": true,
	"fingerprint": true, "health_plan_id": true, "insurance_id": true, "diagnosis": true,
	"prescription": true, "medication": true, "allergy": true, "blood_type": true,
	"genetic_data": true, "disability_status": true, "immigration_status": true, "salary": true,
}

// Finding is one detected PII occurrence.
type Finding struct {
	Path          string  `json:"path"` // JSONPath-style, e.g. "$.history[0].payload.patient.email"
	FieldName     string  `json:"field_name"`
	Rule          Rule    `json:"rule"`
	ValuePreview  string  `json:"value_preview"`
	Confidence    float64 `json:"confidence"`
}

// Scan recursively traverses v, returning findings in a deterministic
// order: keys are sorted before descent at every level so that findings
// ordering (and downstream hashing) is stable regardless of map
// iteration order (spec.md §9 "Redaction determinism").
func Scan(v any) []Finding {
	var findings []Finding
	scanValue("$", "", v, &findings)
	return findings
}

func scanValue(path, fieldName string, v any, findings *[]Finding) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			childPath := fmt.Sprintf("%s.%s", path, k)
			if sensitiveFieldNames[strings.ToLower(k)] {
				*findings = append(*findings, Finding{
					Path:         childPath,
					FieldName:    k,
					Rule:         RuleSensitiveFieldName,
					ValuePreview: preview(val[k]),
					Confidence:   0.9,
				})
			}
			scanValue(childPath, k, val[k], findings)
		}

	case []any:
		for i, elem := range val {
			scanValue(fmt.Sprintf("%s[%d]", path, i), fieldName, elem, findings)
		}

	case string:
		for _, rule := range orderedValueRules() {
			if patterns[rule].MatchString(val) {
				*findings = append(*findings, Finding{
					Path:         path,
					FieldName:    fieldName,
					Rule:         rule,
					ValuePreview: preview(val),
					Confidence:   0.75,
				})
			}
		}
	}
}

// orderedValueRules fixes evaluation order for the value-pattern rules so
// multiple matches on one string are reported deterministically.
func orderedValueRules() []Rule {
	return []Rule{RuleEmail, RuleSSN, RuleDEA, RuleLicense, RulePhone, RuleZip}
}

// preview returns a short, safe-to-log preview of a matched value.
func preview(v any) string {
	s := fmt.Sprintf("%v", v)
	const maxLen = 24
	if len(s) > maxLen {
		return s[:maxLen] + "…"
	}
	return s
}
