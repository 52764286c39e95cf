package rules

import (
	"fmt"
	"regexp"
)

func init() {
	register(csfPack())
}

var (
	zipRe   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// csfPack is the CSF (controlled-substance form practitioner) rule pack:
// 8 rules — name, license, address, state validity, specialty,
// experience, ZIP format, email format (spec.md §4.2).
func csfPack() Pack {
	return Pack{
		DecisionType: "csf",
		Version:      "1",
		Rules: []Rule{
			{
				ID:       "name_present",
				Severity: SeverityCritical,
				FieldPath: "name",
				AliasKey:  "name",
				Check:     requirePresent("practitioner name"),
			},
			{
				ID:       "license_present",
				Severity: SeverityCritical,
				FieldPath: "license",
				AliasKey:  "license",
				Check:     requirePresent("license number"),
			},
			{
				ID:       "address_present",
				Severity: SeverityMedium,
				FieldPath: "address",
				AliasKey:  "address",
				Check:     requirePresent("address"),
			},
			{
				ID:       "state_valid",
				Severity: SeverityCritical,
				FieldPath: "state",
				AliasKey:  "state",
				Check:     requireValidState(),
			},
			{
				ID:       "specialty_present",
				Severity: SeverityMedium,
				FieldPath: "specialty",
				AliasKey:  "specialty",
				Check:     requirePresent("specialty"),
			},
			{
				ID:       "experience_present",
				Severity: SeverityLow,
				FieldPath: "experience",
				AliasKey:  "experience",
				Check:     requirePresent("experience"),
			},
			{
				ID:       "zip_format",
				Severity: SeverityLow,
				FieldPath: "zip",
				AliasKey:  "zip",
				Check:     requireFormat("ZIP code", zipRe),
			},
			{
				ID:       "email_format",
				Severity: SeverityMedium,
				FieldPath: "email",
				AliasKey:  "email",
				Check:     requireFormat("email address", emailRe),
			},
		},
	}
}

// requirePresent builds a Check that passes if the field resolved to a
// non-empty string.
func requirePresent(label string) func(any, bool) (bool, string) {
	return func(value any, found bool) (bool, string) {
		if !found {
			return false, fmt.Sprintf("%s is missing", label)
		}
		if _, ok := asNonEmptyString(value); !ok {
			return false, fmt.Sprintf("%s is empty", label)
		}
		return true, fmt.Sprintf("%s present", label)
	}
}

// requireFormat builds a Check that passes if the field resolved to a
// non-empty string matching re.
func requireFormat(label string, re *regexp.Regexp) func(any, bool) (bool, string) {
	return func(value any, found bool) (bool, string) {
		if !found {
			return false, fmt.Sprintf("%s is missing", label)
		}
		s, ok := asNonEmptyString(value)
		if !ok {
			return false, fmt.Sprintf("%s is empty", label)
		}
		if !re.MatchString(s) {
			return false, fmt.Sprintf("%s has invalid format", label)
		}
		return true, fmt.Sprintf("%s format valid", label)
	}
}

// requireValidState builds a Check that passes if the field resolved to
// one of the 51 recognized state codes.
func requireValidState() func(any, bool) (bool, string) {
	return func(value any, found bool) (bool, string) {
		if !found {
			return false, "state is missing"
		}
		s, ok := asNonEmptyString(value)
		if !ok {
			return false, "state is empty"
		}
		if !IsValidStateCode(s) {
			return false, fmt.Sprintf("%q is not a recognized state code", s)
		}
		return true, "state code valid"
	}
}
