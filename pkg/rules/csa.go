package rules

func init() {
	register(csaPack())
}

// csaPack is the CSA (controlled-substance authority) rule pack: 5 rules
// (spec.md §4.2 — name, license, address, state validity, ZIP format).
func csaPack() Pack {
	return Pack{
		DecisionType: "csa",
		Version:      "1",
		Rules: []Rule{
			{
				ID:       "name_present",
				Severity: SeverityCritical,
				FieldPath: "name",
				AliasKey:  "name",
				Check:     requirePresent("applicant name"),
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
				ID:       "zip_format",
				Severity: SeverityLow,
				FieldPath: "zip",
				AliasKey:  "zip",
				Check:     requireFormat("ZIP code", zipRe),
			},
		},
	}
}
