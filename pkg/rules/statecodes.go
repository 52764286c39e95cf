package rules

import "strings"

// validStateCodes is the fixed 51-code set (50 states + D.C.) the
// state_valid rules check against (spec.md §4.2). This is the data table
// OverlayWatcher may replace wholesale from a hot-reloaded overlay file;
// the rule logic that consults it never changes.
var validStateCodes = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true,
	"CO": true, "CT": true, "DE": true, "DC": true, "FL": true,
	"GA": true, "HI": true, "ID": true, "IL": true, "IN": true,
	"IA": true, "KS": true, "KY": true, "LA": true, "ME": true,
	"MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true,
	"NJ": true, "NM": true, "NY": true, "NC": true, "ND": true,
	"OH": true, "OK": true, "OR": true, "PA": true, "RI": true,
	"SC": true, "SD": true, "TN": true, "TX": true, "UT": true,
	"VT": true, "VA": true, "WA": true, "WV": true, "WI": true,
	"WY": true,
}

// IsValidStateCode reports whether code (case-insensitively) is one of the
// 51 recognized state/territory codes.
func IsValidStateCode(code string) bool {
	return validStateCodes[strings.ToUpper(strings.TrimSpace(code))]
}

// SetValidStateCodes replaces the active state-code table wholesale. Used
// by OverlayWatcher to hot-reload a data-only overlay; never called with
// anything derived from rule logic itself.
func SetValidStateCodes(codes map[string]bool) {
	if len(codes) == 0 {
		return
	}
	validStateCodes = codes
}
