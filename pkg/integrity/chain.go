package integrity

import "github.com/autocomply/casework/pkg/domain"

// BrokenLink describes one place a history chain's previous_run_id does
// not point at the immediately prior entry.
type BrokenLink struct {
	EntryID  string `json:"entry_id"`
	Expected string `json:"expected_previous_run_id"`
	Actual   string `json:"actual_previous_run_id"`
}

// OrphanedEntry describes a history entry referencing a previous_run_id
// not present anywhere in the case's history.
type OrphanedEntry struct {
	EntryID             string `json:"entry_id"`
	MissingPreviousRunID string `json:"missing_previous_run_id"`
}

// Report is the combined output of chain verification (spec.md §4.4).
type Report struct {
	IsValid         bool            `json:"is_valid"`
	BrokenLinks     []BrokenLink    `json:"broken_links"`
	OrphanedEntries []OrphanedEntry `json:"orphaned_entries"`
	TotalEntries    int             `json:"total_entries"`
	VerifiedEntries int             `json:"verified_entries"`
}

// VerifyChain checks entries — already ordered oldest-first by
// computed_at — against the invariants of spec.md §4.4:
//
//   - entries[0].PreviousRunID must be empty.
//   - for all i >= 1, entries[i].PreviousRunID == entries[i-1].ID.
//   - any PreviousRunID not present among entries' IDs is orphaned.
func VerifyChain(entries []domain.IntelligenceHistoryEntry) Report {
	report := Report{TotalEntries: len(entries), IsValid: true}
	if len(entries) == 0 {
		return report
	}

	ids := make(map[string]bool, len(entries))
	for _, e := range entries {
		ids[e.ID] = true
	}

	if entries[0].PreviousRunID != "" {
		report.BrokenLinks = append(report.BrokenLinks, BrokenLink{
			EntryID:  entries[0].ID,
			Expected: "",
			Actual:   entries[0].PreviousRunID,
		})
	} else {
		report.VerifiedEntries++
	}

	for i := 1; i < len(entries); i++ {
		expected := entries[i-1].ID
		if entries[i].PreviousRunID != expected {
			report.BrokenLinks = append(report.BrokenLinks, BrokenLink{
				EntryID:  entries[i].ID,
				Expected: expected,
				Actual:   entries[i].PreviousRunID,
			})
		} else {
			report.VerifiedEntries++
		}
	}

	for _, e := range entries {
		if e.PreviousRunID != "" && !ids[e.PreviousRunID] {
			report.OrphanedEntries = append(report.OrphanedEntries, OrphanedEntry{
				EntryID:              e.ID,
				MissingPreviousRunID: e.PreviousRunID,
			})
		}
	}

	report.IsValid = len(report.BrokenLinks) == 0 && len(report.OrphanedEntries) == 0
	return report
}

// DuplicateGroup is one input_hash shared by more than one history entry.
type DuplicateGroup struct {
	InputHash string   `json:"input_hash"`
	EntryIDs  []string `json:"entry_ids"`
}

// DuplicateAnalysis groups history entries by input_hash and reports
// every hash that appears more than once — a recompute on unchanged
// inputs, normal but surfaced to reviewers (spec.md §4.4).
type DuplicateAnalysis struct {
	DuplicateGroups []DuplicateGroup `json:"duplicate_groups"`
}

// AnalyzeDuplicates groups entries by InputHash and returns every group
// with more than one member, in first-seen order for determinism.
func AnalyzeDuplicates(entries []domain.IntelligenceHistoryEntry) DuplicateAnalysis {
	order := []string{}
	byHash := map[string][]string{}

	for _, e := range entries {
		if _, seen := byHash[e.InputHash]; !seen {
			order = append(order, e.InputHash)
		}
		byHash[e.InputHash] = append(byHash[e.InputHash], e.ID)
	}

	var analysis DuplicateAnalysis
	for _, h := range order {
		ids := byHash[h]
		if len(ids) > 1 {
			analysis.DuplicateGroups = append(analysis.DuplicateGroups, DuplicateGroup{
				InputHash: h,
				EntryIDs:  ids,
			})
		}
	}
	return analysis
}
