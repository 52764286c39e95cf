package workflow

import "github.com/autocomply/casework/pkg/domain"

// transition is one allowed (from, to) pair and the roles permitted to
// make it (spec.md §4.7).
type transition struct {
	from  domain.CaseStatus
	to    domain.CaseStatus
	roles map[domain.ActorRole]bool
}

var transitions = []transition{
	{domain.CaseNew, domain.CaseInReview, rolesOf(domain.RoleVerifier, domain.RoleAdmin)},
	{domain.CaseNew, domain.CaseNeedsInfo, rolesOf(domain.RoleVerifier, domain.RoleAdmin)},
	{domain.CaseInReview, domain.CaseApproved, rolesOf(domain.RoleVerifier, domain.RoleAdmin)},
	{domain.CaseInReview, domain.CaseRejected, rolesOf(domain.RoleVerifier, domain.RoleAdmin)},
	{domain.CaseInReview, domain.CaseBlocked, rolesOf(domain.RoleVerifier, domain.RoleAdmin)},
	// needs_info -> in_review: either the submitter resubmits (implicit,
	// driven by the resubmission flow rather than a direct status-change
	// call) or a verifier/admin moves it back explicitly.
	{domain.CaseNeedsInfo, domain.CaseInReview, rolesOf(domain.RoleSubmitter, domain.RoleVerifier, domain.RoleAdmin)},
}

func rolesOf(roles ...domain.ActorRole) map[domain.ActorRole]bool {
	m := make(map[domain.ActorRole]bool, len(roles))
	for _, r := range roles {
		m[r] = true
	}
	return m
}

// CanTransition reports whether actor may move a case from 'from' to
// 'to'. Admin may additionally close a case from any non-terminal or
// terminal status (spec.md §4.7 "any -> closed"); no role may leave a
// terminal status except via that admin-close path.
func CanTransition(from, to domain.CaseStatus, actor domain.ActorRole) bool {
	if to == domain.CaseClosed {
		return actor == domain.RoleAdmin
	}
	if from.Terminal() {
		return false
	}
	for _, t := range transitions {
		if t.from == from && t.to == to && t.roles[actor] {
			return true
		}
	}
	return false
}
