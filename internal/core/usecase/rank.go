package usecase

import (
	"sort"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

// outcomeRank orders eligibility outcomes toward actionable results.
// Candidates without a decision sort after everything decided.
func outcomeRank(decision *domain.EligibilityDecision) int {
	if decision == nil {
		return 3
	}
	switch decision.Outcome {
	case domain.OutcomeEligible:
		return 0
	case domain.OutcomePartiallyEligible:
		return 1
	case domain.OutcomeNotEligible:
		return 2
	default:
		return 3
	}
}

// rankCandidates orders candidates by relevance descending, then eligibility
// outcome, then scheme id ascending. The sort is stable, so inputs equal on
// the whole key chain keep their original relative order. The input slice is
// never mutated.
func rankCandidates(candidates []domain.SchemeCandidate) []domain.RankedScheme {
	ranked := make([]domain.RankedScheme, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, domain.RankedScheme{
			SchemeID:       c.SchemeID,
			RelevanceScore: c.RelevanceScore,
			Decision:       c.Decision,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RelevanceScore != ranked[j].RelevanceScore {
			return ranked[i].RelevanceScore > ranked[j].RelevanceScore
		}
		ri, rj := outcomeRank(ranked[i].Decision), outcomeRank(ranked[j].Decision)
		if ri != rj {
			return ri < rj
		}
		return ranked[i].SchemeID < ranked[j].SchemeID
	})

	return ranked
}
