package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

const allCriteriaSatisfied = "all criteria satisfied"

// synthesizeDecision folds an ordered verdict sequence into the aggregate
// decision. Eligible needs every verdict met; a single not-met verdict makes
// the outcome not eligible; otherwise unknown data makes it partially
// eligible. The explanation cites every non-met criterion in verdict order,
// so equal inputs always produce byte-identical explanations.
func synthesizeDecision(schemeID string, verdicts []domain.CriterionVerdict) domain.EligibilityDecision {
	var (
		unknownCount int
		anyNotMet    bool
		missing      = make(map[string]struct{})
		parts        []string
	)

	for _, v := range verdicts {
		switch v.Met {
		case domain.VerdictNotMet:
			anyNotMet = true
		case domain.VerdictUnknown:
			unknownCount++
			// Every unknown verdict names its field, whether the datum is
			// absent or merely unusable (band straddle, type mismatch).
			if v.Field != "" {
				missing[v.Field] = struct{}{}
			}
		}
		if v.Met != domain.VerdictMet {
			parts = append(parts, fmt.Sprintf("criterion %s: %s", v.Criterion, v.Reason))
		}
	}

	outcome := domain.OutcomeEligible
	explanation := allCriteriaSatisfied
	switch {
	case anyNotMet:
		outcome = domain.OutcomeNotEligible
		explanation = strings.Join(parts, "; ")
	case unknownCount > 0:
		outcome = domain.OutcomePartiallyEligible
		explanation = strings.Join(parts, "; ")
	}

	confidence := 100.0
	if len(verdicts) > 0 {
		confidence = 100 - (float64(unknownCount)/float64(len(verdicts)))*100
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	missingFields := make([]string, 0, len(missing))
	for field := range missing {
		missingFields = append(missingFields, field)
	}
	sort.Strings(missingFields)

	out := make([]domain.CriterionVerdict, len(verdicts))
	copy(out, verdicts)

	return domain.EligibilityDecision{
		SchemeID:      schemeID,
		Outcome:       outcome,
		Confidence:    confidence,
		Explanation:   explanation,
		Verdicts:      out,
		MissingFields: missingFields,
	}
}
