package domain

// TriState is the result of evaluating one criterion. Unknown denotes
// missing profile data and is distinct from not-met.
type TriState string

const (
	VerdictMet     TriState = "met"
	VerdictNotMet  TriState = "not_met"
	VerdictUnknown TriState = "unknown"
)

// CriterionVerdict is the per-criterion outcome of one evaluation. Field
// names the profile field whose value would resolve an unknown verdict; it
// is set on every unknown verdict so callers know what to ask the citizen
// for, and empty otherwise.
type CriterionVerdict struct {
	Criterion string   `json:"criterion"`
	Met       TriState `json:"met"`
	Reason    string   `json:"reason"`
	Field     string   `json:"field,omitempty"`
}

// Outcome is the aggregate eligibility result for one scheme/profile pair.
type Outcome string

const (
	OutcomeEligible          Outcome = "eligible"
	OutcomeNotEligible       Outcome = "not_eligible"
	OutcomePartiallyEligible Outcome = "partially_eligible"
)

// EligibilityDecision is the verifiable result of evaluating one profile
// against one scheme's criteria. Verdicts keep evaluation order so the
// explanation is reproducible.
type EligibilityDecision struct {
	SchemeID      string             `json:"scheme_id"`
	Outcome       Outcome            `json:"outcome"`
	Confidence    float64            `json:"confidence"`
	Explanation   string             `json:"explanation"`
	Verdicts      []CriterionVerdict `json:"verdicts"`
	MissingFields []string           `json:"missing_fields,omitempty"`
}

// MergeConfidence folds in an externally supplied confidence, keeping the
// lower of the two.
func (d *EligibilityDecision) MergeConfidence(external float64) {
	if external < 0 {
		external = 0
	}
	if external > 100 {
		external = 100
	}
	if external < d.Confidence {
		d.Confidence = external
	}
}
