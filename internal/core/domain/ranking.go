package domain

import "fmt"

// SchemeCandidate pairs a scheme with its externally supplied relevance
// score and, when already computed, its eligibility decision.
type SchemeCandidate struct {
	SchemeID       string               `json:"scheme_id"`
	RelevanceScore int                  `json:"relevance_score"`
	Decision       *EligibilityDecision `json:"decision,omitempty"`
}

// RankedScheme is one entry of a ranked result set.
type RankedScheme struct {
	SchemeID       string               `json:"scheme_id"`
	RelevanceScore int                  `json:"relevance_score"`
	Decision       *EligibilityDecision `json:"decision,omitempty"`
}

// RelevanceScore is one reasoning-service scoring result for a scheme.
type RelevanceScore struct {
	SchemeID string `json:"scheme_id"`
	Score    int    `json:"score"`
	Reason   string `json:"reason,omitempty"`
}

// Validate rejects out-of-range scores before they can reach the ranker.
func (s RelevanceScore) Validate() error {
	if s.SchemeID == "" {
		return WrapError(ErrValidation, "validate relevance score", fmt.Errorf("scheme id is empty"))
	}
	if s.Score < 0 || s.Score > 100 {
		return WrapError(ErrValidation, "validate relevance score",
			fmt.Errorf("score %d for scheme %s out of range [0,100]", s.Score, s.SchemeID))
	}
	return nil
}

// ExtractedIntent is the reasoning service's reading of a free-text query.
type ExtractedIntent struct {
	Intent       string            `json:"intent"`
	Demographics map[string]string `json:"demographics,omitempty"`
	Language     string            `json:"language"`
}
