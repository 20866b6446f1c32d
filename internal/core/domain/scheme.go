package domain

import "time"

// LocalizedText carries per-language renderings of a catalog string, keyed
// by BCP 47 language code. Selection of which rendering to show is the
// caller's concern.
type LocalizedText map[string]string

// Scheme is one government benefit program in the catalog.
type Scheme struct {
	ID                string              `json:"id"`
	Entity            string              `json:"entity"`
	Names             LocalizedText       `json:"names"`
	Descriptions      LocalizedText       `json:"descriptions,omitempty"`
	Benefits          LocalizedText       `json:"benefits,omitempty"`
	RequiredDocuments []string            `json:"required_documents,omitempty"`
	Criteria          EligibilityCriteria `json:"criteria"`
	Active            bool                `json:"active"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// CandidateFilter narrows catalog listing. Present fields combine with AND
// semantics; inactive schemes are excluded unless IncludeInactive is set.
type CandidateFilter struct {
	State           string
	Category        Category
	Entity          string
	IncludeInactive bool
}
