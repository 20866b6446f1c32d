package domain

import "time"

// ApplicationStatus is a state of the application lifecycle machine.
type ApplicationStatus string

const (
	StatusSubmitted        ApplicationStatus = "submitted"
	StatusUnderReview      ApplicationStatus = "under_review"
	StatusPendingDocuments ApplicationStatus = "pending_documents"
	StatusApproved         ApplicationStatus = "approved"
	StatusRejected         ApplicationStatus = "rejected"
)

// legalTransitions encodes the full lifecycle edge set. Approved and
// Rejected are terminal and have no outgoing edges.
var legalTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted:        {StatusUnderReview, StatusPendingDocuments},
	StatusUnderReview:      {StatusApproved, StatusRejected, StatusPendingDocuments},
	StatusPendingDocuments: {StatusUnderReview},
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s ApplicationStatus) bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusPendingDocuments, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further transitions.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether from → to is a legal lifecycle edge.
func CanTransition(from, to ApplicationStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DocumentRef describes one document attached to (or flagged missing from)
// an application. Storage of the actual file is outside the core.
type DocumentRef struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	StoragePath string `json:"storage_path,omitempty"`
	Missing     bool   `json:"missing,omitempty"`
}

// StatusChange is one append-only history entry.
type StatusChange struct {
	Status    ApplicationStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Notes     string            `json:"notes,omitempty"`
}

// ApplicationRecord tracks one user's application to one scheme. The status
// field always mirrors the last history entry; CurrentStatus is the single
// source of truth.
type ApplicationRecord struct {
	ID                  string            `json:"id"`
	UserID              string            `json:"user_id"`
	SchemeID            string            `json:"scheme_id"`
	Status              ApplicationStatus `json:"status"`
	FormData            map[string]string `json:"form_data"`
	Documents           []DocumentRef     `json:"documents"`
	StatusHistory       []StatusChange    `json:"status_history"`
	SubmittedAt         time.Time         `json:"submitted_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	DecisionExplanation string            `json:"decision_explanation,omitempty"`

	Version int `json:"version"`
}

// CurrentStatus is the status of the last history entry, never re-derived
// from anything else.
func (r ApplicationRecord) CurrentStatus() ApplicationStatus {
	if len(r.StatusHistory) == 0 {
		return r.Status
	}
	return r.StatusHistory[len(r.StatusHistory)-1].Status
}

// SubmitApplicationRequest carries everything needed to open an
// application. Decision, when present, is the eligibility decision computed
// for this scheme/profile pair; its explanation is stamped onto the record.
type SubmitApplicationRequest struct {
	UserID    string               `json:"user_id"`
	SchemeID  string               `json:"scheme_id"`
	FormData  map[string]string    `json:"form_data"`
	Documents []DocumentRef        `json:"documents"`
	Decision  *EligibilityDecision `json:"decision,omitempty"`
}

// ApplicationEvent is the lifecycle change notification published to the
// event bus for downstream audit and notification consumers.
type ApplicationEvent struct {
	ApplicationID string            `json:"application_id"`
	UserID        string            `json:"user_id"`
	SchemeID      string            `json:"scheme_id"`
	Status        ApplicationStatus `json:"status"`
	Notes         string            `json:"notes,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}
