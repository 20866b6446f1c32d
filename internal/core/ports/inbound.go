package ports

import (
	"context"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

// EligibilityChecker is the inbound contract for single-scheme eligibility
// evaluation.
type EligibilityChecker interface {
	CheckEligibility(ctx context.Context, schemeID string, profile domain.UserProfile) (*domain.EligibilityDecision, error)
}

// SchemeRanker orders already-scored candidates.
type SchemeRanker interface {
	RankSchemes(candidates []domain.SchemeCandidate) []domain.RankedScheme
}

// SchemeDiscovery is the inbound contract for the full discovery flow:
// candidate listing, per-scheme decisions, relevance scoring with fallback,
// and ranking.
type SchemeDiscovery interface {
	Discover(ctx context.Context, query string, profile domain.UserProfile, filter domain.CandidateFilter) ([]domain.RankedScheme, error)
}

// ConversationManager governs bounded multi-turn dialogue state.
type ConversationManager interface {
	CreateContext(ctx context.Context, userID string) (*domain.ConversationContext, error)
	AppendMessage(ctx context.Context, contextID string, msg domain.ContextMessage) (*domain.ConversationContext, error)
	ReadContext(ctx context.Context, contextID string) (*domain.ConversationContext, error)
}

// ApplicationService governs the application lifecycle.
type ApplicationService interface {
	Submit(ctx context.Context, req domain.SubmitApplicationRequest) (*domain.ApplicationRecord, error)
	Advance(ctx context.Context, applicationID string, status domain.ApplicationStatus, notes, explanation string) (*domain.ApplicationRecord, error)
	Get(ctx context.Context, applicationID string) (*domain.ApplicationRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ApplicationRecord, error)
}
