package ports

import (
	"context"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

// SchemeCatalog serves scheme definitions and candidate listings. Criteria
// returned here are guaranteed valid: malformed criteria are rejected at
// ingestion.
type SchemeCatalog interface {
	GetScheme(ctx context.Context, schemeID string) (*domain.Scheme, error)
	ListCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Scheme, error)
	UpsertScheme(ctx context.Context, scheme domain.Scheme) error
}

// ProfileStore persists user profiles with versioned optimistic updates.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	CreateProfile(ctx context.Context, profile *domain.UserProfile) error
	UpdateProfile(ctx context.Context, profile *domain.UserProfile, expectedVersion int) error
}

// ConversationStore persists conversation contexts. Update is conditional on
// the expected prior version; a mismatch fails with ErrConcurrentModification.
type ConversationStore interface {
	CreateContext(ctx context.Context, conv *domain.ConversationContext) error
	GetContext(ctx context.Context, contextID string) (*domain.ConversationContext, error)
	UpdateContext(ctx context.Context, conv *domain.ConversationContext, expectedVersion int) error
}

// ApplicationStore persists application records. Update is conditional on
// the expected prior version.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, record *domain.ApplicationRecord) error
	GetApplication(ctx context.Context, applicationID string) (*domain.ApplicationRecord, error)
	UpdateApplication(ctx context.Context, record *domain.ApplicationRecord, expectedVersion int) error
	ListApplicationsByUser(ctx context.Context, userID string) ([]domain.ApplicationRecord, error)
}

// RelevanceScorer is the reasoning collaborator's scoring surface. Scores
// are validated before use; a failing scorer degrades to fallback ranking.
type RelevanceScorer interface {
	ScoreRelevance(ctx context.Context, query string, profile domain.UserProfile, schemeIDs []string) ([]domain.RelevanceScore, error)
}

// IntentExtractor turns free text into a structured intent.
type IntentExtractor interface {
	ExtractIntent(ctx context.Context, text, lang string) (*domain.ExtractedIntent, error)
}

// EligibilityExplainer renders a decision as user-facing prose.
type EligibilityExplainer interface {
	ExplainEligibility(ctx context.Context, decision domain.EligibilityDecision, lang string) (string, error)
}

// EventPublisher publishes application lifecycle events.
type EventPublisher interface {
	PublishApplicationEvent(ctx context.Context, event domain.ApplicationEvent) error
}
