package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
	"github.com/yojanasetu/eligibility-engine/internal/core/ports"
)

// fallbackRelevance is the uniform score used when the reasoning service is
// unavailable: ranking then degrades to the eligibility-outcome tie-break.
const fallbackRelevance = 50

type EligibilityUseCase struct {
	catalog      ports.SchemeCatalog
	scorer       ports.RelevanceScorer
	scoreTimeout time.Duration
	logger       *slog.Logger

	onFallback func()
}

// OnFallback registers a hook fired whenever discovery degrades to fallback
// relevance. Used to wire an observability counter without the core
// depending on a metrics package.
func (uc *EligibilityUseCase) OnFallback(fn func()) {
	uc.onFallback = fn
}

func NewEligibilityUseCase(
	catalog ports.SchemeCatalog,
	scorer ports.RelevanceScorer,
	scoreTimeout time.Duration,
	logger *slog.Logger,
) *EligibilityUseCase {
	if scoreTimeout <= 0 {
		scoreTimeout = 25 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EligibilityUseCase{
		catalog:      catalog,
		scorer:       scorer,
		scoreTimeout: scoreTimeout,
		logger:       logger,
	}
}

// CheckEligibility evaluates one profile against one scheme's criteria.
func (uc *EligibilityUseCase) CheckEligibility(ctx context.Context, schemeID string, profile domain.UserProfile) (*domain.EligibilityDecision, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	scheme, err := uc.catalog.GetScheme(ctx, schemeID)
	if err != nil {
		return nil, fmt.Errorf("get scheme %s: %w", schemeID, err)
	}
	// Criteria are validated at ingestion; re-check so a corrupted catalog
	// row fails closed instead of producing a bogus decision.
	if err := scheme.Criteria.Validate(); err != nil {
		return nil, err
	}

	verdicts := evaluateCriteria(scheme.Criteria, profile)
	decision := synthesizeDecision(schemeID, verdicts)
	return &decision, nil
}

// RankSchemes orders already-scored candidates. Pure passthrough to the
// ranker; exposed so callers with their own relevance source can rank
// without touching the catalog.
func (uc *EligibilityUseCase) RankSchemes(candidates []domain.SchemeCandidate) []domain.RankedScheme {
	return rankCandidates(candidates)
}

// Discover runs the full flow: list candidates, decide eligibility per
// scheme, score relevance with the reasoning service, and rank. A scoring
// failure never fails the request; it degrades to uniform fallback scores.
func (uc *EligibilityUseCase) Discover(ctx context.Context, query string, profile domain.UserProfile, filter domain.CandidateFilter) ([]domain.RankedScheme, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	schemes, err := uc.catalog.ListCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	if len(schemes) == 0 {
		return []domain.RankedScheme{}, nil
	}

	candidates := make([]domain.SchemeCandidate, 0, len(schemes))
	schemeIDs := make([]string, 0, len(schemes))
	for _, scheme := range schemes {
		verdicts := evaluateCriteria(scheme.Criteria, profile)
		decision := synthesizeDecision(scheme.ID, verdicts)
		candidates = append(candidates, domain.SchemeCandidate{
			SchemeID:       scheme.ID,
			RelevanceScore: fallbackRelevance,
			Decision:       &decision,
		})
		schemeIDs = append(schemeIDs, scheme.ID)
	}

	scores, err := uc.scoreWithTimeout(ctx, query, profile, schemeIDs)
	if err != nil {
		uc.logger.Warn("relevance scoring degraded to fallback",
			"error", err, "candidates", len(schemeIDs))
		if uc.onFallback != nil {
			uc.onFallback()
		}
	} else {
		applyScores(candidates, scores)
	}

	return rankCandidates(candidates), nil
}

func (uc *EligibilityUseCase) scoreWithTimeout(ctx context.Context, query string, profile domain.UserProfile, schemeIDs []string) ([]domain.RelevanceScore, error) {
	if uc.scorer == nil {
		return nil, domain.WrapError(domain.ErrUpstreamUnavailable, "score relevance", fmt.Errorf("no scorer configured"))
	}
	scoreCtx, cancel := context.WithTimeout(ctx, uc.scoreTimeout)
	defer cancel()

	scores, err := uc.scorer.ScoreRelevance(scoreCtx, query, profile, schemeIDs)
	if err != nil {
		return nil, err
	}
	for _, score := range scores {
		if err := score.Validate(); err != nil {
			return nil, err
		}
	}
	return scores, nil
}

func applyScores(candidates []domain.SchemeCandidate, scores []domain.RelevanceScore) {
	byID := make(map[string]int, len(scores))
	for _, score := range scores {
		byID[score.SchemeID] = score.Score
	}
	for i := range candidates {
		if score, ok := byID[candidates[i].SchemeID]; ok {
			candidates[i].RelevanceScore = score
		}
	}
}
