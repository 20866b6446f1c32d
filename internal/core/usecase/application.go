package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
	"github.com/yojanasetu/eligibility-engine/internal/core/ports"
)

// ApplicationUseCase drives the application lifecycle machine. Transitions
// are validated in full before any write, so an illegal request leaves the
// stored record untouched. Every accepted transition appends exactly one
// history entry and publishes one lifecycle event.
type ApplicationUseCase struct {
	store     ports.ApplicationStore
	catalog   ports.SchemeCatalog
	publisher ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewApplicationUseCase(
	store ports.ApplicationStore,
	catalog ports.SchemeCatalog,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) *ApplicationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplicationUseCase{
		store:     store,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *ApplicationUseCase) Submit(ctx context.Context, req domain.SubmitApplicationRequest) (*domain.ApplicationRecord, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "submit application", fmt.Errorf("user id is required"))
	}
	if strings.TrimSpace(req.SchemeID) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "submit application", fmt.Errorf("scheme id is required"))
	}
	if len(req.FormData) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "submit application", fmt.Errorf("form data must not be empty"))
	}

	scheme, err := uc.catalog.GetScheme(ctx, req.SchemeID)
	if err != nil {
		return nil, fmt.Errorf("get scheme %s: %w", req.SchemeID, err)
	}

	documents, err := reconcileDocuments(scheme.RequiredDocuments, req.Documents)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	record := &domain.ApplicationRecord{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		SchemeID:  req.SchemeID,
		Status:    domain.StatusSubmitted,
		FormData:  req.FormData,
		Documents: documents,
		StatusHistory: []domain.StatusChange{{
			Status:    domain.StatusSubmitted,
			Timestamp: now,
		}},
		SubmittedAt: now,
		UpdatedAt:   now,
		Version:     1,
	}
	if req.Decision != nil {
		record.DecisionExplanation = req.Decision.Explanation
	}

	if err := uc.store.CreateApplication(ctx, record); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	uc.publishEvent(ctx, record, "")
	return record, nil
}

// Advance moves an application along one lifecycle edge. Approved and
// Rejected require a non-empty decision explanation set atomically with the
// transition.
func (uc *ApplicationUseCase) Advance(ctx context.Context, applicationID string, status domain.ApplicationStatus, notes, explanation string) (*domain.ApplicationRecord, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.WrapError(domain.ErrValidation, "advance application", fmt.Errorf("unknown status %q", status))
	}

	record, err := uc.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("get application %s: %w", applicationID, err)
	}

	current := record.CurrentStatus()
	if !domain.CanTransition(current, status) {
		return nil, domain.WrapError(domain.ErrInvalidTransition, "advance application",
			fmt.Errorf("%s -> %s is not a legal transition", current, status))
	}
	if status.Terminal() && strings.TrimSpace(explanation) == "" {
		return nil, domain.WrapError(domain.ErrMissingExplanation, "advance application",
			fmt.Errorf("terminal status %s requires a decision explanation", status))
	}

	now := uc.now().UTC()
	expectedVersion := record.Version
	record.Status = status
	record.StatusHistory = append(record.StatusHistory, domain.StatusChange{
		Status:    status,
		Timestamp: now,
		Notes:     notes,
	})
	record.UpdatedAt = now
	record.Version++
	if status.Terminal() {
		record.DecisionExplanation = explanation
	}

	if err := uc.store.UpdateApplication(ctx, record, expectedVersion); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	uc.publishEvent(ctx, record, notes)
	return record, nil
}

func (uc *ApplicationUseCase) Get(ctx context.Context, applicationID string) (*domain.ApplicationRecord, error) {
	record, err := uc.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("get application %s: %w", applicationID, err)
	}
	return record, nil
}

func (uc *ApplicationUseCase) ListByUser(ctx context.Context, userID string) ([]domain.ApplicationRecord, error) {
	records, err := uc.store.ListApplicationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return records, nil
}

// publishEvent is best-effort: losing an audit event must not fail the
// already-committed lifecycle change.
func (uc *ApplicationUseCase) publishEvent(ctx context.Context, record *domain.ApplicationRecord, notes string) {
	if uc.publisher == nil {
		return
	}
	event := domain.ApplicationEvent{
		ApplicationID: record.ID,
		UserID:        record.UserID,
		SchemeID:      record.SchemeID,
		Status:        record.CurrentStatus(),
		Notes:         notes,
		OccurredAt:    record.UpdatedAt,
	}
	if err := uc.publisher.PublishApplicationEvent(ctx, event); err != nil {
		uc.logger.Warn("publish application event failed",
			"application_id", record.ID, "status", record.CurrentStatus(), "error", err)
	}
}

// reconcileDocuments checks every required document type is accounted for,
// either supplied or explicitly flagged missing, and flags the ones the
// caller omitted but marked missing.
func reconcileDocuments(required []string, supplied []domain.DocumentRef) ([]domain.DocumentRef, error) {
	out := make([]domain.DocumentRef, len(supplied))
	copy(out, supplied)

	byType := make(map[string]struct{}, len(supplied))
	for _, doc := range supplied {
		byType[strings.ToLower(strings.TrimSpace(doc.Type))] = struct{}{}
	}

	var unaccounted []string
	for _, docType := range required {
		if _, ok := byType[strings.ToLower(strings.TrimSpace(docType))]; !ok {
			unaccounted = append(unaccounted, docType)
		}
	}
	if len(unaccounted) > 0 {
		return nil, domain.WrapError(domain.ErrValidation, "submit application",
			fmt.Errorf("required documents not accounted for: %s", strings.Join(unaccounted, ", ")))
	}
	return out, nil
}
