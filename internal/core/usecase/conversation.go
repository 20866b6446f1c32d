package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
	"github.com/yojanasetu/eligibility-engine/internal/core/ports"
)

// ConversationUseCase manages bounded dialogue contexts. A context is
// readable and appendable for a fixed window after creation; appending does
// not extend the window. Expired contexts are never revived; callers start a
// new one. Removing expired rows is the storage layer's concern.
type ConversationUseCase struct {
	store ports.ConversationStore
	ttl   time.Duration
	now   func() time.Time
}

func NewConversationUseCase(store ports.ConversationStore, ttl time.Duration) *ConversationUseCase {
	if ttl <= 0 {
		ttl = domain.ContextTTL
	}
	return &ConversationUseCase{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (uc *ConversationUseCase) CreateContext(ctx context.Context, userID string) (*domain.ConversationContext, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.WrapError(domain.ErrValidation, "create context", fmt.Errorf("user id is required"))
	}

	now := uc.now().UTC()
	conv := &domain.ConversationContext{
		ID:        uuid.NewString(),
		UserID:    userID,
		Messages:  []domain.ContextMessage{},
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
		Version:   1,
	}
	if err := uc.store.CreateContext(ctx, conv); err != nil {
		return nil, fmt.Errorf("create context: %w", err)
	}
	return conv, nil
}

func (uc *ConversationUseCase) AppendMessage(ctx context.Context, contextID string, msg domain.ContextMessage) (*domain.ConversationContext, error) {
	if strings.TrimSpace(msg.Content) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "append message", fmt.Errorf("message content is required"))
	}

	conv, err := uc.activeContext(ctx, contextID, "append message")
	if err != nil {
		return nil, err
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = uc.now().UTC()
	}
	expectedVersion := conv.Version
	conv.Messages = append(conv.Messages, msg)
	conv.Version++

	if err := uc.store.UpdateContext(ctx, conv, expectedVersion); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return conv, nil
}

// SetIntent attaches the reasoning service's extracted intent to an active
// context so follow-up turns can reuse it.
func (uc *ConversationUseCase) SetIntent(ctx context.Context, contextID string, intent domain.ExtractedIntent) (*domain.ConversationContext, error) {
	conv, err := uc.activeContext(ctx, contextID, "set intent")
	if err != nil {
		return nil, err
	}

	expectedVersion := conv.Version
	conv.ExtractedIntent = &intent
	conv.Version++

	if err := uc.store.UpdateContext(ctx, conv, expectedVersion); err != nil {
		return nil, fmt.Errorf("set intent: %w", err)
	}
	return conv, nil
}

func (uc *ConversationUseCase) ReadContext(ctx context.Context, contextID string) (*domain.ConversationContext, error) {
	return uc.activeContext(ctx, contextID, "read context")
}

func (uc *ConversationUseCase) activeContext(ctx context.Context, contextID, operation string) (*domain.ConversationContext, error) {
	conv, err := uc.store.GetContext(ctx, contextID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	if conv.Expired(uc.now()) {
		return nil, domain.WrapError(domain.ErrContextExpired, operation,
			fmt.Errorf("context %s expired at %s", contextID, conv.ExpiresAt.Format(time.RFC3339)))
	}
	return conv, nil
}
