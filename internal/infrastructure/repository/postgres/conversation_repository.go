package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

// ConversationRepository persists conversation contexts. Rows past their
// expiry stay readable here; the expiry policy lives in the use case, which
// rejects them, and a periodic sweep can purge them by the expires_at index.
type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) CreateContext(ctx context.Context, conv *domain.ConversationContext) error {
	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	intent, err := marshalNullable(conv.ExtractedIntent)
	if err != nil {
		return fmt.Errorf("encode intent: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO conversation_contexts (id, user_id, messages, extracted_intent, created_at, expires_at, version)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, conv.ID, conv.UserID, messages, intent, conv.CreatedAt, conv.ExpiresAt, conv.Version)
	if err != nil {
		return fmt.Errorf("create context: %w", err)
	}
	return nil
}

func (r *ConversationRepository) GetContext(ctx context.Context, contextID string) (*domain.ConversationContext, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, messages, extracted_intent, created_at, expires_at, version
FROM conversation_contexts
WHERE id = $1
`, contextID)

	var (
		conv     domain.ConversationContext
		messages []byte
		intent   []byte
	)
	err := row.Scan(&conv.ID, &conv.UserID, &messages, &intent, &conv.CreatedAt, &conv.ExpiresAt, &conv.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get context", fmt.Errorf("context %s", contextID))
		}
		return nil, fmt.Errorf("get context: %w", err)
	}

	if err := json.Unmarshal(messages, &conv.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if len(intent) > 0 {
		if err := json.Unmarshal(intent, &conv.ExtractedIntent); err != nil {
			return nil, fmt.Errorf("decode intent: %w", err)
		}
	}
	return &conv, nil
}

func (r *ConversationRepository) UpdateContext(ctx context.Context, conv *domain.ConversationContext, expectedVersion int) error {
	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	intent, err := marshalNullable(conv.ExtractedIntent)
	if err != nil {
		return fmt.Errorf("encode intent: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE conversation_contexts
SET messages = $2, extracted_intent = $3, version = $4
WHERE id = $1 AND version = $5
`, conv.ID, messages, intent, conv.Version, expectedVersion)
	if err != nil {
		return fmt.Errorf("update context: %w", err)
	}
	return checkVersionedUpdate(ctx, r.db, result, "update context",
		`SELECT 1 FROM conversation_contexts WHERE id = $1`, conv.ID)
}

// PurgeExpired deletes contexts whose window closed before the cutoff.
// Intended for a periodic sweep, not the request path.
func (r *ConversationRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
DELETE FROM conversation_contexts WHERE expires_at < $1
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge expired contexts: %w", err)
	}
	return result.RowsAffected()
}

func marshalNullable(intent *domain.ExtractedIntent) ([]byte, error) {
	if intent == nil {
		return nil, nil
	}
	return json.Marshal(intent)
}
