package domain

import "time"

// ContextTTL is the fixed window a conversation context stays readable.
const ContextTTL = 24 * time.Hour

// ContextMessage is one turn of a conversation.
type ContextMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationContext holds bounded multi-turn dialogue state for one user
// session. Once expired it can only be replaced by a fresh context; there is
// no transition back to active.
type ConversationContext struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	Messages        []ContextMessage `json:"messages"`
	ExtractedIntent *ExtractedIntent `json:"extracted_intent,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	ExpiresAt       time.Time        `json:"expires_at"`

	Version int `json:"version"`
}

// Expired reports whether the context is past its window at the given time.
func (c ConversationContext) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
