package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

func TestConversationCreateAndRead(t *testing.T) {
	uc := NewConversationUseCase(newFakeConversationStore(), 0)

	conv, err := uc.CreateContext(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("CreateContext() error = %v", err)
	}
	if got := conv.ExpiresAt.Sub(conv.CreatedAt); got != domain.ContextTTL {
		t.Fatalf("expected 24h window, got %s", got)
	}

	read, err := uc.ReadContext(context.Background(), conv.ID)
	if err != nil {
		t.Fatalf("ReadContext() error = %v", err)
	}
	if read.ID != conv.ID || read.UserID != "u-1" {
		t.Fatalf("unexpected context: %+v", read)
	}
}

func TestConversationAppendKeepsExpiry(t *testing.T) {
	uc := NewConversationUseCase(newFakeConversationStore(), 0)
	conv, err := uc.CreateContext(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("CreateContext() error = %v", err)
	}
	originalExpiry := conv.ExpiresAt

	updated, err := uc.AppendMessage(context.Background(), conv.ID, domain.ContextMessage{
		Role: "user", Content: "which pension schemes cover farmers?",
	})
	if err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}
	if len(updated.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(updated.Messages))
	}
	if !updated.ExpiresAt.Equal(originalExpiry) {
		t.Fatalf("append must not extend expiry: %s vs %s", updated.ExpiresAt, originalExpiry)
	}
}

func TestConversationReadAfterWindowFailsExpired(t *testing.T) {
	store := newFakeConversationStore()
	uc := NewConversationUseCase(store, 0)
	conv, err := uc.CreateContext(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("CreateContext() error = %v", err)
	}

	created := conv.CreatedAt
	uc.now = func() time.Time { return created.Add(25 * time.Hour) }

	if _, err := uc.ReadContext(context.Background(), conv.ID); !domain.IsKind(err, domain.ErrContextExpired) {
		t.Fatalf("expected ErrContextExpired, got %v", err)
	}
	if _, err := uc.AppendMessage(context.Background(), conv.ID, domain.ContextMessage{
		Role: "user", Content: "still there?",
	}); !domain.IsKind(err, domain.ErrContextExpired) {
		t.Fatalf("expected ErrContextExpired on append, got %v", err)
	}
}

func TestConversationVersionConflictSurfaces(t *testing.T) {
	store := newFakeConversationStore()
	uc := NewConversationUseCase(store, 0)
	conv, err := uc.CreateContext(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("CreateContext() error = %v", err)
	}

	// Simulate a concurrent writer bumping the stored version.
	stored, _ := store.GetContext(context.Background(), conv.ID)
	stored.Version++
	store.contexts[conv.ID] = *stored

	_, err = uc.AppendMessage(context.Background(), conv.ID, domain.ContextMessage{
		Role: "user", Content: "hello",
	})
	if !domain.IsKind(err, domain.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
}

func TestConversationSetIntent(t *testing.T) {
	uc := NewConversationUseCase(newFakeConversationStore(), 0)
	conv, err := uc.CreateContext(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("CreateContext() error = %v", err)
	}

	updated, err := uc.SetIntent(context.Background(), conv.ID, domain.ExtractedIntent{
		Intent: "find_schemes", Language: "hi",
	})
	if err != nil {
		t.Fatalf("SetIntent() error = %v", err)
	}
	if updated.ExtractedIntent == nil || updated.ExtractedIntent.Intent != "find_schemes" {
		t.Fatalf("intent not attached: %+v", updated.ExtractedIntent)
	}
}
