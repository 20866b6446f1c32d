package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return raw
}

func TestSchemeRepositoryGetSchemeNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSchemeRepository(db)

	mock.ExpectQuery("FROM schemes").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetScheme(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSchemeRepositoryGetSchemeDecodesRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSchemeRepository(db)

	incomeMax := 250000.0
	criteria := domain.EligibilityCriteria{IncomeMax: &incomeMax, AllowedStates: []string{"Bihar"}}
	rows := sqlmock.NewRows([]string{"id", "entity", "names", "descriptions", "benefits", "required_documents", "criteria", "active", "updated_at"}).
		AddRow("pm-kisan", "central",
			mustJSON(t, domain.LocalizedText{"en": "PM-KISAN", "hi": "पीएम किसान"}),
			nil, nil,
			mustJSON(t, []string{"aadhaar", "land_record"}),
			mustJSON(t, criteria),
			true, time.Now())

	mock.ExpectQuery("FROM schemes").
		WithArgs("pm-kisan").
		WillReturnRows(rows)

	scheme, err := repo.GetScheme(context.Background(), "pm-kisan")
	if err != nil {
		t.Fatalf("GetScheme() error = %v", err)
	}
	if scheme.Names["en"] != "PM-KISAN" {
		t.Fatalf("expected english name, got %q", scheme.Names["en"])
	}
	if scheme.Criteria.IncomeMax == nil || *scheme.Criteria.IncomeMax != 250000 {
		t.Fatalf("criteria income max not decoded: %+v", scheme.Criteria)
	}
	if len(scheme.RequiredDocuments) != 2 {
		t.Fatalf("expected 2 required documents, got %d", len(scheme.RequiredDocuments))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSchemeRepositoryListCandidatesAppliesStateFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSchemeRepository(db)

	biharOnly := domain.EligibilityCriteria{AllowedStates: []string{"Bihar"}}
	anywhere := domain.EligibilityCriteria{}
	rows := sqlmock.NewRows([]string{"id", "entity", "names", "descriptions", "benefits", "required_documents", "criteria", "active", "updated_at"}).
		AddRow("s-bihar", "state", mustJSON(t, domain.LocalizedText{"en": "Bihar scheme"}), nil, nil, nil, mustJSON(t, biharOnly), true, time.Now()).
		AddRow("s-all", "central", mustJSON(t, domain.LocalizedText{"en": "Open scheme"}), nil, nil, nil, mustJSON(t, anywhere), true, time.Now())

	mock.ExpectQuery("FROM schemes").WillReturnRows(rows)

	schemes, err := repo.ListCandidates(context.Background(), domain.CandidateFilter{State: "Kerala"})
	if err != nil {
		t.Fatalf("ListCandidates() error = %v", err)
	}
	if len(schemes) != 1 || schemes[0].ID != "s-all" {
		t.Fatalf("expected only the open scheme, got %+v", schemes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSchemeRepositoryUpsertRejectsInvalidCriteria(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewSchemeRepository(db)

	min, max := 60, 18
	scheme := domain.Scheme{
		ID:       "bad",
		Entity:   "central",
		Names:    domain.LocalizedText{"en": "bad"},
		Criteria: domain.EligibilityCriteria{AgeRange: &domain.AgeRange{Min: &min, Max: &max}},
		Active:   true,
	}
	err := repo.UpsertScheme(context.Background(), scheme)
	if !domain.IsKind(err, domain.ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria, got %v", err)
	}
}

func TestProfileRepositoryUpdateVersionConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectExec("UPDATE user_profiles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM user_profiles").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	profile := &domain.UserProfile{ID: "u-1", Version: 3}
	err := repo.UpdateProfile(context.Background(), profile, 2)
	if !domain.IsKind(err, domain.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestProfileRepositoryUpdateMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectExec("UPDATE user_profiles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM user_profiles").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	profile := &domain.UserProfile{ID: "ghost", Version: 2}
	err := repo.UpdateProfile(context.Background(), profile, 1)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConversationRepositoryRoundTrip(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConversationRepository(db)

	created := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	conv := domain.ConversationContext{
		ID:        "c-1",
		UserID:    "u-1",
		Messages:  []domain.ContextMessage{{ID: "m-1", Role: "user", Content: "pension schemes?", CreatedAt: created}},
		CreatedAt: created,
		ExpiresAt: created.Add(domain.ContextTTL),
		Version:   1,
	}

	rows := sqlmock.NewRows([]string{"id", "user_id", "messages", "extracted_intent", "created_at", "expires_at", "version"}).
		AddRow(conv.ID, conv.UserID, mustJSON(t, conv.Messages), nil, conv.CreatedAt, conv.ExpiresAt, conv.Version)
	mock.ExpectQuery("FROM conversation_contexts").
		WithArgs("c-1").
		WillReturnRows(rows)

	got, err := repo.GetContext(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("GetContext() error = %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "pension schemes?" {
		t.Fatalf("messages not decoded: %+v", got.Messages)
	}
	if got.ExtractedIntent != nil {
		t.Fatalf("expected nil intent, got %+v", got.ExtractedIntent)
	}
	if !got.ExpiresAt.Equal(created.Add(24 * time.Hour)) {
		t.Fatalf("expiry not preserved: %v", got.ExpiresAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConversationRepositoryUpdateVersionConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConversationRepository(db)

	mock.ExpectExec("UPDATE conversation_contexts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM conversation_contexts").
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	conv := &domain.ConversationContext{ID: "c-1", Version: 5}
	err := repo.UpdateContext(context.Background(), conv, 4)
	if !domain.IsKind(err, domain.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplicationRepositoryGetDecodesHistory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	submitted := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	history := []domain.StatusChange{
		{Status: domain.StatusSubmitted, Timestamp: submitted},
		{Status: domain.StatusUnderReview, Timestamp: submitted.Add(time.Hour)},
	}
	rows := sqlmock.NewRows([]string{"id", "user_id", "scheme_id", "status", "form_data", "documents", "status_history", "submitted_at", "updated_at", "decision_explanation", "version"}).
		AddRow("a-1", "u-1", "pm-kisan", string(domain.StatusUnderReview),
			mustJSON(t, map[string]string{"aadhaar": "XXXX-1234"}),
			mustJSON(t, []domain.DocumentRef{{Type: "aadhaar", Name: "card.pdf"}}),
			mustJSON(t, history),
			submitted, submitted.Add(time.Hour), "", 2)

	mock.ExpectQuery("FROM application_records").
		WithArgs("a-1").
		WillReturnRows(rows)

	record, err := repo.GetApplication(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("GetApplication() error = %v", err)
	}
	if record.CurrentStatus() != domain.StatusUnderReview {
		t.Fatalf("expected under_review, got %s", record.CurrentStatus())
	}
	if len(record.StatusHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(record.StatusHistory))
	}
	if record.FormData["aadhaar"] != "XXXX-1234" {
		t.Fatalf("form data not decoded: %+v", record.FormData)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplicationRepositoryUpdateVersionConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE application_records").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM application_records").
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	record := &domain.ApplicationRecord{ID: "a-1", Version: 4, FormData: map[string]string{}}
	err := repo.UpdateApplication(context.Background(), record, 3)
	if !domain.IsKind(err, domain.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplicationRepositoryListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	submitted := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "scheme_id", "status", "form_data", "documents", "status_history", "submitted_at", "updated_at", "decision_explanation", "version"}).
		AddRow("a-2", "u-1", "widow-pension", string(domain.StatusSubmitted),
			mustJSON(t, map[string]string{}), mustJSON(t, []domain.DocumentRef{}),
			mustJSON(t, []domain.StatusChange{{Status: domain.StatusSubmitted, Timestamp: submitted}}),
			submitted, submitted, "", 1).
		AddRow("a-1", "u-1", "pm-kisan", string(domain.StatusApproved),
			mustJSON(t, map[string]string{}), mustJSON(t, []domain.DocumentRef{}),
			mustJSON(t, []domain.StatusChange{{Status: domain.StatusSubmitted, Timestamp: submitted.Add(-48 * time.Hour)}}),
			submitted.Add(-48*time.Hour), submitted, "all criteria satisfied", 3)

	mock.ExpectQuery("FROM application_records").
		WithArgs("u-1").
		WillReturnRows(rows)

	records, err := repo.ListApplicationsByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListApplicationsByUser() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "a-2" {
		t.Fatalf("expected newest first, got %s", records[0].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
