package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

// ApplicationRepository persists application records. The status history is
// stored as a JSONB array and only ever appended to; the denormalized status
// column exists for cheap filtering and always mirrors the last entry.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, user_id, scheme_id, status, form_data, documents, status_history, submitted_at, updated_at, decision_explanation, version`

func (r *ApplicationRepository) CreateApplication(ctx context.Context, record *domain.ApplicationRecord) error {
	formData, documents, history, err := encodeApplication(record)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO application_records (`+applicationColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, record.ID, record.UserID, record.SchemeID, record.Status, formData, documents, history,
		record.SubmittedAt, record.UpdatedAt, record.DecisionExplanation, record.Version)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) GetApplication(ctx context.Context, applicationID string) (*domain.ApplicationRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+applicationColumns+`
FROM application_records
WHERE id = $1
`, applicationID)

	record, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get application", fmt.Errorf("application %s", applicationID))
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return record, nil
}

func (r *ApplicationRepository) UpdateApplication(ctx context.Context, record *domain.ApplicationRecord, expectedVersion int) error {
	formData, documents, history, err := encodeApplication(record)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE application_records
SET status = $2, form_data = $3, documents = $4, status_history = $5,
	updated_at = $6, decision_explanation = $7, version = $8
WHERE id = $1 AND version = $9
`, record.ID, record.Status, formData, documents, history,
		record.UpdatedAt, record.DecisionExplanation, record.Version, expectedVersion)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	return checkVersionedUpdate(ctx, r.db, result, "update application",
		`SELECT 1 FROM application_records WHERE id = $1`, record.ID)
}

func (r *ApplicationRepository) ListApplicationsByUser(ctx context.Context, userID string) ([]domain.ApplicationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+applicationColumns+`
FROM application_records
WHERE user_id = $1
ORDER BY submitted_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var records []domain.ApplicationRecord
	for rows.Next() {
		record, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return records, nil
}

func encodeApplication(record *domain.ApplicationRecord) (formData, documents, history []byte, err error) {
	if formData, err = json.Marshal(record.FormData); err != nil {
		return nil, nil, nil, fmt.Errorf("encode form data: %w", err)
	}
	if documents, err = json.Marshal(record.Documents); err != nil {
		return nil, nil, nil, fmt.Errorf("encode documents: %w", err)
	}
	if history, err = json.Marshal(record.StatusHistory); err != nil {
		return nil, nil, nil, fmt.Errorf("encode status history: %w", err)
	}
	return formData, documents, history, nil
}

func scanApplication(row rowScanner) (*domain.ApplicationRecord, error) {
	var (
		record    domain.ApplicationRecord
		formData  []byte
		documents []byte
		history   []byte
	)
	err := row.Scan(&record.ID, &record.UserID, &record.SchemeID, &record.Status,
		&formData, &documents, &history, &record.SubmittedAt, &record.UpdatedAt,
		&record.DecisionExplanation, &record.Version)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(formData, &record.FormData); err != nil {
		return nil, fmt.Errorf("decode form data: %w", err)
	}
	if err := json.Unmarshal(documents, &record.Documents); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	if err := json.Unmarshal(history, &record.StatusHistory); err != nil {
		return nil, fmt.Errorf("decode status history: %w", err)
	}
	return &record, nil
}
