package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

// SchemeRepository serves the scheme catalog. Criteria are validated on
// upsert so every row read back is safe to evaluate against.
type SchemeRepository struct {
	db *sql.DB
}

func NewSchemeRepository(db *sql.DB) *SchemeRepository {
	return &SchemeRepository{db: db}
}

const schemeColumns = `id, entity, names, descriptions, benefits, required_documents, criteria, active, updated_at`

func (r *SchemeRepository) GetScheme(ctx context.Context, schemeID string) (*domain.Scheme, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+schemeColumns+`
FROM schemes
WHERE id = $1
`, schemeID)

	scheme, err := scanScheme(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get scheme", fmt.Errorf("scheme %s", schemeID))
		}
		return nil, fmt.Errorf("get scheme: %w", err)
	}
	return scheme, nil
}

func (r *SchemeRepository) ListCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Scheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM schemes`
	var (
		conditions []string
		args       []any
	)
	if !filter.IncludeInactive {
		conditions = append(conditions, "active = TRUE")
	}
	if filter.Entity != "" {
		args = append(args, filter.Entity)
		conditions = append(conditions, fmt.Sprintf("entity = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var schemes []domain.Scheme
	for rows.Next() {
		scheme, err := scanScheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if !matchesFilter(*scheme, filter) {
			continue
		}
		schemes = append(schemes, *scheme)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return schemes, nil
}

func (r *SchemeRepository) UpsertScheme(ctx context.Context, scheme domain.Scheme) error {
	if err := scheme.Criteria.Validate(); err != nil {
		return err
	}
	if scheme.UpdatedAt.IsZero() {
		scheme.UpdatedAt = time.Now().UTC()
	}

	names, err := json.Marshal(scheme.Names)
	if err != nil {
		return fmt.Errorf("encode names: %w", err)
	}
	descriptions, err := json.Marshal(scheme.Descriptions)
	if err != nil {
		return fmt.Errorf("encode descriptions: %w", err)
	}
	benefits, err := json.Marshal(scheme.Benefits)
	if err != nil {
		return fmt.Errorf("encode benefits: %w", err)
	}
	documents, err := json.Marshal(scheme.RequiredDocuments)
	if err != nil {
		return fmt.Errorf("encode required documents: %w", err)
	}
	criteria, err := json.Marshal(scheme.Criteria)
	if err != nil {
		return fmt.Errorf("encode criteria: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO schemes (id, entity, names, descriptions, benefits, required_documents, criteria, active, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	entity = EXCLUDED.entity,
	names = EXCLUDED.names,
	descriptions = EXCLUDED.descriptions,
	benefits = EXCLUDED.benefits,
	required_documents = EXCLUDED.required_documents,
	criteria = EXCLUDED.criteria,
	active = EXCLUDED.active,
	updated_at = EXCLUDED.updated_at
`, scheme.ID, scheme.Entity, names, descriptions, benefits, documents, criteria, scheme.Active, scheme.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert scheme: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheme(row rowScanner) (*domain.Scheme, error) {
	var (
		scheme       domain.Scheme
		names        []byte
		descriptions []byte
		benefits     []byte
		documents    []byte
		criteria     []byte
	)
	err := row.Scan(&scheme.ID, &scheme.Entity, &names, &descriptions, &benefits,
		&documents, &criteria, &scheme.Active, &scheme.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(names, &scheme.Names); err != nil {
		return nil, fmt.Errorf("decode names: %w", err)
	}
	if len(descriptions) > 0 {
		if err := json.Unmarshal(descriptions, &scheme.Descriptions); err != nil {
			return nil, fmt.Errorf("decode descriptions: %w", err)
		}
	}
	if len(benefits) > 0 {
		if err := json.Unmarshal(benefits, &scheme.Benefits); err != nil {
			return nil, fmt.Errorf("decode benefits: %w", err)
		}
	}
	if len(documents) > 0 {
		if err := json.Unmarshal(documents, &scheme.RequiredDocuments); err != nil {
			return nil, fmt.Errorf("decode required documents: %w", err)
		}
	}
	if err := json.Unmarshal(criteria, &scheme.Criteria); err != nil {
		return nil, fmt.Errorf("decode criteria: %w", err)
	}
	return &scheme, nil
}

// matchesFilter applies criteria-level narrowing that is cheaper to do on the
// decoded JSONB than in SQL: state and category reach inside the criteria
// document.
func matchesFilter(scheme domain.Scheme, filter domain.CandidateFilter) bool {
	if filter.State != "" && len(scheme.Criteria.AllowedStates) > 0 {
		if !containsFold(scheme.Criteria.AllowedStates, filter.State) {
			return false
		}
	}
	if filter.Category != "" && len(scheme.Criteria.Categories) > 0 {
		found := false
		for _, c := range scheme.Criteria.Categories {
			if c == filter.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
