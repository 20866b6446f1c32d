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

// ProfileRepository stores profiles as one JSONB document per user with a
// version column for optimistic concurrency. Encryption at rest of sensitive
// fields is the database's concern, not this layer's.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT profile, version, updated_at
FROM user_profiles
WHERE user_id = $1
`, userID)

	var (
		raw       []byte
		version   int
		updatedAt time.Time
	)
	if err := row.Scan(&raw, &version, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get profile", fmt.Errorf("user %s", userID))
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	profile.ID = userID
	profile.Version = version
	profile.UpdatedAt = updatedAt
	return &profile, nil
}

func (r *ProfileRepository) CreateProfile(ctx context.Context, profile *domain.UserProfile) error {
	if profile.Version == 0 {
		profile.Version = 1
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO user_profiles (user_id, profile, version, updated_at)
VALUES ($1, $2, $3, $4)
`, profile.ID, raw, profile.Version, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) UpdateProfile(ctx context.Context, profile *domain.UserProfile, expectedVersion int) error {
	profile.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE user_profiles
SET profile = $2, version = $3, updated_at = $4
WHERE user_id = $1 AND version = $5
`, profile.ID, raw, profile.Version, profile.UpdatedAt, expectedVersion)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return checkVersionedUpdate(ctx, r.db, result, "update profile",
		`SELECT 1 FROM user_profiles WHERE user_id = $1`, profile.ID)
}

// checkVersionedUpdate distinguishes a version conflict from a missing row
// when a conditional update touched nothing.
func checkVersionedUpdate(ctx context.Context, db *sql.DB, result sql.Result, operation, existsQuery string, key string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if rows > 0 {
		return nil
	}

	var one int
	err = db.QueryRowContext(ctx, existsQuery, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WrapError(domain.ErrNotFound, operation, fmt.Errorf("key %s", key))
	}
	if err != nil {
		return fmt.Errorf("%s exists check: %w", operation, err)
	}
	return domain.WrapError(domain.ErrConcurrentModification, operation,
		fmt.Errorf("stored version changed for key %s", key))
}
