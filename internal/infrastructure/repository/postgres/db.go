package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS schemes (
	id TEXT PRIMARY KEY,
	entity TEXT NOT NULL,
	names JSONB NOT NULL,
	descriptions JSONB,
	benefits JSONB,
	required_documents JSONB,
	criteria JSONB NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS user_profiles (
	user_id TEXT PRIMARY KEY,
	profile JSONB NOT NULL,
	version INTEGER NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_contexts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	messages JSONB NOT NULL,
	extracted_intent JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	version INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversation_contexts_expires_at ON conversation_contexts (expires_at);

CREATE TABLE IF NOT EXISTS application_records (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	scheme_id TEXT NOT NULL,
	status TEXT NOT NULL,
	form_data JSONB NOT NULL,
	documents JSONB NOT NULL,
	status_history JSONB NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	decision_explanation TEXT,
	version INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_application_records_user_id ON application_records (user_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return tx.Commit()
}
