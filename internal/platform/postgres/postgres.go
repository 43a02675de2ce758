// Package postgres owns the pgx connection pool and the schema.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

// Schema statements, applied in order. Idempotent so startup can always run
// them.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS questionnaires (
		id           UUID PRIMARY KEY,
		owner_id     UUID NOT NULL,
		title        TEXT NOT NULL,
		slug         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL,
		starts_at    TIMESTAMPTZ,
		ends_at      TIMESTAMPTZ,
		settings     JSONB NOT NULL DEFAULT '{}',
		questions    JSONB NOT NULL DEFAULT '[]',
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL,
		published_at TIMESTAMPTZ,
		closed_at    TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS questionnaires_slug_key ON questionnaires (slug)`,
	`CREATE INDEX IF NOT EXISTS questionnaires_owner_idx ON questionnaires (owner_id)`,

	`CREATE TABLE IF NOT EXISTS responses (
		id               UUID PRIMARY KEY,
		questionnaire_id UUID NOT NULL,
		respondent_type  TEXT NOT NULL DEFAULT '',
		respondent_id    TEXT NOT NULL DEFAULT '',
		ip_address       TEXT NOT NULL DEFAULT '',
		user_agent       TEXT NOT NULL DEFAULT '',
		metadata         JSONB NOT NULL DEFAULT '{}',
		answers          JSONB NOT NULL DEFAULT '[]',
		dedup_scope      TEXT,
		submitted_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS responses_questionnaire_idx ON responses (questionnaire_id)`,
	`CREATE INDEX IF NOT EXISTS responses_ip_idx ON responses (questionnaire_id, ip_address)`,
	`CREATE INDEX IF NOT EXISTS responses_respondent_idx ON responses (questionnaire_id, respondent_type, respondent_id)`,
	// Database-level backstop for the duplicate-submission guards: the guard
	// check and the insert are not one atomic step, so concurrent submissions
	// that both pass the check collapse here instead of both landing.
	`CREATE UNIQUE INDEX IF NOT EXISTS responses_dedup_scope_key
		ON responses (questionnaire_id, dedup_scope) WHERE dedup_scope IS NOT NULL`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
