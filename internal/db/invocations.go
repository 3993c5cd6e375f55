package db

import (
	"context"

	"github.com/tracelens/backend/internal/model"
)

func (db *Postgres) EnsureInvocationSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS model_invocations (
			id UUID PRIMARY KEY,
			issue_id TEXT NOT NULL,
			model TEXT NOT NULL,
			tokens_used INTEGER,
			success BOOLEAN NOT NULL,
			duration_ms BIGINT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS model_invocations_issue_id_idx ON model_invocations(issue_id)`,
		`CREATE INDEX IF NOT EXISTS model_invocations_created_at_idx ON model_invocations(created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) InsertModelInvocation(ctx context.Context, rec model.ModelInvocation) error {
	query := `
		INSERT INTO model_invocations (id, issue_id, model, tokens_used, success, duration_ms, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := db.Pool.Exec(ctx, query,
		rec.ID,
		rec.IssueID,
		rec.Model,
		rec.TokensUsed,
		rec.Success,
		rec.DurationMS,
		rec.Error,
	)
	return err
}
