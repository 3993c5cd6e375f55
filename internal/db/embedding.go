package db

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/tracelens/backend/internal/model"
)

func (db *Postgres) EnsureEmbeddingSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`
		CREATE TABLE IF NOT EXISTS issue_embeddings (
			id BIGSERIAL PRIMARY KEY,
			issue_id TEXT NOT NULL,
			workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
			summary TEXT NOT NULL,
			embedding vector(768),
			model TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (issue_id, workspace_id)
		)
		`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) UpsertIssueEmbedding(ctx context.Context, issueID, workspaceID, summary, model string, vector []float32) (int64, error) {
	query := `
		INSERT INTO issue_embeddings (issue_id, workspace_id, summary, embedding, model)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (issue_id, workspace_id) DO UPDATE SET
			summary = EXCLUDED.summary,
			embedding = EXCLUDED.embedding,
			model = EXCLUDED.model,
			created_at = NOW()
		RETURNING id
	`
	var id int64
	err := db.Pool.QueryRow(ctx, query, issueID, workspaceID, summary, pgvector.NewVector(vector), model).Scan(&id)
	return id, err
}

// FindSimilarIssues ranks previously analyzed issues in the workspace by
// cosine distance to the given vector, excluding the issue itself.
func (db *Postgres) FindSimilarIssues(ctx context.Context, workspaceID, excludeIssueID string, vector []float32, limit int) ([]model.SimilarIssue, error) {
	query := `
		SELECT issue_id, summary, 1 - (embedding <=> $1) AS similarity
		FROM issue_embeddings
		WHERE workspace_id = $2 AND issue_id <> $3
		ORDER BY embedding <=> $1
		LIMIT $4
	`

	rows, err := db.Pool.Query(ctx, query, pgvector.NewVector(vector), workspaceID, excludeIssueID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.SimilarIssue
	for rows.Next() {
		var s model.SimilarIssue
		if err := rows.Scan(&s.IssueID, &s.Summary, &s.Similarity); err != nil {
			return nil, err
		}
		list = append(list, s)
	}

	if list == nil {
		list = []model.SimilarIssue{}
	}
	return list, nil
}

func (db *Postgres) GetIssueEmbedding(ctx context.Context, issueID, workspaceID string) ([]float32, error) {
	query := `
		SELECT embedding
		FROM issue_embeddings
		WHERE issue_id = $1 AND workspace_id = $2
	`
	var vec pgvector.Vector
	if err := db.Pool.QueryRow(ctx, query, issueID, workspaceID).Scan(&vec); err != nil {
		return nil, err
	}
	return vec.Slice(), nil
}
