package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tracelens/backend/internal/model"
)

func (db *Postgres) EnsureIssueSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS processed_issues (
			id UUID PRIMARY KEY,
			issue_id TEXT NOT NULL,
			workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
			issue JSONB NOT NULL,
			analysis JSONB,
			status TEXT NOT NULL DEFAULT 'pending',
			assigned_to TEXT,
			created_by BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (issue_id, workspace_id)
		)
		`,
		`CREATE INDEX IF NOT EXISTS processed_issues_workspace_id_idx ON processed_issues(workspace_id)`,
		`CREATE INDEX IF NOT EXISTS processed_issues_status_idx ON processed_issues(status)`,
		`CREATE INDEX IF NOT EXISTS processed_issues_created_at_idx ON processed_issues(created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) FindByIssueAndWorkspace(ctx context.Context, issueID, workspaceID string) (*model.ProcessedIssue, error) {
	query := `
		SELECT id, issue_id, workspace_id, issue, analysis, status, assigned_to, created_by, created_at, updated_at
		FROM processed_issues
		WHERE issue_id = $1 AND workspace_id = $2
	`
	return db.scanProcessedIssue(db.Pool.QueryRow(ctx, query, issueID, workspaceID))
}

// ClaimAnalyzing is the workflow's concurrency guard: a single conditional
// upsert that only transitions to ANALYZING when the current status is not
// ANALYZING, or when an ANALYZING record has gone stale (crashed run).
// Losing the race yields pgx.ErrNoRows.
func (db *Postgres) ClaimAnalyzing(ctx context.Context, rec model.ProcessedIssue, staleAfter time.Duration) (string, error) {
	issueJSON, err := json.Marshal(rec.Issue)
	if err != nil {
		return "", fmt.Errorf("failed to marshal issue snapshot: %w", err)
	}

	query := `
		INSERT INTO processed_issues (id, issue_id, workspace_id, issue, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'analyzing', $5, NOW(), NOW())
		ON CONFLICT (issue_id, workspace_id) DO UPDATE SET
			issue = EXCLUDED.issue,
			status = 'analyzing',
			created_by = EXCLUDED.created_by,
			updated_at = NOW()
		WHERE processed_issues.status <> 'analyzing'
		   OR processed_issues.updated_at < NOW() - make_interval(secs => $6)
		RETURNING id
	`

	var id string
	err = db.Pool.QueryRow(ctx, query,
		rec.ID,
		rec.Issue.ID,
		rec.WorkspaceID,
		issueJSON,
		rec.CreatedBy,
		staleAfter.Seconds(),
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (db *Postgres) SetAnalysisCompleted(ctx context.Context, id string, analysis *model.AnalysisResult) error {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	query := `
		UPDATE processed_issues
		SET analysis = $2, status = 'completed', updated_at = NOW()
		WHERE id = $1
	`
	_, err = db.Pool.Exec(ctx, query, id, analysisJSON)
	return err
}

func (db *Postgres) SetAnalysisFailed(ctx context.Context, id string) error {
	query := `
		UPDATE processed_issues
		SET status = 'failed', updated_at = NOW()
		WHERE id = $1
	`
	_, err := db.Pool.Exec(ctx, query, id)
	return err
}

func (db *Postgres) ListByWorkspace(ctx context.Context, workspaceID string, status model.IssueStatus, limit, offset int) ([]model.ProcessedIssue, error) {
	query := `
		SELECT id, issue_id, workspace_id, issue, analysis, status, assigned_to, created_by, created_at, updated_at
		FROM processed_issues
		WHERE workspace_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := db.Pool.Query(ctx, query, workspaceID, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.ProcessedIssue
	for rows.Next() {
		rec, err := db.scanProcessedIssue(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rec)
	}

	if list == nil {
		list = []model.ProcessedIssue{}
	}
	return list, nil
}

// GetStatusByIssueIDs returns the processing state for the subset of the
// given tracker issue IDs that have a record in this workspace.
func (db *Postgres) GetStatusByIssueIDs(ctx context.Context, workspaceID string, issueIDs []string) (map[string]model.ProcessedStatus, error) {
	statuses := map[string]model.ProcessedStatus{}
	if len(issueIDs) == 0 {
		return statuses, nil
	}

	query := `
		SELECT issue_id, status, analysis IS NOT NULL
		FROM processed_issues
		WHERE workspace_id = $1 AND issue_id = ANY($2)
	`

	rows, err := db.Pool.Query(ctx, query, workspaceID, issueIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var issueID string
		var status model.IssueStatus
		var hasAnalysis bool
		if err := rows.Scan(&issueID, &status, &hasAnalysis); err != nil {
			return nil, err
		}
		statuses[issueID] = model.ProcessedStatus{Status: status, HasAnalysis: hasAnalysis}
	}
	return statuses, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *Postgres) scanProcessedIssue(row rowScanner) (*model.ProcessedIssue, error) {
	var rec model.ProcessedIssue
	var issueJSON []byte
	var analysisJSON []byte

	err := row.Scan(
		&rec.ID,
		new(string), // issue_id is embedded in the snapshot
		&rec.WorkspaceID,
		&issueJSON,
		&analysisJSON,
		&rec.Status,
		&rec.AssignedTo,
		&rec.CreatedBy,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(issueJSON, &rec.Issue); err != nil {
		return nil, fmt.Errorf("failed to unmarshal issue snapshot: %w", err)
	}
	if len(analysisJSON) > 0 {
		rec.Analysis = &model.AnalysisResult{}
		if err := json.Unmarshal(analysisJSON, rec.Analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis result: %w", err)
		}
	}
	return &rec, nil
}
