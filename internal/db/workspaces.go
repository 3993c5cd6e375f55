package db

import (
	"context"

	"github.com/tracelens/backend/internal/model"
)

func (db *Postgres) EnsureWorkspaceSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS workspaces (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			owner_id BIGINT NOT NULL REFERENCES users(id),
			tracker_api_token TEXT NOT NULL DEFAULT '',
			tracker_org TEXT NOT NULL DEFAULT '',
			model_api_key TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS workspaces_owner_id_idx ON workspaces(owner_id)`,
		`
		CREATE TABLE IF NOT EXISTS workspace_settings (
			workspace_id UUID PRIMARY KEY REFERENCES workspaces(id) ON DELETE CASCADE,
			model_name TEXT NOT NULL DEFAULT '',
			auto_analyze BOOLEAN NOT NULL DEFAULT FALSE,
			notification_email BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
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

func (db *Postgres) CreateWorkspace(ctx context.Context, ws model.Workspace) (*model.Workspace, error) {
	query := `
		INSERT INTO workspaces (id, name, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, name, description, owner_id, tracker_api_token, tracker_org, model_api_key, created_at, updated_at
	`
	var created model.Workspace
	err := db.Pool.QueryRow(ctx, query, ws.ID, ws.Name, ws.Description, ws.OwnerID).Scan(
		&created.ID,
		&created.Name,
		&created.Description,
		&created.OwnerID,
		&created.TrackerAPIToken,
		&created.TrackerOrg,
		&created.ModelAPIKey,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (db *Postgres) GetWorkspaceByID(ctx context.Context, workspaceID string) (*model.Workspace, error) {
	query := `
		SELECT id, name, description, owner_id, tracker_api_token, tracker_org, model_api_key, created_at, updated_at
		FROM workspaces
		WHERE id = $1
	`
	var ws model.Workspace
	err := db.Pool.QueryRow(ctx, query, workspaceID).Scan(
		&ws.ID,
		&ws.Name,
		&ws.Description,
		&ws.OwnerID,
		&ws.TrackerAPIToken,
		&ws.TrackerOrg,
		&ws.ModelAPIKey,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// UpdateWorkspace applies only the fields present in the request; nil
// pointers leave the current value untouched.
func (db *Postgres) UpdateWorkspace(ctx context.Context, workspaceID string, req model.UpdateWorkspaceRequest) error {
	query := `
		UPDATE workspaces
		SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			tracker_api_token = COALESCE($4, tracker_api_token),
			tracker_org = COALESCE($5, tracker_org),
			model_api_key = COALESCE($6, model_api_key),
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := db.Pool.Exec(ctx, query, workspaceID,
		req.Name,
		req.Description,
		req.TrackerAPIToken,
		req.TrackerOrg,
		req.ModelAPIKey,
	)
	return err
}

func (db *Postgres) GetSettings(ctx context.Context, workspaceID string) (*model.WorkspaceSettings, error) {
	query := `
		SELECT workspace_id, model_name, auto_analyze, notification_email, updated_at
		FROM workspace_settings
		WHERE workspace_id = $1
	`
	var settings model.WorkspaceSettings
	err := db.Pool.QueryRow(ctx, query, workspaceID).Scan(
		&settings.WorkspaceID,
		&settings.ModelName,
		&settings.AutoAnalyze,
		&settings.NotificationEmail,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (db *Postgres) UpsertSettings(ctx context.Context, workspaceID string, req model.UpdateSettingsRequest) error {
	query := `
		INSERT INTO workspace_settings (workspace_id, model_name, auto_analyze, notification_email, updated_at)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, FALSE), COALESCE($4, TRUE), NOW())
		ON CONFLICT (workspace_id) DO UPDATE SET
			model_name = COALESCE($2, workspace_settings.model_name),
			auto_analyze = COALESCE($3, workspace_settings.auto_analyze),
			notification_email = COALESCE($4, workspace_settings.notification_email),
			updated_at = NOW()
	`
	_, err := db.Pool.Exec(ctx, query, workspaceID, req.ModelName, req.AutoAnalyze, req.NotificationEmail)
	return err
}
