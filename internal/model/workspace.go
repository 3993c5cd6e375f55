package model

import "time"

// Workspace - tenant boundary owning tracker/model credentials and the
// processed issue records created under it.
type Workspace struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	OwnerID         int64     `json:"owner_id"`
	TrackerAPIToken string    `json:"tracker_api_token,omitempty"`
	TrackerOrg      string    `json:"tracker_organization,omitempty"`
	ModelAPIKey     string    `json:"model_api_key,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Masked returns a copy safe to hand back to a caller. Secrets are never
// echoed verbatim on any read path.
func (w Workspace) Masked() Workspace {
	masked := w
	if masked.TrackerAPIToken != "" {
		masked.TrackerAPIToken = "***"
	}
	if masked.ModelAPIKey != "" {
		masked.ModelAPIKey = "***"
	}
	return masked
}

// Credentials extracts the tracker-facing secrets.
func (w Workspace) Credentials() TrackerCredentials {
	return TrackerCredentials{
		APIToken:     w.TrackerAPIToken,
		Organization: w.TrackerOrg,
	}
}

type CreateWorkspaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateWorkspaceRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	TrackerAPIToken *string `json:"tracker_api_token"`
	TrackerOrg      *string `json:"tracker_organization"`
	ModelAPIKey     *string `json:"model_api_key"`
}

// WorkspaceSettings - per-workspace analysis preferences.
type WorkspaceSettings struct {
	WorkspaceID       string    `json:"workspace_id"`
	ModelName         string    `json:"model_name"`
	AutoAnalyze       bool      `json:"auto_analyze"`
	NotificationEmail bool      `json:"notification_email"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type UpdateSettingsRequest struct {
	ModelName         *string `json:"model_name"`
	AutoAnalyze       *bool   `json:"auto_analyze"`
	NotificationEmail *bool   `json:"notification_email"`
}

// ConnectionStatus - tagged outcome of a detailed tracker connection test,
// used for user-facing diagnostics on the workspace settings screen.
type ConnectionStatus struct {
	Success    bool   `json:"success"`
	Reason     string `json:"reason"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

const (
	ConnReasonOK           = "ok"
	ConnReasonInvalidToken = "invalid_token"
	ConnReasonOrgNotFound  = "organization_not_found"
	ConnReasonAPIError     = "api_error"
	ConnReasonTimeout      = "timeout"
	ConnReasonNetworkError = "network_error"
)
