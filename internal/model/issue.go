package model

import "time"

// IssueStatus - processing state of an issue within a workspace.
type IssueStatus string

const (
	StatusPending   IssueStatus = "pending"
	StatusAnalyzing IssueStatus = "analyzing"
	StatusCompleted IssueStatus = "completed"
	StatusFailed    IssueStatus = "failed"
)

func (s IssueStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAnalyzing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Issue - snapshot of an issue fetched from the tracker. Read-only from our
// side; the tracker stays authoritative.
type Issue struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Culprit     string            `json:"culprit,omitempty"`
	Message     string            `json:"message"`
	Level       string            `json:"level"`
	Platform    string            `json:"platform"`
	ProjectID   string            `json:"project_id"`
	ProjectName string            `json:"project_name"`
	FirstSeen   time.Time         `json:"first_seen"`
	LastSeen    time.Time         `json:"last_seen"`
	Count       int               `json:"count"`
	UserCount   int               `json:"user_count"`
	Permalink   string            `json:"permalink"`
	Tags        map[string]string `json:"tags"`
	Metadata    map[string]any    `json:"metadata" swaggertype:"object"`
}

// Project - tracker project as returned by the list endpoint.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// IssuePage - one page of issues plus the opaque pagination cursors pulled
// out of the tracker's Link response header.
type IssuePage struct {
	Issues     []Issue `json:"issues"`
	NextCursor string  `json:"next_cursor,omitempty"`
	PrevCursor string  `json:"prev_cursor,omitempty"`
	HasNext    bool    `json:"has_next"`
}

// TrackerCredentials - the per-workspace secrets the tracker client runs on.
type TrackerCredentials struct {
	APIToken     string
	Organization string
}

// ProcessedIssue - our durable record of one analysis attempt, unique per
// (issue_id, workspace_id).
type ProcessedIssue struct {
	ID          string          `json:"id"`
	Issue       Issue           `json:"issue"`
	Analysis    *AnalysisResult `json:"analysis,omitempty"`
	Status      IssueStatus     `json:"status"`
	AssignedTo  *string         `json:"assigned_to,omitempty"`
	CreatedBy   int64           `json:"created_by"`
	WorkspaceID string          `json:"workspace_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProcessedStatus - compact processing state attached to tracker issue
// listings.
type ProcessedStatus struct {
	Status      IssueStatus `json:"status"`
	HasAnalysis bool        `json:"has_analysis"`
}
