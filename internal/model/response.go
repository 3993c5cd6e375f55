package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type AuthLogoutResponse struct {
	Status string `json:"status"`
}

type AuthMeResponse struct {
	UserID      int64   `json:"userId"`
	LoginID     string  `json:"loginId"`
	WorkspaceID *string `json:"workspaceId"`
}

// IssueListResponse - one tracker page merged with the workspace's
// processing state per issue.
type IssueListResponse struct {
	Issues     []IssueWithStatus `json:"issues"`
	Pagination Pagination        `json:"pagination"`
}

type IssueWithStatus struct {
	Issue
	ProcessingStatus ProcessedStatus `json:"processing_status"`
}

type Pagination struct {
	NextCursor string `json:"next_cursor,omitempty"`
	PrevCursor string `json:"prev_cursor,omitempty"`
	HasNext    bool   `json:"has_next"`
}

// IssueDetailResponse - either the locally processed record or a fresh
// tracker snapshot, whichever exists.
type IssueDetailResponse struct {
	ProcessedIssue *ProcessedIssue `json:"processed_issue,omitempty"`
	Issue          *Issue          `json:"issue,omitempty"`
}

type WorkspaceEnvelope struct {
	Message   string    `json:"message,omitempty"`
	Workspace Workspace `json:"workspace"`
}

// TrackerTestResponse - detailed connection diagnostics plus a sample of
// reachable projects when the credentials check out.
type TrackerTestResponse struct {
	Connected     bool      `json:"connected"`
	Reason        string    `json:"reason"`
	Message       string    `json:"message"`
	ProjectsCount int       `json:"projects_count,omitempty"`
	Projects      []Project `json:"projects,omitempty"`
}

type ModelTestResponse struct {
	Connected bool   `json:"connected"`
	Model     string `json:"model,omitempty"`
	Message   string `json:"message,omitempty"`
}

type SimilarIssuesResponse struct {
	IssueID string         `json:"issue_id"`
	Similar []SimilarIssue `json:"similar"`
}
