package model

import (
	"strings"
	"time"
)

// IssuePriority - priority suggested by the analysis engine.
type IssuePriority string

const (
	PriorityLow      IssuePriority = "low"
	PriorityMedium   IssuePriority = "medium"
	PriorityHigh     IssuePriority = "high"
	PriorityCritical IssuePriority = "critical"
)

// ParsePriority maps a free-text priority from the model onto the enum.
// Matching is case-insensitive; anything unknown falls back to medium.
func ParsePriority(value string) IssuePriority {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return PriorityLow
	case "medium":
		return PriorityMedium
	case "high":
		return PriorityHigh
	case "critical":
		return PriorityCritical
	default:
		return PriorityMedium
	}
}

// AnalysisResult - structured output of one analysis of one issue.
type AnalysisResult struct {
	IssueID              string        `json:"issue_id"`
	Summary              string        `json:"summary"`
	RootCause            string        `json:"root_cause"`
	TechnicalDescription string        `json:"technical_description"`
	StepsToReproduce     []string      `json:"steps_to_reproduce"`
	SuggestedFix         string        `json:"suggested_fix"`
	CodeExamples         string        `json:"code_examples,omitempty"`
	Priority             IssuePriority `json:"priority"`
	EstimatedEffort      string        `json:"estimated_effort"`
	AffectedComponents   []string      `json:"affected_components"`
	RelatedIssues        []string      `json:"related_issues"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// TokenUsage - token accounting reported by the completion endpoint.
type TokenUsage struct {
	TotalTokens int32 `json:"total_tokens"`
}

// ModelInvocation - observability record emitted for every completion
// attempt, success or failure.
type ModelInvocation struct {
	ID         string    `json:"id"`
	IssueID    string    `json:"issue_id"`
	Model      string    `json:"model"`
	TokensUsed *int32    `json:"tokens_used,omitempty"`
	Success    bool      `json:"success"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnalyzeOutcome - terminal result of one workflow run.
type AnalyzeOutcome struct {
	IssueID  string          `json:"issue_id"`
	Status   IssueStatus     `json:"status"`
	Analysis *AnalysisResult `json:"analysis"`
}

// SimilarIssue - a previously analyzed issue ranked by embedding distance.
type SimilarIssue struct {
	IssueID    string  `json:"issue_id"`
	Summary    string  `json:"summary"`
	Similarity float64 `json:"similarity"`
}
