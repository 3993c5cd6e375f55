package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tracelens/backend/internal/model"
)

const analysisSystemInstruction = "You are a senior software engineer and technical writer. " +
	"Your task is to analyze software errors and create detailed technical specifications for developers."

// CompletionClient - generative-model completion endpoint.
type CompletionClient interface {
	Complete(ctx context.Context, system, prompt string) (string, *model.TokenUsage, error)
	ModelName() string
}

// InvocationRecorder receives one observability record per completion
// attempt, success or failure.
type InvocationRecorder interface {
	RecordInvocation(ctx context.Context, rec model.ModelInvocation)
}

type AnalysisEngine struct {
	client   CompletionClient
	recorder InvocationRecorder
}

func NewAnalysisEngine(client CompletionClient, recorder InvocationRecorder) *AnalysisEngine {
	return &AnalysisEngine{client: client, recorder: recorder}
}

// Analyze turns an issue plus recent events into a structured analysis.
// A failed completion call yields nil; malformed model output degrades to a
// placeholder result instead. Either way the caller gets a terminal answer
// within one call - the raw error never propagates.
func (e *AnalysisEngine) Analyze(ctx context.Context, issue *model.Issue, events []map[string]any) *model.AnalysisResult {
	prompt := buildAnalysisPrompt(issue, events)

	start := time.Now()
	text, usage, err := e.client.Complete(ctx, analysisSystemInstruction, prompt)
	e.record(ctx, issue.ID, usage, err, time.Since(start))

	if err != nil {
		log.Printf("Completion failed for issue %s: %v", issue.ID, err)
		return nil
	}

	return parseAnalysisResponse(text, issue.ID)
}

func (e *AnalysisEngine) record(ctx context.Context, issueID string, usage *model.TokenUsage, err error, elapsed time.Duration) {
	if e.recorder == nil {
		return
	}

	rec := model.ModelInvocation{
		ID:         uuid.NewString(),
		IssueID:    issueID,
		Model:      e.client.ModelName(),
		Success:    err == nil,
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if usage != nil {
		tokens := usage.TotalTokens
		rec.TokensUsed = &tokens
	}
	if err != nil {
		rec.Error = err.Error()
	}

	e.recorder.RecordInvocation(ctx, rec)
}

func buildAnalysisPrompt(issue *model.Issue, events []map[string]any) string {
	tagsJSON, _ := json.MarshalIndent(issue.Tags, "", "  ")
	metadataJSON, _ := json.MarshalIndent(issue.Metadata, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, `
Please analyze the following software error and provide a comprehensive technical specification:

**Error Details:**
- Title: %s
- Message: %s
- Level: %s
- Platform: %s
- Project: %s
- Occurrences: %d times
- Affected Users: %d
- First Seen: %s
- Last Seen: %s

**Tags:** %s

**Additional Context:** %s
`,
		issue.Title,
		issue.Message,
		issue.Level,
		issue.Platform,
		issue.ProjectName,
		issue.Count,
		issue.UserCount,
		issue.FirstSeen.Format(time.RFC3339),
		issue.LastSeen.Format(time.RFC3339),
		tagsJSON,
		metadataJSON,
	)

	if len(events) > 0 {
		if len(events) > 3 {
			events = events[:3]
		}
		eventsJSON, _ := json.MarshalIndent(events, "", "  ")
		fmt.Fprintf(&b, "\n**Recent Events:** %s\n", eventsJSON)
	}

	b.WriteString(`
Please provide your analysis in the following JSON format:

{
    "summary": "Brief 1-2 sentence summary of the issue",
    "root_cause": "Detailed explanation of what is causing this error",
    "technical_description": "Technical details about the error for developers",
    "steps_to_reproduce": ["Step 1", "Step 2", "Step 3"],
    "suggested_fix": "Detailed explanation of how to fix this issue",
    "code_examples": "Code examples or configuration changes needed (if applicable)",
    "priority": "low|medium|high|critical",
    "estimated_effort": "Time estimate (e.g., '2-4 hours', '1-2 days')",
    "affected_components": ["component1", "component2"],
    "related_issues": []
}

Focus on:
1. Identifying the root cause from the error message and context
2. Providing actionable steps for developers
3. Estimating the impact and effort required
4. Suggesting preventive measures if applicable
`)

	return b.String()
}

type rawAnalysis struct {
	Summary              string   `json:"summary"`
	RootCause            string   `json:"root_cause"`
	TechnicalDescription string   `json:"technical_description"`
	StepsToReproduce     []string `json:"steps_to_reproduce"`
	SuggestedFix         string   `json:"suggested_fix"`
	CodeExamples         string   `json:"code_examples"`
	Priority             string   `json:"priority"`
	EstimatedEffort      string   `json:"estimated_effort"`
	AffectedComponents   []string `json:"affected_components"`
	RelatedIssues        []string `json:"related_issues"`
}

// parseAnalysisResponse extracts the first {...} span from the completion
// text (the model may wrap it in prose) and decodes it. Anything that does
// not decode produces the degraded fallback result.
func parseAnalysisResponse(text, issueID string) *model.AnalysisResult {
	now := time.Now().UTC()

	jsonText, err := extractJSONObject(text)
	if err == nil {
		var raw rawAnalysis
		err = json.Unmarshal([]byte(jsonText), &raw)
		if err == nil {
			effort := raw.EstimatedEffort
			if effort == "" {
				effort = "Unknown"
			}
			return &model.AnalysisResult{
				IssueID:              issueID,
				Summary:              raw.Summary,
				RootCause:            raw.RootCause,
				TechnicalDescription: raw.TechnicalDescription,
				StepsToReproduce:     emptyIfNil(raw.StepsToReproduce),
				SuggestedFix:         raw.SuggestedFix,
				CodeExamples:         raw.CodeExamples,
				Priority:             model.ParsePriority(raw.Priority),
				EstimatedEffort:      effort,
				AffectedComponents:   emptyIfNil(raw.AffectedComponents),
				RelatedIssues:        emptyIfNil(raw.RelatedIssues),
				CreatedAt:            now,
				UpdatedAt:            now,
			}
		}
	}

	log.Printf("Failed to parse analysis response for issue %s: %v", issueID, err)

	return &model.AnalysisResult{
		IssueID:              issueID,
		Summary:              "AI analysis parsing failed",
		RootCause:            "Unable to analyze due to parsing error",
		TechnicalDescription: "Manual review required",
		StepsToReproduce:     []string{},
		SuggestedFix:         "Please review this issue manually",
		Priority:             model.PriorityMedium,
		EstimatedEffort:      "Unknown",
		AffectedComponents:   []string{},
		RelatedIssues:        []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func extractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return text[start : end+1], nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
