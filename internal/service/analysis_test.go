package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tracelens/backend/internal/model"
)

type fakeCompletion struct {
	text  string
	usage *model.TokenUsage
	err   error
}

func (f *fakeCompletion) Complete(ctx context.Context, system, prompt string) (string, *model.TokenUsage, error) {
	return f.text, f.usage, f.err
}

func (f *fakeCompletion) ModelName() string { return "test-model" }

type fakeRecorder struct {
	records []model.ModelInvocation
}

func (f *fakeRecorder) RecordInvocation(ctx context.Context, rec model.ModelInvocation) {
	f.records = append(f.records, rec)
}

func testIssue() *model.Issue {
	return &model.Issue{
		ID:        "1001",
		Title:     "NullPointerException in PaymentService",
		Message:   "payment failed",
		Level:     "error",
		Platform:  "java",
		Count:     12,
		UserCount: 3,
		FirstSeen: time.Now().Add(-24 * time.Hour),
		LastSeen:  time.Now(),
	}
}

func TestAnalyzeParsesStructuredResponse(t *testing.T) {
	completion := &fakeCompletion{
		text: `Here is my analysis:
{
  "summary": "NPE on missing payment method",
  "root_cause": "payment method is nil",
  "technical_description": "method dereferenced without a nil check",
  "steps_to_reproduce": ["checkout without a saved card"],
  "suggested_fix": "guard the lookup",
  "priority": "HIGH",
  "estimated_effort": "2-4 hours",
  "affected_components": ["payments"],
  "related_issues": []
}
Let me know if you need anything else.`,
		usage: &model.TokenUsage{TotalTokens: 321},
	}
	recorder := &fakeRecorder{}
	engine := NewAnalysisEngine(completion, recorder)

	result := engine.Analyze(context.Background(), testIssue(), nil)
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Summary != "NPE on missing payment method" {
		t.Errorf("summary = %q", result.Summary)
	}
	if result.Priority != model.PriorityHigh {
		t.Errorf("priority = %q, want high from case-insensitive mapping", result.Priority)
	}
	if result.IssueID != "1001" {
		t.Errorf("issue id = %q", result.IssueID)
	}

	if len(recorder.records) != 1 {
		t.Fatalf("expected 1 invocation record, got %d", len(recorder.records))
	}
	rec := recorder.records[0]
	if !rec.Success {
		t.Error("record should be marked success")
	}
	if rec.TokensUsed == nil || *rec.TokensUsed != 321 {
		t.Errorf("tokens used = %v", rec.TokensUsed)
	}
}

func TestAnalyzeFallbackOnMalformedOutput(t *testing.T) {
	engine := NewAnalysisEngine(&fakeCompletion{text: "I cannot produce JSON today."}, nil)

	result := engine.Analyze(context.Background(), testIssue(), nil)
	if result == nil {
		t.Fatal("malformed output must degrade, not fail")
	}
	if result.Summary != "AI analysis parsing failed" {
		t.Errorf("summary = %q", result.Summary)
	}
	if result.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want medium", result.Priority)
	}
	if result.EstimatedEffort != "Unknown" {
		t.Errorf("effort = %q", result.EstimatedEffort)
	}
	if result.StepsToReproduce == nil || result.AffectedComponents == nil {
		t.Error("slice fields must be empty, not nil")
	}
}

func TestAnalyzeNilOnCompletionError(t *testing.T) {
	recorder := &fakeRecorder{}
	engine := NewAnalysisEngine(&fakeCompletion{err: errors.New("quota exceeded")}, recorder)

	if result := engine.Analyze(context.Background(), testIssue(), nil); result != nil {
		t.Fatalf("expected nil result on completion failure, got %+v", result)
	}

	if len(recorder.records) != 1 {
		t.Fatalf("failure must still be recorded, got %d records", len(recorder.records))
	}
	rec := recorder.records[0]
	if rec.Success {
		t.Error("record should be marked failed")
	}
	if rec.Error == "" {
		t.Error("record should carry the error message")
	}
}

func TestParsePriorityMapping(t *testing.T) {
	tests := []struct {
		in   string
		want model.IssuePriority
	}{
		{"low", model.PriorityLow},
		{"Critical", model.PriorityCritical},
		{" HIGH ", model.PriorityHigh},
		{"urgent", model.PriorityMedium},
		{"", model.PriorityMedium},
	}
	for _, tt := range tests {
		if got := model.ParsePriority(tt.in); got != tt.want {
			t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildAnalysisPromptTrimsEvents(t *testing.T) {
	events := []map[string]any{
		{"id": "e1"}, {"id": "e2"}, {"id": "e3"}, {"id": "e4"}, {"id": "e5"},
	}

	prompt := buildAnalysisPrompt(testIssue(), events)
	if !strings.Contains(prompt, `"e3"`) {
		t.Error("prompt should include the third event")
	}
	if strings.Contains(prompt, `"e4"`) {
		t.Error("prompt should cap events at three")
	}
	if !strings.Contains(prompt, "NullPointerException in PaymentService") {
		t.Error("prompt should carry the issue title")
	}
}
