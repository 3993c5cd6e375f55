package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tracelens/backend/internal/config"
	"github.com/tracelens/backend/internal/model"
)

type fakeStore struct {
	existing     *model.ProcessedIssue
	claimErr     error
	claimed      *model.ProcessedIssue
	completedID  string
	failedID     string
	lastAnalysis *model.AnalysisResult
}

func (f *fakeStore) FindByIssueAndWorkspace(ctx context.Context, issueID, workspaceID string) (*model.ProcessedIssue, error) {
	if f.existing == nil {
		return nil, pgx.ErrNoRows
	}
	return f.existing, nil
}

func (f *fakeStore) ClaimAnalyzing(ctx context.Context, rec model.ProcessedIssue, staleAfter time.Duration) (string, error) {
	if f.claimErr != nil {
		return "", f.claimErr
	}
	f.claimed = &rec
	return "doc-1", nil
}

func (f *fakeStore) SetAnalysisCompleted(ctx context.Context, id string, analysis *model.AnalysisResult) error {
	f.completedID = id
	f.lastAnalysis = analysis
	return nil
}

func (f *fakeStore) SetAnalysisFailed(ctx context.Context, id string) error {
	f.failedID = id
	return nil
}

func (f *fakeStore) ListByWorkspace(ctx context.Context, workspaceID string, status model.IssueStatus, limit, offset int) ([]model.ProcessedIssue, error) {
	return nil, nil
}

type fakeWorkspaces struct {
	ws *model.Workspace
}

func (f *fakeWorkspaces) GetWorkspaceByID(ctx context.Context, workspaceID string) (*model.Workspace, error) {
	if f.ws == nil || f.ws.ID != workspaceID {
		return nil, pgx.ErrNoRows
	}
	return f.ws, nil
}

func (f *fakeWorkspaces) GetSettings(ctx context.Context, workspaceID string) (*model.WorkspaceSettings, error) {
	return nil, pgx.ErrNoRows
}

type fakeFetcher struct {
	issue      *model.Issue
	found      bool
	err        error
	fetchCalls int
}

func (f *fakeFetcher) GetIssueDetails(ctx context.Context, issueID string) (*model.Issue, bool, error) {
	f.fetchCalls++
	return f.issue, f.found, f.err
}

func (f *fakeFetcher) GetIssueEvents(ctx context.Context, issueID string, limit int) []map[string]any {
	return nil
}

type fakeAnalyzer struct {
	result *model.AnalysisResult
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, issue *model.Issue, events []map[string]any) *model.AnalysisResult {
	return f.result
}

type fakeIndexer struct {
	indexed []*model.AnalysisResult
}

func (f *fakeIndexer) IndexAnalysis(ctx context.Context, ws *model.Workspace, analysis *model.AnalysisResult) error {
	f.indexed = append(f.indexed, analysis)
	return nil
}

func configuredWorkspace() *model.Workspace {
	return &model.Workspace{
		ID:              "ws-1",
		Name:            "acme",
		OwnerID:         7,
		TrackerAPIToken: "token",
		TrackerOrg:      "acme",
		ModelAPIKey:     "key",
	}
}

func newTestWorkflow(t *testing.T, store *fakeStore, workspaces *fakeWorkspaces, fetcher *fakeFetcher, analyzer Analyzer, analyzerErr error) *WorkflowService {
	t.Helper()

	svc, err := NewWorkflowService(
		store,
		workspaces,
		func(creds model.TrackerCredentials) IssueFetcher { return fetcher },
		func(ctx context.Context, apiKey, modelName string) (Analyzer, error) {
			return analyzer, analyzerErr
		},
		config.AnalysisConfig{DefaultModel: "test-model", StaleAfter: "15m"},
	)
	if err != nil {
		t.Fatalf("NewWorkflowService: %v", err)
	}
	return svc
}

func TestAnalyzeRequiresWorkspace(t *testing.T) {
	svc := newTestWorkflow(t, &fakeStore{}, &fakeWorkspaces{}, &fakeFetcher{}, &fakeAnalyzer{}, nil)

	if _, err := svc.Analyze(context.Background(), "1001", "", 7); !errors.Is(err, ErrNoWorkspace) {
		t.Fatalf("err = %v, want ErrNoWorkspace", err)
	}
}

func TestAnalyzeRequiresCredentials(t *testing.T) {
	ws := configuredWorkspace()
	ws.TrackerAPIToken = ""
	fetcher := &fakeFetcher{}
	svc := newTestWorkflow(t, &fakeStore{}, &fakeWorkspaces{ws: ws}, fetcher, &fakeAnalyzer{}, nil)

	_, err := svc.Analyze(context.Background(), "1001", "ws-1", 7)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if fetcher.fetchCalls != 0 {
		t.Error("credential check must run before any tracker call")
	}
}

func TestAnalyzeRequiresModelKey(t *testing.T) {
	ws := configuredWorkspace()
	ws.ModelAPIKey = ""
	svc := newTestWorkflow(t, &fakeStore{}, &fakeWorkspaces{ws: ws}, &fakeFetcher{}, &fakeAnalyzer{}, nil)

	// no workspace key and no server-wide default
	if _, err := svc.Analyze(context.Background(), "1001", "ws-1", 7); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestAnalyzeConflictBeforeNetwork(t *testing.T) {
	store := &fakeStore{
		existing: &model.ProcessedIssue{
			Status:    model.StatusAnalyzing,
			UpdatedAt: time.Now(),
		},
	}
	fetcher := &fakeFetcher{}
	svc := newTestWorkflow(t, store, &fakeWorkspaces{ws: configuredWorkspace()}, fetcher, &fakeAnalyzer{}, nil)

	_, err := svc.Analyze(context.Background(), "1001", "ws-1", 7)
	if !errors.Is(err, ErrAlreadyAnalyzing) {
		t.Fatalf("err = %v, want ErrAlreadyAnalyzing", err)
	}
	if fetcher.fetchCalls != 0 {
		t.Error("a live analyzing record must short-circuit before the tracker is called")
	}
}

func TestAnalyzeReclaimsStaleRecord(t *testing.T) {
	store := &fakeStore{
		existing: &model.ProcessedIssue{
			Status:    model.StatusAnalyzing,
			UpdatedAt: time.Now().Add(-time.Hour),
		},
	}
	fetcher := &fakeFetcher{issue: &model.Issue{ID: "1001"}, found: true}
	analyzer := &fakeAnalyzer{result: &model.AnalysisResult{IssueID: "1001", Summary: "s"}}
	svc := newTestWorkflow(t, store, &fakeWorkspaces{ws: configuredWorkspace()}, fetcher, analyzer, nil)

	outcome, err := svc.Analyze(context.Background(), "1001", "ws-1", 7)
	if err != nil {
		t.Fatalf("stale analyzing record should be reclaimable: %v", err)
	}
	if outcome.Status != model.StatusCompleted {
		t.Errorf("status = %q", outcome.Status)
	}
}

func TestAnalyzeIssueNotFound(t *testing.T) {
	store := &fakeStore{}
	fetcher := &fakeFetcher{found: false}
	svc := newTestWorkflow(t, store, &fakeWorkspaces{ws: configuredWorkspace()}, fetcher, &fakeAnalyzer{}, nil)

	if _, err := svc.Analyze(context.Background(), "missing", "ws-1", 7); !errors.Is(err, ErrIssueNotFound) {
		t.Fatalf("err = %v, want ErrIssueNotFound", err)
	}
	if store.claimed != nil {
		t.Error("nothing must be persisted for an unknown issue")
	}
}

func TestAnalyzeTrackerUnavailable(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	svc := newTestWorkflow(t, &fakeStore{}, &fakeWorkspaces{ws: configuredWorkspace()}, fetcher, &fakeAnalyzer{}, nil)

	if _, err := svc.Analyze(context.Background(), "1001", "ws-1", 7); !errors.Is(err, ErrTrackerUnavailable) {
		t.Fatalf("err = %v, want ErrTrackerUnavailable", err)
	}
}

func TestAnalyzeClaimRace(t *testing.T) {
	store := &fakeStore{claimErr: pgx.ErrNoRows}
	fetcher := &fakeFetcher{issue: &model.Issue{ID: "1001"}, found: true}
	svc := newTestWorkflow(t, store, &fakeWorkspaces{ws: configuredWorkspace()}, fetcher, &fakeAnalyzer{}, nil)

	if _, err := svc.Analyze(context.Background(), "1001", "ws-1", 7); !errors.Is(err, ErrAlreadyAnalyzing) {
		t.Fatalf("err = %v, want ErrAlreadyAnalyzing on lost claim", err)
	}
}

func TestAnalyzeCompletedFlow(t *testing.T) {
	store := &fakeStore{}
	fetcher := &fakeFetcher{issue: &model.Issue{ID: "1001", Title: "boom"}, found: true}
	analyzer := &fakeAnalyzer{result: &model.AnalysisResult{IssueID: "1001", Summary: "root cause found"}}
	indexer := &fakeIndexer{}

	svc := newTestWorkflow(t, store, &fakeWorkspaces{ws: configuredWorkspace()}, fetcher, analyzer, nil)
	svc.SetSimilarityIndexer(indexer)

	outcome, err := svc.Analyze(context.Background(), "1001", "ws-1", 7)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if outcome.Status != model.StatusCompleted {
		t.Errorf("status = %q, want completed", outcome.Status)
	}
	if outcome.Analysis == nil || outcome.Analysis.Summary != "root cause found" {
		t.Errorf("analysis = %+v", outcome.Analysis)
	}
	if store.completedID != "doc-1" {
		t.Errorf("completed id = %q", store.completedID)
	}
	if store.claimed == nil || store.claimed.WorkspaceID != "ws-1" || store.claimed.CreatedBy != 7 {
		t.Errorf("claimed record = %+v", store.claimed)
	}
	if len(indexer.indexed) != 1 {
		t.Errorf("expected 1 indexed analysis, got %d", len(indexer.indexed))
	}
}

func TestAnalyzeFailedFlow(t *testing.T) {
	store := &fakeStore{}
	fetcher := &fakeFetcher{issue: &model.Issue{ID: "1001"}, found: true}
	analyzer := &fakeAnalyzer{result: nil}

	svc := newTestWorkflow(t, store, &fakeWorkspaces{ws: configuredWorkspace()}, fetcher, analyzer, nil)

	outcome, err := svc.Analyze(context.Background(), "1001", "ws-1", 7)
	if err != nil {
		t.Fatalf("engine failure must not surface as an error: %v", err)
	}
	if outcome.Status != model.StatusFailed {
		t.Errorf("status = %q, want failed", outcome.Status)
	}
	if store.failedID != "doc-1" {
		t.Errorf("failed id = %q, terminal status must be persisted", store.failedID)
	}
	if store.completedID != "" {
		t.Error("completed must not be set on the failure path")
	}
}

func TestAnalyzeAnalyzerInitFailure(t *testing.T) {
	store := &fakeStore{}
	fetcher := &fakeFetcher{issue: &model.Issue{ID: "1001"}, found: true}

	svc := newTestWorkflow(t, store, &fakeWorkspaces{ws: configuredWorkspace()}, fetcher, nil, errors.New("bad key"))

	outcome, err := svc.Analyze(context.Background(), "1001", "ws-1", 7)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if outcome.Status != model.StatusFailed {
		t.Errorf("status = %q, want failed", outcome.Status)
	}
	if store.failedID == "" {
		t.Error("claimed record must end in a terminal status")
	}
}

func TestListProcessedValidation(t *testing.T) {
	svc := newTestWorkflow(t, &fakeStore{}, &fakeWorkspaces{}, &fakeFetcher{}, &fakeAnalyzer{}, nil)

	if _, err := svc.ListProcessed(context.Background(), "", "", 0, 0); !errors.Is(err, ErrNoWorkspace) {
		t.Errorf("err = %v, want ErrNoWorkspace", err)
	}
	if _, err := svc.ListProcessed(context.Background(), "ws-1", "bogus", 0, 0); err == nil {
		t.Error("invalid status filter must be rejected")
	}
	if _, err := svc.ListProcessed(context.Background(), "ws-1", model.StatusCompleted, 0, 0); err != nil {
		t.Errorf("valid filter rejected: %v", err)
	}
}
