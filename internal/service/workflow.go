package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tracelens/backend/internal/config"
	"github.com/tracelens/backend/internal/db"
	"github.com/tracelens/backend/internal/model"
)

var (
	ErrNoWorkspace        = errors.New("no workspace")
	ErrNotConfigured      = errors.New("workspace credentials not configured")
	ErrIssueNotFound      = errors.New("issue not found")
	ErrAlreadyAnalyzing   = errors.New("issue is already being analyzed")
	ErrTrackerUnavailable = errors.New("tracker unavailable")
)

const (
	recentEventsLimit = 5
	defaultListLimit  = 25
	maxListLimit      = 100
)

// ProcessedIssueStore - persistence for workflow state, keyed by
// (issue id, workspace id).
type ProcessedIssueStore interface {
	FindByIssueAndWorkspace(ctx context.Context, issueID, workspaceID string) (*model.ProcessedIssue, error)
	ClaimAnalyzing(ctx context.Context, rec model.ProcessedIssue, staleAfter time.Duration) (string, error)
	SetAnalysisCompleted(ctx context.Context, id string, analysis *model.AnalysisResult) error
	SetAnalysisFailed(ctx context.Context, id string) error
	ListByWorkspace(ctx context.Context, workspaceID string, status model.IssueStatus, limit, offset int) ([]model.ProcessedIssue, error)
}

type WorkspaceStore interface {
	GetWorkspaceByID(ctx context.Context, workspaceID string) (*model.Workspace, error)
	GetSettings(ctx context.Context, workspaceID string) (*model.WorkspaceSettings, error)
}

// IssueFetcher - the tracker-facing subset the workflow needs.
type IssueFetcher interface {
	GetIssueDetails(ctx context.Context, issueID string) (*model.Issue, bool, error)
	GetIssueEvents(ctx context.Context, issueID string, limit int) []map[string]any
}

type Analyzer interface {
	Analyze(ctx context.Context, issue *model.Issue, events []map[string]any) *model.AnalysisResult
}

// Factories instead of ambient singletons: clients are built per request
// from the workspace's own credentials.
type TrackerFactory func(creds model.TrackerCredentials) IssueFetcher

type AnalyzerFactory func(ctx context.Context, apiKey, modelName string) (Analyzer, error)

// SimilarityIndexer stores a vector for a completed analysis so related
// issues can be looked up later. Indexing is best effort.
type SimilarityIndexer interface {
	IndexAnalysis(ctx context.Context, ws *model.Workspace, analysis *model.AnalysisResult) error
}

type WorkflowService struct {
	store        ProcessedIssueStore
	workspaces   WorkspaceStore
	newTracker   TrackerFactory
	newAnalyzer  AnalyzerFactory
	indexer      SimilarityIndexer
	defaultKey   string
	defaultModel string
	staleAfter   time.Duration
}

func NewWorkflowService(store ProcessedIssueStore, workspaces WorkspaceStore, newTracker TrackerFactory, newAnalyzer AnalyzerFactory, cfg config.AnalysisConfig) (*WorkflowService, error) {
	staleAfter, err := time.ParseDuration(cfg.StaleAfter)
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_STALE_AFTER: %w", err)
	}

	return &WorkflowService{
		store:        store,
		workspaces:   workspaces,
		newTracker:   newTracker,
		newAnalyzer:  newAnalyzer,
		defaultKey:   cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		staleAfter:   staleAfter,
	}, nil
}

func (s *WorkflowService) SetSimilarityIndexer(indexer SimilarityIndexer) {
	s.indexer = indexer
}

// Analyze runs one analysis attempt for (issueID, workspaceID).
//
// Pre-flight guards (conflict, missing credentials, unknown issue) abort
// with a distinguishable error before anything is written. Once the record
// is claimed as ANALYZING the call always ends in a persisted terminal
// status - engine failures degrade to FAILED instead of propagating.
func (s *WorkflowService) Analyze(ctx context.Context, issueID, workspaceID string, userID int64) (*model.AnalyzeOutcome, error) {
	if workspaceID == "" {
		return nil, ErrNoWorkspace
	}

	ws, err := s.workspaces.GetWorkspaceByID(ctx, workspaceID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNoWorkspace
		}
		return nil, err
	}
	if ws.TrackerAPIToken == "" || ws.TrackerOrg == "" {
		return nil, fmt.Errorf("%w: tracker API token or organization missing", ErrNotConfigured)
	}

	apiKey := ws.ModelAPIKey
	if apiKey == "" {
		apiKey = s.defaultKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: model API key missing", ErrNotConfigured)
	}

	// Fail fast on a live ANALYZING record before touching the network.
	// The ClaimAnalyzing upsert below re-checks atomically; this check only
	// keeps the cheap conflict path free of tracker calls.
	existing, err := s.store.FindByIssueAndWorkspace(ctx, issueID, workspaceID)
	if err != nil && !db.IsNoRows(err) {
		return nil, err
	}
	if existing != nil && existing.Status == model.StatusAnalyzing && time.Since(existing.UpdatedAt) < s.staleAfter {
		return nil, ErrAlreadyAnalyzing
	}

	modelName := s.defaultModel
	if settings, err := s.workspaces.GetSettings(ctx, workspaceID); err == nil && settings.ModelName != "" {
		modelName = settings.ModelName
	}

	tracker := s.newTracker(ws.Credentials())
	issue, found, err := tracker.GetIssueDetails(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTrackerUnavailable, err)
	}
	if !found {
		return nil, ErrIssueNotFound
	}

	// Best-effort extra context. Empty on failure, never blocks the run.
	events := tracker.GetIssueEvents(ctx, issueID, recentEventsLimit)

	// Claim the slot before the model call so a crash mid-analysis leaves a
	// visible ANALYZING record rather than silence.
	docID, err := s.store.ClaimAnalyzing(ctx, model.ProcessedIssue{
		ID:          uuid.NewString(),
		Issue:       *issue,
		WorkspaceID: workspaceID,
		CreatedBy:   userID,
	}, s.staleAfter)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrAlreadyAnalyzing
		}
		return nil, err
	}

	analyzer, err := s.newAnalyzer(ctx, apiKey, modelName)
	if err != nil {
		log.Printf("Failed to build analyzer for issue %s: %v", issueID, err)
		if err := s.store.SetAnalysisFailed(ctx, docID); err != nil {
			return nil, err
		}
		return &model.AnalyzeOutcome{IssueID: issueID, Status: model.StatusFailed}, nil
	}

	analysis := analyzer.Analyze(ctx, issue, events)
	if analysis == nil {
		if err := s.store.SetAnalysisFailed(ctx, docID); err != nil {
			return nil, err
		}
		return &model.AnalyzeOutcome{IssueID: issueID, Status: model.StatusFailed}, nil
	}

	if err := s.store.SetAnalysisCompleted(ctx, docID, analysis); err != nil {
		return nil, err
	}

	if s.indexer != nil {
		if err := s.indexer.IndexAnalysis(ctx, ws, analysis); err != nil {
			log.Printf("Failed to index analysis for issue %s: %v", issueID, err)
		}
	}

	return &model.AnalyzeOutcome{IssueID: issueID, Status: model.StatusCompleted, Analysis: analysis}, nil
}

// ListProcessed returns the workspace's processed issues, newest first.
func (s *WorkflowService) ListProcessed(ctx context.Context, workspaceID string, status model.IssueStatus, limit, offset int) ([]model.ProcessedIssue, error) {
	if workspaceID == "" {
		return nil, ErrNoWorkspace
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("invalid status filter: %s", status)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByWorkspace(ctx, workspaceID, status, limit, offset)
}
