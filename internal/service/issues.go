package service

import (
	"context"
	"fmt"

	"github.com/tracelens/backend/internal/client"
	"github.com/tracelens/backend/internal/config"
	"github.com/tracelens/backend/internal/db"
	"github.com/tracelens/backend/internal/model"
)

// IssueService serves the read side: proxied tracker listings annotated with
// local processing state, and issue detail that prefers the processed record.
type IssueService struct {
	repo       *db.Postgres
	trackerCfg config.TrackerConfig
	newTracker TrackerFactory
}

func NewIssueService(repo *db.Postgres, trackerCfg config.TrackerConfig) *IssueService {
	return &IssueService{
		repo:       repo,
		trackerCfg: trackerCfg,
		newTracker: func(creds model.TrackerCredentials) IssueFetcher {
			return client.NewTrackerClient(trackerCfg, creds)
		},
	}
}

type ListIssuesParams struct {
	ProjectID string
	Query     string
	Limit     int
	Cursor    string
}

// List fetches one page of issues from the tracker and merges in each
// issue's workspace-local processing status. Issues never analyzed report
// status ABSENT via has_analysis=false and an empty status.
func (s *IssueService) List(ctx context.Context, ws *model.Workspace, params ListIssuesParams) (*model.IssueListResponse, error) {
	if ws.TrackerAPIToken == "" || ws.TrackerOrg == "" {
		return nil, fmt.Errorf("%w: tracker API token or organization missing", ErrNotConfigured)
	}

	tracker := client.NewTrackerClient(s.trackerCfg, ws.Credentials())
	page, err := tracker.ListIssues(ctx, client.ListIssuesOptions{
		ProjectID: params.ProjectID,
		Query:     params.Query,
		Limit:     params.Limit,
		Cursor:    params.Cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTrackerUnavailable, err)
	}

	ids := make([]string, 0, len(page.Issues))
	for _, issue := range page.Issues {
		ids = append(ids, issue.ID)
	}

	statuses := map[string]model.ProcessedStatus{}
	if len(ids) > 0 {
		statuses, err = s.repo.GetStatusByIssueIDs(ctx, ws.ID, ids)
		if err != nil {
			return nil, err
		}
	}

	merged := make([]model.IssueWithStatus, 0, len(page.Issues))
	for _, issue := range page.Issues {
		merged = append(merged, model.IssueWithStatus{
			Issue:            issue,
			ProcessingStatus: statuses[issue.ID],
		})
	}

	return &model.IssueListResponse{
		Issues: merged,
		Pagination: model.Pagination{
			NextCursor: page.NextCursor,
			PrevCursor: page.PrevCursor,
			HasNext:    page.HasNext,
		},
	}, nil
}

// Get returns the processed record when one exists, otherwise a live
// tracker snapshot.
func (s *IssueService) Get(ctx context.Context, ws *model.Workspace, issueID string) (*model.IssueDetailResponse, error) {
	processed, err := s.repo.FindByIssueAndWorkspace(ctx, issueID, ws.ID)
	if err == nil {
		return &model.IssueDetailResponse{ProcessedIssue: processed}, nil
	}
	if !db.IsNoRows(err) {
		return nil, err
	}

	if ws.TrackerAPIToken == "" || ws.TrackerOrg == "" {
		return nil, fmt.Errorf("%w: tracker API token or organization missing", ErrNotConfigured)
	}

	tracker := s.newTracker(ws.Credentials())
	issue, found, err := tracker.GetIssueDetails(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTrackerUnavailable, err)
	}
	if !found {
		return nil, ErrIssueNotFound
	}

	return &model.IssueDetailResponse{Issue: issue}, nil
}
