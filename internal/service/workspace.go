package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tracelens/backend/internal/client"
	"github.com/tracelens/backend/internal/config"
	"github.com/tracelens/backend/internal/db"
	"github.com/tracelens/backend/internal/model"
)

var ErrHasWorkspace = errors.New("user already has a workspace")

const maxProjectSample = 5

type WorkspaceService struct {
	repo       *db.Postgres
	trackerCfg config.TrackerConfig
}

func NewWorkspaceService(repo *db.Postgres, trackerCfg config.TrackerConfig) *WorkspaceService {
	return &WorkspaceService{repo: repo, trackerCfg: trackerCfg}
}

func (s *WorkspaceService) EnsureSchema(ctx context.Context) error {
	return s.repo.EnsureWorkspaceSchema(ctx)
}

// Create provisions the caller's workspace. One workspace per user.
func (s *WorkspaceService) Create(ctx context.Context, userID int64, req model.CreateWorkspaceRequest) (*model.Workspace, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.WorkspaceID != nil {
		return nil, ErrHasWorkspace
	}

	ws, err := s.repo.CreateWorkspace(ctx, model.Workspace{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		OwnerID:     userID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetUserWorkspace(ctx, userID, ws.ID); err != nil {
		return nil, err
	}

	masked := ws.Masked()
	return &masked, nil
}

// CurrentFor resolves the caller's workspace, secrets included. Callers that
// hand the result to a client must not echo it back raw.
func (s *WorkspaceService) CurrentFor(ctx context.Context, userID int64) (*model.Workspace, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.WorkspaceID == nil {
		return nil, ErrNoWorkspace
	}

	ws, err := s.repo.GetWorkspaceByID(ctx, *user.WorkspaceID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNoWorkspace
		}
		return nil, err
	}
	return ws, nil
}

// GetCurrent returns the caller's workspace with secrets masked.
func (s *WorkspaceService) GetCurrent(ctx context.Context, userID int64) (*model.Workspace, error) {
	ws, err := s.CurrentFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	masked := ws.Masked()
	return &masked, nil
}

// Update patches the workspace. Only the owner may change it; omitted fields
// keep their stored values, so a client that round-trips the masked view
// must omit secret fields rather than send "***" back.
func (s *WorkspaceService) Update(ctx context.Context, userID int64, req model.UpdateWorkspaceRequest) (*model.Workspace, error) {
	ws, err := s.CurrentFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ws.OwnerID != userID {
		return nil, ErrForbidden
	}

	if err := s.repo.UpdateWorkspace(ctx, ws.ID, req); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetWorkspaceByID(ctx, ws.ID)
	if err != nil {
		return nil, err
	}
	masked := updated.Masked()
	return &masked, nil
}

func (s *WorkspaceService) GetSettings(ctx context.Context, userID int64) (*model.WorkspaceSettings, error) {
	ws, err := s.CurrentFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings, err := s.repo.GetSettings(ctx, ws.ID)
	if err != nil {
		if db.IsNoRows(err) {
			return &model.WorkspaceSettings{WorkspaceID: ws.ID}, nil
		}
		return nil, err
	}
	return settings, nil
}

func (s *WorkspaceService) UpdateSettings(ctx context.Context, userID int64, req model.UpdateSettingsRequest) (*model.WorkspaceSettings, error) {
	ws, err := s.CurrentFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ws.OwnerID != userID {
		return nil, ErrForbidden
	}

	if err := s.repo.UpsertSettings(ctx, ws.ID, req); err != nil {
		return nil, err
	}
	return s.repo.GetSettings(ctx, ws.ID)
}

// TestTracker probes the tracker API with the workspace's stored credentials
// and reports a tagged diagnosis plus a small project sample on success.
func (s *WorkspaceService) TestTracker(ctx context.Context, userID int64) (*model.TrackerTestResponse, error) {
	ws, err := s.CurrentFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ws.TrackerAPIToken == "" || ws.TrackerOrg == "" {
		return nil, fmt.Errorf("%w: tracker API token or organization missing", ErrNotConfigured)
	}

	tracker := client.NewTrackerClient(s.trackerCfg, ws.Credentials())
	status := tracker.TestConnectionDetailed(ctx)

	resp := &model.TrackerTestResponse{
		Connected: status.Success,
		Reason:    status.Reason,
		Message:   status.Message,
	}
	if !status.Success {
		return resp, nil
	}

	projects, err := tracker.ListProjects(ctx)
	if err != nil {
		return resp, nil
	}
	resp.ProjectsCount = len(projects)
	if len(projects) > maxProjectSample {
		projects = projects[:maxProjectSample]
	}
	resp.Projects = projects
	return resp, nil
}

// TestModelKey verifies the workspace's model API key with a minimal
// completion round trip.
func (s *WorkspaceService) TestModelKey(ctx context.Context, userID int64, defaultKey, modelName string) (*model.ModelTestResponse, error) {
	ws, err := s.CurrentFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	apiKey := ws.ModelAPIKey
	if apiKey == "" {
		apiKey = defaultKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: model API key missing", ErrNotConfigured)
	}

	completion, err := client.NewCompletionClient(ctx, apiKey, modelName)
	if err != nil {
		return &model.ModelTestResponse{Connected: false, Message: err.Error()}, nil
	}

	if _, _, err := completion.Complete(ctx, "", "Reply with the single word: ok"); err != nil {
		return &model.ModelTestResponse{Connected: false, Message: err.Error()}, nil
	}

	return &model.ModelTestResponse{Connected: true, Model: completion.ModelName()}, nil
}
