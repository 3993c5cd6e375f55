package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tracelens/backend/internal/config"
	"github.com/tracelens/backend/internal/model"
	"github.com/tracelens/backend/internal/service"
)

type WorkspaceHandler struct {
	svc         *service.WorkspaceService
	analysisCfg config.AnalysisConfig
}

func NewWorkspaceHandler(svc *service.WorkspaceService, analysisCfg config.AnalysisConfig) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc, analysisCfg: analysisCfg}
}

// Create godoc
// @Summary Create workspace
// @Description Provisions the caller's workspace. One per user.
// @Tags workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateWorkspaceRequest true "Workspace name and description"
// @Success 201 {object} model.WorkspaceEnvelope
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /api/v1/workspaces [post]
func (h *WorkspaceHandler) Create(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ws, err := h.svc.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.WorkspaceEnvelope{
		Message:   "workspace created",
		Workspace: *ws,
	})
}

// GetCurrent godoc
// @Summary Get current workspace
// @Description The caller's workspace with credentials masked.
// @Tags workspaces
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.WorkspaceEnvelope
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/workspaces/current [get]
func (h *WorkspaceHandler) GetCurrent(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ws, err := h.svc.GetCurrent(c.Request.Context(), user.ID)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.WorkspaceEnvelope{Workspace: *ws})
}

// Update godoc
// @Summary Update current workspace
// @Description Patches name, description or credentials. Omitted fields keep their stored values.
// @Tags workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpdateWorkspaceRequest true "Fields to change"
// @Success 200 {object} model.WorkspaceEnvelope
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/workspaces/current [patch]
func (h *WorkspaceHandler) Update(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ws, err := h.svc.Update(c.Request.Context(), user.ID, req)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.WorkspaceEnvelope{
		Message:   "workspace updated",
		Workspace: *ws,
	})
}

// GetSettings godoc
// @Summary Get workspace settings
// @Tags workspaces
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.WorkspaceSettings
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/workspaces/current/settings [get]
func (h *WorkspaceHandler) GetSettings(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	settings, err := h.svc.GetSettings(c.Request.Context(), user.ID)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary Update workspace settings
// @Tags workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpdateSettingsRequest true "Settings to change"
// @Success 200 {object} model.WorkspaceSettings
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/workspaces/current/settings [patch]
func (h *WorkspaceHandler) UpdateSettings(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	settings, err := h.svc.UpdateSettings(c.Request.Context(), user.ID, req)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// TestTracker godoc
// @Summary Test tracker connection
// @Description Probes the tracker API with the stored credentials and explains any failure.
// @Tags workspaces
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.TrackerTestResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/workspaces/current/test-tracker [post]
func (h *WorkspaceHandler) TestTracker(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.svc.TestTracker(c.Request.Context(), user.ID)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// TestModel godoc
// @Summary Test model API key
// @Tags workspaces
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.ModelTestResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/workspaces/current/test-model [post]
func (h *WorkspaceHandler) TestModel(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.svc.TestModelKey(c.Request.Context(), user.ID, h.analysisCfg.APIKey, h.analysisCfg.DefaultModel)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func writeWorkspaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoWorkspace):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no workspace configured"})
	case errors.Is(err, service.ErrNotConfigured):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrHasWorkspace):
		c.JSON(http.StatusConflict, gin.H{"error": "user already has a workspace"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can change the workspace"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
