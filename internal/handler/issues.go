package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tracelens/backend/internal/model"
	"github.com/tracelens/backend/internal/service"
)

type IssueHandler struct {
	issues     *service.IssueService
	workflow   *service.WorkflowService
	workspaces *service.WorkspaceService
	similar    *service.SimilarService
}

func NewIssueHandler(issues *service.IssueService, workflow *service.WorkflowService, workspaces *service.WorkspaceService, similar *service.SimilarService) *IssueHandler {
	return &IssueHandler{
		issues:     issues,
		workflow:   workflow,
		workspaces: workspaces,
		similar:    similar,
	}
}

// List godoc
// @Summary List tracker issues
// @Description One page of issues from the configured tracker, each annotated with its local processing status.
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param project_id query string false "Restrict to one project"
// @Param query query string false "Tracker search query (default is:unresolved)"
// @Param limit query int false "Page size (default 25)"
// @Param cursor query string false "Pagination cursor from a previous page"
// @Success 200 {object} model.IssueListResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ws, err := h.workspaces.CurrentFor(c.Request.Context(), user.ID)
	if err != nil {
		writeIssueError(c, err)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	res, err := h.issues.List(c.Request.Context(), ws, service.ListIssuesParams{
		ProjectID: c.Query("project_id"),
		Query:     c.Query("query"),
		Limit:     limit,
		Cursor:    c.Query("cursor"),
	})
	if err != nil {
		writeIssueError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Get godoc
// @Summary Get one issue
// @Description Returns the processed record when the issue was analyzed in this workspace, otherwise a live tracker snapshot.
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Success 200 {object} model.IssueDetailResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/issues/{id} [get]
func (h *IssueHandler) Get(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ws, err := h.workspaces.CurrentFor(c.Request.Context(), user.ID)
	if err != nil {
		writeIssueError(c, err)
		return
	}

	res, err := h.issues.Get(c.Request.Context(), ws, c.Param("id"))
	if err != nil {
		writeIssueError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Analyze godoc
// @Summary Analyze an issue
// @Description Runs the full analysis workflow for the issue and returns the terminal outcome.
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Success 200 {object} model.AnalyzeOutcome
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/issues/{id}/analyze [post]
func (h *IssueHandler) Analyze(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ws, err := h.workspaces.CurrentFor(c.Request.Context(), user.ID)
	if err != nil {
		writeIssueError(c, err)
		return
	}

	outcome, err := h.workflow.Analyze(c.Request.Context(), c.Param("id"), ws.ID, user.ID)
	if err != nil {
		writeIssueError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// ListProcessed godoc
// @Summary List processed issues
// @Description The workspace's analysis history, newest first, optionally filtered by status.
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, analyzing, completed or failed"
// @Param limit query int false "Page size (default 25, max 100)"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} model.ProcessedIssue
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/issues/processed [get]
func (h *IssueHandler) ListProcessed(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ws, err := h.workspaces.CurrentFor(c.Request.Context(), user.ID)
	if err != nil {
		writeIssueError(c, err)
		return
	}

	status := model.IssueStatus(c.Query("status"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	res, err := h.workflow.ListProcessed(c.Request.Context(), ws.ID, status, limit, offset)
	if err != nil {
		writeIssueError(c, err)
		return
	}
	if res == nil {
		res = []model.ProcessedIssue{}
	}
	c.JSON(http.StatusOK, res)
}

// Similar godoc
// @Summary Find similar analyzed issues
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Param limit query int false "Neighbours to return (default 5)"
// @Success 200 {object} model.SimilarIssuesResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/issues/{id}/similar [get]
func (h *IssueHandler) Similar(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if h.similar == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "similar issues not available"})
		return
	}

	ws, err := h.workspaces.CurrentFor(c.Request.Context(), user.ID)
	if err != nil {
		writeIssueError(c, err)
		return
	}

	issueID := c.Param("id")
	limit, _ := strconv.Atoi(c.Query("limit"))

	similar, err := h.similar.FindSimilar(c.Request.Context(), ws, issueID, limit)
	if err != nil {
		writeIssueError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SimilarIssuesResponse{
		IssueID: issueID,
		Similar: similar,
	})
}

func writeIssueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoWorkspace):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no workspace configured"})
	case errors.Is(err, service.ErrNotConfigured):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrIssueNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "issue not found"})
	case errors.Is(err, service.ErrNotIndexed):
		c.JSON(http.StatusNotFound, gin.H{"error": "issue has not been analyzed"})
	case errors.Is(err, service.ErrAlreadyAnalyzing):
		c.JSON(http.StatusConflict, gin.H{"error": "analysis already in progress"})
	case errors.Is(err, service.ErrTrackerUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "tracker request failed"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
