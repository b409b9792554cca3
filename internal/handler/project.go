package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/feedbackhub-api/internal/embedtoken"
	"github.com/makkenzo/feedbackhub-api/internal/handler/dto"
	"github.com/makkenzo/feedbackhub-api/internal/handler/middleware"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/makkenzo/feedbackhub-api/internal/metrics"
	"github.com/makkenzo/feedbackhub-api/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	service *service.ProjectService
	tokens  *embedtoken.Service
	logger  *zap.Logger
}

func NewProjectHandler(service *service.ProjectService, tokens *embedtoken.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		tokens:  tokens,
		logger:  logger.Named("ProjectHandler"),
	}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind or validate request body", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: %w", ierr.ErrValidation, err))
		return
	}

	created, err := h.service.CreateProject(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewProjectResponse(created))
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, subscribed, err := h.service.ListProjects(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := dto.ProjectListResponse{
		Projects:   make([]*dto.ProjectResponse, len(projects)),
		Subscribed: subscribed,
	}
	for i, p := range projects {
		resp.Projects[i] = dto.NewProjectResponse(p)
	}
	c.JSON(http.StatusOK, resp)
}

// GetByID returns the project with its feedback, subject to the access guard.
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	p, err := h.service.GetProject(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProjectResponse(p))
}

// IssueEmbedToken mints a widget token for a project the caller may access.
func (h *ProjectHandler) IssueEmbedToken(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	p, err := h.service.GetProject(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	tok, err := h.tokens.IssueToken(strconv.FormatInt(p.ID, 10))
	if err != nil {
		metrics.EmbedTokens.WithLabelValues("issue", "error").Inc()
		h.logger.Error("Failed to issue embed token", zap.Int64("project_id", p.ID), zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: %w", ierr.ErrInternalServer, err))
		return
	}
	metrics.EmbedTokens.WithLabelValues("issue", "ok").Inc()

	h.logger.Info("Embed token issued", zap.Int64("project_id", p.ID), zap.Time("expires_at", tok.ExpiresAt))
	c.JSON(http.StatusCreated, dto.EmbedTokenResponse{
		Token:     tok.String(),
		ProjectID: tok.ProjectID,
		ExpiresAt: tok.ExpiresAt.UTC(),
	})
}

func (h *ProjectHandler) projectID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Debug("Invalid project ID received", zap.String("id_param", idStr))
		_ = c.Error(ierr.Deny(ierr.ReasonInvalidID))
		return 0, false
	}
	return id, true
}
