package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/feedbackhub-api/internal/handler/dto"
	"github.com/makkenzo/feedbackhub-api/internal/handler/middleware"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/makkenzo/feedbackhub-api/internal/service"
	"go.uber.org/zap"
)

type WidgetHandler struct {
	service *service.FeedbackService
	logger  *zap.Logger
}

func NewWidgetHandler(service *service.FeedbackService, logger *zap.Logger) *WidgetHandler {
	return &WidgetHandler{
		service: service,
		logger:  logger.Named("WidgetHandler"),
	}
}

// SubmitFeedback stores feedback for the project named by the embed token.
func (h *WidgetHandler) SubmitFeedback(c *gin.Context) {
	projectID, ok := middleware.EmbedProjectID(c)
	if !ok {
		_ = c.Error(ierr.Deny(ierr.ReasonInvalidEmbedToken))
		return
	}

	var req dto.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind or validate feedback body", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: %w", ierr.ErrValidation, err))
		return
	}

	fb, err := h.service.Submit(c.Request.Context(), projectID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewFeedbackResponse(fb))
}
