package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/feedbackhub-api/internal/handler/dto"
	"github.com/makkenzo/feedbackhub-api/internal/handler/middleware"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/makkenzo/feedbackhub-api/internal/service"
	"go.uber.org/zap"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBodyBytes   = 65536
)

type BillingHandler struct {
	service *service.BillingService
	logger  *zap.Logger
}

func NewBillingHandler(service *service.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{
		service: service,
		logger:  logger.Named("BillingHandler"),
	}
}

func (h *BillingHandler) Subscription(c *gin.Context) {
	subscribed, err := h.service.Status(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.SubscriptionStatusResponse{Subscribed: subscribed})
}

func (h *BillingHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", ierr.ErrValidation, err))
		return
	}

	session, err := h.service.Checkout(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutResponse{SessionID: session.ID, URL: session.URL})
}

func (h *BillingHandler) Portal(c *gin.Context) {
	url, err := h.service.Portal(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.PortalResponse{URL: url})
}

// Webhook needs the raw body for signature verification.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: read webhook body: %v", ierr.ErrValidation, err))
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
