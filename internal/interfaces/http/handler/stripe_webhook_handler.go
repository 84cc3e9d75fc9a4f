package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	appshipping "github.com/shiprelay/backend/internal/application/shipping"
	"github.com/shiprelay/backend/internal/infrastructure/logger"
	"github.com/shiprelay/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Maximum webhook payload size (64KB - Stripe webhooks are typically small)
const maxWebhookPayloadSize = 65536

// WebhookProcessor verifies and handles a raw processor notification
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*appshipping.WebhookResult, error)
}

// StripeWebhookHandler handles Stripe webhook deliveries.
// The route is authenticated by the Stripe-Signature header only.
type StripeWebhookHandler struct {
	BaseHandler
	webhooks WebhookProcessor
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(webhooks WebhookProcessor) *StripeWebhookHandler {
	return &StripeWebhookHandler{webhooks: webhooks}
}

// HandleStripeWebhook answers POST /webhook/stripe. A verified event is
// always acknowledged with 200, whatever happened to the label purchase.
func (h *StripeWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// Signature verification needs the raw body
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Payload too large")
		return
	}

	result, err := h.webhooks.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
		return
	}

	logger.GetGinLogger(c).Debug("Webhook acknowledged",
		zap.String("event_id", result.EventID),
		zap.String("action", result.Action))
	c.JSON(http.StatusOK, dto.WebhookResponse{Received: true})
}
