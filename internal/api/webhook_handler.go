package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/Eschmerz/Luxury/internal/core"
)

// WebhookVerifier verifies a raw webhook payload against its signature
// header. Implemented by payments.Gateway.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

// WebhookHandler handles the Stripe webhook endpoint. It is public: the
// gateway authenticates itself with the Stripe-Signature header, verified
// against the exact raw bytes of the body.
type WebhookHandler struct {
	verifier      WebhookVerifier
	accessService core.AccessService
	logger        *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(verifier WebhookVerifier, as core.AccessService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, accessService: as, logger: logger}
}

// HandleStripeWebhook handles POST /stripe/webhook.
//
// Signature verification is the very first step; nothing is parsed or written
// before it passes. After verification the event is acknowledged with 200
// even when the best-effort side effects fail; only a record-store failure
// answers 500 so Stripe's own retry brings the event back.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		h.logger.Error("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read webhook payload"})
		return
	}

	event, err := h.verifier.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Webhook signature verification failed"})
		return
	}

	if err := h.accessService.HandlePaymentEvent(c.Request.Context(), event); err != nil {
		h.logger.Error("webhook processing failed",
			zap.String("eventId", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Webhook handler failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
