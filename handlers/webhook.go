package handlers

import (
	"encoding/json"
	"net/http"

	"polarflow/models"
	"polarflow/services/payment"
	"polarflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// WebhookHandler receives provider webhook deliveries. Signature failures
// get a 401; everything past verification is acknowledged with a 200 so
// the provider does not retry events that a retry cannot fix.
type WebhookHandler struct {
	Reconciler          *payment.Reconciler
	StripeWebhookSecret string
	CreemWebhookSecret  string
	Logger              *zap.Logger
}

// NewWebhookHandler builds a WebhookHandler.
func NewWebhookHandler(r *payment.Reconciler, stripeSecret, creemSecret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		Reconciler:          r,
		StripeWebhookSecret: stripeSecret,
		CreemWebhookSecret:  creemSecret,
		Logger:              logger,
	}
}

// StripeWebhook verifies and dispatches a Stripe event.
func (h *WebhookHandler) StripeWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "could not read request body", "")
		return
	}

	event, err := webhook.ConstructEvent(body, c.GetHeader("Stripe-Signature"), h.StripeWebhookSecret)
	if err != nil {
		h.Logger.Warn("stripe webhook signature verification failed", zap.Error(err))
		utils.JSONError(c, http.StatusUnauthorized, "invalid signature", "")
		return
	}

	if err := h.Reconciler.HandleStripeEvent(c.Request.Context(), event); err != nil {
		h.Logger.Error("stripe event reconciliation failed",
			zap.String("eventType", string(event.Type)),
			zap.String("eventID", event.ID),
			zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreemWebhook verifies and dispatches a Creem event.
func (h *WebhookHandler) CreemWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "could not read request body", "")
		return
	}

	if !payment.VerifyCreemSignature(h.CreemWebhookSecret, body, c.GetHeader("creem-signature")) {
		h.Logger.Warn("creem webhook signature verification failed")
		utils.JSONError(c, http.StatusUnauthorized, "invalid signature", "")
		return
	}

	var ev models.CreemEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		h.Logger.Warn("malformed creem webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	if err := h.Reconciler.HandleCreemEvent(c.Request.Context(), ev); err != nil {
		h.Logger.Error("creem event reconciliation failed",
			zap.String("eventType", ev.EventType),
			zap.String("webhookID", ev.WebhookID),
			zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
