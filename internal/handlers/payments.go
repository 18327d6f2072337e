package handlers

import (
	"crypto/subtle"

	"therapy-booking-server/internal/logger"
	"therapy-booking-server/internal/models"
	"therapy-booking-server/internal/policy"
	"therapy-booking-server/internal/services"
	"therapy-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookSecretHeader carries the shared secret on provider callbacks.
const WebhookSecretHeader = "X-Payment-Webhook-Secret"

// PaymentHandler receives payment provider callbacks.
type PaymentHandler struct {
	Payments *services.PaymentService
	Secret   string
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments *services.PaymentService, secret string) *PaymentHandler {
	return &PaymentHandler{Payments: payments, Secret: secret}
}

// PaymentCallbackRequest is the provider's confirmation body.
type PaymentCallbackRequest struct {
	TransactionID string               `json:"transactionId" binding:"required"`
	Status        models.PaymentStatus `json:"status" binding:"required,oneof=paid failed"`
}

// Callback records a payment outcome. Requests without the configured
// secret are refused; with no secret configured every callback is refused.
func (h *PaymentHandler) Callback(c *gin.Context) {
	got := c.GetHeader(WebhookSecretHeader)
	if h.Secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
		logger.Log.Warn("payment callback rejected", zap.String("ip", c.ClientIP()))
		utils.Unauthorized(c, "Invalid webhook secret")
		return
	}

	var req PaymentCallbackRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	appointment, err := h.Payments.RecordOutcome(c.Request.Context(), policy.System, req.TransactionID, req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Payment status recorded", appointment)
}
