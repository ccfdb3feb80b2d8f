package handler

import (
	"io"

	"ticketpay/internal/core/ports"
	"ticketpay/pkg/apperror"
	"ticketpay/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives provider webhook deliveries.
type WebhookHandler struct {
	processor ports.WebhookProcessor
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(processor ports.WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// HandlePayPalWebhook handles POST /webhook/paypal-webhook. The raw body is
// passed through untouched: signature verification covers the exact bytes the
// provider sent.
func (h *WebhookHandler) HandlePayPalWebhook(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	headers := ports.WebhookHeaders{
		TransmissionID:   c.GetHeader("Paypal-Transmission-Id"),
		TransmissionTime: c.GetHeader("Paypal-Transmission-Time"),
		TransmissionSig:  c.GetHeader("Paypal-Transmission-Sig"),
		CertURL:          c.GetHeader("Paypal-Cert-Url"),
		AuthAlgo:         c.GetHeader("Paypal-Auth-Algo"),
	}

	if err := h.processor.Handle(c.Request.Context(), raw, headers); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"received": true})
}
