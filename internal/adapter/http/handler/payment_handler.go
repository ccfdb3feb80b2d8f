package handler

import (
	"time"

	"ticketpay/internal/adapter/http/dto"
	"ticketpay/internal/adapter/http/middleware"
	"ticketpay/internal/core/domain"
	"ticketpay/internal/core/ports"
	"ticketpay/pkg/apperror"
	"ticketpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles the buyer-facing order endpoints.
type PaymentHandler struct {
	orderSvc ports.OrderService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(orderSvc ports.OrderService) *PaymentHandler {
	return &PaymentHandler{orderSvc: orderSvc}
}

// CreateOrder handles POST /payment/create-paypal-order.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	buyerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid event id"))
		return
	}
	selections := make([]domain.TicketSelection, 0, len(req.Selections))
	for _, sel := range req.Selections {
		ttID, err := uuid.Parse(sel.TicketTypeID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid ticket type id"))
			return
		}
		selections = append(selections, domain.TicketSelection{
			TicketTypeID: ttID,
			Quantity:     sel.Quantity,
		})
	}

	result, err := h.orderSvc.CreateOrder(c.Request.Context(), ports.CreateOrderRequest{
		BuyerID:    buyerID,
		EventID:    eventID,
		Selections: selections,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.OrderCreatedResponse{
		OrderID:     result.OrderID,
		ApprovalURL: result.ApprovalURL,
		Amount:      result.Amount,
	})
}

// CaptureOrder handles POST /payment/capture-paypal-order.
func (h *PaymentHandler) CaptureOrder(c *gin.Context) {
	var req dto.CaptureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	tx, err := h.orderSvc.CaptureOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTransactionResponse(tx))
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:          tx.ID.String(),
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Status:      string(tx.Status),
		OrderID:     tx.ProviderOrderID,
		PayoutRef:   tx.PayoutRef,
		EventTitle:  tx.Metadata.EventTitle,
		TicketCount: tx.Metadata.TicketCount,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.ProcessedAt != nil {
		s := tx.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	return resp
}
