package handler

import (
	"strconv"
	"time"

	"ticketpay/internal/adapter/http/dto"
	"ticketpay/internal/adapter/http/middleware"
	"ticketpay/internal/core/ports"
	"ticketpay/pkg/apperror"
	"ticketpay/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles the organizer wallet and payout endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
	payoutSvc ports.PayoutService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, payoutSvc ports.PayoutService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, payoutSvc: payoutSvc}
}

// GetWallet handles GET /wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	organizerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	w, err := h.walletSvc.GetWallet(c.Request.Context(), organizerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.WalletResponse{
		Balance:        w.Balance,
		PendingBalance: w.PendingBalance,
		Currency:       w.Currency,
	}
	if w.LastPayoutAt != nil {
		s := w.LastPayoutAt.Format(time.RFC3339)
		resp.LastPayoutAt = &s
	}
	response.OK(c, resp)
}

// ListTransactions handles GET /transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	organizerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	txs, err := h.walletSvc.ListTransactions(c.Request.Context(), organizerID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		items = append(items, toTransactionResponse(&txs[i]))
	}
	response.OK(c, items)
}

// RequestPayout handles POST /wallet/request-payout.
func (h *WalletHandler) RequestPayout(c *gin.Context) {
	organizerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	tx, err := h.payoutSvc.RequestPayout(c.Request.Context(), organizerID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toTransactionResponse(tx))
}
