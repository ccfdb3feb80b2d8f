package handler

import (
	"ticketpay/internal/adapter/http/dto"
	"ticketpay/internal/adapter/http/middleware"
	"ticketpay/internal/core/ports"
	"ticketpay/pkg/apperror"
	"ticketpay/pkg/response"

	"github.com/gin-gonic/gin"
)

// ConnectHandler handles the merchant onboarding endpoints.
type ConnectHandler struct {
	onboardingSvc ports.OnboardingService
}

// NewConnectHandler creates a new ConnectHandler.
func NewConnectHandler(onboardingSvc ports.OnboardingService) *ConnectHandler {
	return &ConnectHandler{onboardingSvc: onboardingSvc}
}

// OnboardOrganizer handles GET /connect/onboard-organizer.
func (h *ConnectHandler) OnboardOrganizer(c *gin.Context) {
	organizerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	approvalURL, err := h.onboardingSvc.BeginOnboarding(c.Request.Context(), organizerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.OnboardResponse{ApprovalURL: approvalURL})
}

// CheckStatus handles GET /connect/check-paypal-status.
func (h *ConnectHandler) CheckStatus(c *gin.Context) {
	organizerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	result, err := h.onboardingSvc.CheckStatus(c.Request.Context(), organizerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.MerchantStatusResponse{
		MerchantID:    result.MerchantID,
		AccountStatus: string(result.AccountStatus),
	})
}

// SaveMerchant handles POST /connect/save-merchant.
func (h *ConnectHandler) SaveMerchant(c *gin.Context) {
	organizerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SaveMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.onboardingSvc.SaveMerchant(c.Request.Context(), organizerID, req.MerchantID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"merchant_id": req.MerchantID})
}
