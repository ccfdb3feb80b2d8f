package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Eligibility (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrNotEligible() *AppError {
	return New("AUTH_002", "Organizer account is not verified for onboarding", http.StatusForbidden)
}

// ---- Merchant Onboarding (ONB) ----

func ErrMerchantNotReady() *AppError {
	return New("ONB_001", "Organizer is not ready to receive payments", http.StatusConflict)
}

func ErrNotOnboarded() *AppError {
	return New("ONB_002", "Organizer has not started merchant onboarding", http.StatusNotFound)
}

func ErrOnboardingDispatch(err error) *AppError {
	return Wrap("ONB_003", "Merchant onboarding request failed", http.StatusBadGateway, err)
}

// ---- Order Lifecycle (ORD) ----

func ErrInvalidOrder(message string) *AppError {
	return New("ORD_001", message, http.StatusBadRequest)
}

func ErrCaptureFailed() *AppError {
	return New("ORD_002", "Payment capture was declined, please retry", http.StatusPaymentRequired)
}

func ErrOrderDispatch(err error) *AppError {
	return Wrap("ORD_003", "Payment order could not be created, please retry", http.StatusBadGateway, err)
}

func ErrCaptureOutcomeUnknown(err error) *AppError {
	return Wrap("ORD_004", "Payment capture outcome unknown, do not retry blindly", http.StatusBadGateway, err)
}

// ---- Wallet & Payouts (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New("PAY_001", "Insufficient balance for requested payout", http.StatusBadRequest)
}

func ErrPayoutBelowMinimum(minimum int64) *AppError {
	return New("PAY_002", fmt.Sprintf("Payout amount is below the minimum of %d", minimum), http.StatusBadRequest)
}

func ErrNoPayoutDestination() *AppError {
	return New("PAY_003", "No payout destination configured", http.StatusConflict)
}

func ErrPayoutDispatch(err error) *AppError {
	return Wrap("PAY_004", "Payout could not be dispatched, funds released", http.StatusBadGateway, err)
}

// ---- Webhook Ingestion (HOOK) ----

func ErrSignatureInvalid() *AppError {
	return New("HOOK_001", "Webhook signature verification failed", http.StatusUnauthorized)
}

func ErrMalformedEvent(err error) *AppError {
	return Wrap("HOOK_002", "Malformed webhook payload", http.StatusBadRequest, err)
}

// ---- Validation & Lookup ----

func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("VAL_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
