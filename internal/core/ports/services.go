package ports

import (
	"context"

	"ticketpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerService is the single entry point for wallet balance mutations. All
// callers (capture, webhook capture, payout dispatch, payout reconciliation)
// go through these invariant-checked operations.
type LedgerService interface {
	// Credit adds captured funds inside the caller's DB transaction.
	Credit(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error
	// Debit removes refunded funds, floor-checked, inside the caller's DB
	// transaction.
	Debit(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error
	// ReserveForPayout atomically moves amount from balance to pending and
	// records the reservation under payoutRef.
	ReserveForPayout(ctx context.Context, organizerID uuid.UUID, amount int64, payoutRef, receiver string) error
	// ConfirmPayout settles the reservation; returns false when the payout was
	// not pending (already settled; safe no-op under redelivery).
	ConfirmPayout(ctx context.Context, payoutRef string) (bool, error)
	// ReleasePayout restores reserved funds to balance; idempotent on
	// payoutRef like ConfirmPayout.
	ReleasePayout(ctx context.Context, payoutRef string) (bool, error)
}

// OnboardingService drives an organizer's merchant account through the
// verification state machine.
type OnboardingService interface {
	BeginOnboarding(ctx context.Context, organizerID uuid.UUID) (approvalURL string, err error)
	SaveMerchant(ctx context.Context, organizerID uuid.UUID, merchantID string) error
	CheckStatus(ctx context.Context, organizerID uuid.UUID) (*MerchantStatusResult, error)
	// ApplyStatus is the shared transition function behind both the polling
	// and the webhook writer. Illegal (backward) transitions silently no-op;
	// the return value reports whether a write landed.
	ApplyStatus(ctx context.Context, organizerID uuid.UUID, status domain.AccountStatus, declineReason *string) (bool, error)
}

// MerchantStatusResult is the polled merchant account state.
type MerchantStatusResult struct {
	MerchantID    string               `json:"merchant_id"`
	AccountStatus domain.AccountStatus `json:"account_status"`
}

// OrderService manages the order create/capture lifecycle.
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error)
	// CaptureOrder is idempotent on the provider order id: a completed
	// transaction returns the stored result without another provider call or
	// wallet credit.
	CaptureOrder(ctx context.Context, orderID string) (*domain.Transaction, error)
	// ReconcileCapture applies a provider-confirmed capture (webhook or poll)
	// without calling the provider. Returns false when already applied.
	ReconcileCapture(ctx context.Context, orderID, captureID string) (bool, error)
	// ReconcileRefund applies a capture refund overlay, idempotent on the
	// order's transaction status.
	ReconcileRefund(ctx context.Context, orderID string) (bool, error)
	// FailOrder marks a pending order failed after a definitive provider
	// rejection. Returns false when the transaction was not pending.
	FailOrder(ctx context.Context, orderID string) (bool, error)
}

// CreateOrderRequest is the buyer's validated purchase intent.
type CreateOrderRequest struct {
	BuyerID    uuid.UUID
	EventID    uuid.UUID
	Selections []domain.TicketSelection
}

// CreateOrderResult is returned to the buyer for provider approval.
type CreateOrderResult struct {
	OrderID     string `json:"order_id"`
	ApprovalURL string `json:"approval_url"`
	Amount      int64  `json:"amount"`
}

// PayoutService dispatches organizer payouts.
type PayoutService interface {
	RequestPayout(ctx context.Context, organizerID uuid.UUID, amount int64) (*domain.Transaction, error)
}

// WalletService is the organizer-facing reporting surface.
type WalletService interface {
	GetWallet(ctx context.Context, organizerID uuid.UUID) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, organizerID uuid.UUID, limit int) ([]domain.Transaction, error)
}

// WebhookHeaders are the provider signature headers accompanying a delivery.
type WebhookHeaders struct {
	TransmissionID   string
	TransmissionTime string
	TransmissionSig  string
	CertURL          string
	AuthAlgo         string
}

// WebhookProcessor ingests provider webhook deliveries.
type WebhookProcessor interface {
	// Handle verifies the signature, then applies the event idempotently.
	// Signature failures return before any state change.
	Handle(ctx context.Context, raw []byte, headers WebhookHeaders) error
}

// Notifier is the interface consumed by the transactional email collaborator.
type Notifier interface {
	OnboardingCompleted(ctx context.Context, organizer *domain.Organizer) error
	PayoutSettled(ctx context.Context, organizer *domain.Organizer, amount int64, succeeded bool) error
}
