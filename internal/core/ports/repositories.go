package ports

import (
	"context"
	"time"

	"ticketpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrganizerRepository defines persistence for the payment-facing organizer
// projection, including the embedded merchant account status.
type OrganizerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organizer, error)
	GetByMerchantID(ctx context.Context, merchantID string) (*domain.Organizer, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*domain.Organizer, error)
	// SetOnboarding stores the partner referral tracking id and the onboarding
	// timestamp when an organizer begins onboarding.
	SetOnboarding(ctx context.Context, id uuid.UUID, trackingID string) error
	SaveMerchantID(ctx context.Context, id uuid.UUID, merchantID string) error
	// UpdateAccountStatus is a compare-and-set on the stored status: the write
	// only lands if the status is still `from`. Returns false when another
	// writer got there first.
	UpdateAccountStatus(ctx context.Context, id uuid.UUID, from, to domain.AccountStatus, declineReason *string) (bool, error)
}

// WalletRepository defines the ledger's storage primitives. Every mutation is
// a single-statement atomic increment scoped to one organizer's wallet row;
// methods accepting pgx.Tx run inside the caller's transaction so compound
// operations (capture CAS + credit) commit together.
type WalletRepository interface {
	GetByOrganizerID(ctx context.Context, organizerID uuid.UUID) (*domain.Wallet, error)
	// Credit adds funds, creating the wallet lazily on first credit.
	Credit(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error
	// DebitWithFloor subtracts funds only if the balance covers the amount.
	// Returns false (no mutation) otherwise.
	DebitWithFloor(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) (bool, error)
	// ReserveFunds moves amount from balance to pending_balance with the same
	// floor check. Returns false (no mutation) when balance < amount.
	ReserveFunds(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) (bool, error)
	// ConfirmReserved drops amount from pending_balance and stamps the payout
	// time; balance was already decremented at reservation.
	ConfirmReserved(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error
	// ReleaseReserved returns amount from pending_balance to balance.
	ReleaseReserved(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error
}

// PayoutRepository defines persistence for pending payout reservations.
type PayoutRepository interface {
	Create(ctx context.Context, tx pgx.Tx, p *domain.PendingPayout) error
	GetByRef(ctx context.Context, payoutRef string) (*domain.PendingPayout, error)
	SetProviderBatchID(ctx context.Context, payoutRef, providerBatchID string) error
	// Settle is a compare-and-set PENDING -> status. Returns the settled row,
	// or nil when the payout was not pending (already settled, or unknown);
	// this is the idempotency guard for redelivered and double-fired failure
	// paths.
	Settle(ctx context.Context, tx pgx.Tx, payoutRef string, status domain.PayoutStatus) (*domain.PendingPayout, error)
	ListPending(ctx context.Context, organizerID uuid.UUID) ([]domain.PendingPayout, error)
}

// TransactionRepository defines persistence for the transaction audit trail.
// Status moves are compare-and-set so concurrent captures and webhook
// redeliveries collapse to exactly one effective transition.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	// CreateInTx inserts inside the caller's transaction, so an audit row
	// commits or rolls back together with the status move it records.
	CreateInTx(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	GetByProviderOrderID(ctx context.Context, orderID string) (*domain.Transaction, error)
	GetByPayoutRef(ctx context.Context, payoutRef string) (*domain.Transaction, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID, limit int) ([]domain.Transaction, error)
	// MarkCompleted is CAS PENDING -> COMPLETED, recording the capture id.
	// False means the transaction was not pending (already settled elsewhere).
	MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, captureID string) (bool, error)
	// MarkFailed is CAS PENDING -> FAILED.
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
	// MarkRefunded is CAS COMPLETED -> REFUNDED (refund overlay on an
	// otherwise immutable completed transaction).
	MarkRefunded(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	// SettleByPayoutRef is CAS PENDING -> status on the payout transaction.
	SettleByPayoutRef(ctx context.Context, tx pgx.Tx, payoutRef string, status domain.TransactionStatus) (bool, error)
	// ListStalePending returns payment transactions stuck PENDING longer than
	// the threshold, for the reconciliation worker.
	ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Transaction, error)
}

// WebhookEventRepository is the durable processed-event log.
type WebhookEventRepository interface {
	// MarkProcessed inserts the event id; returns false if it was already
	// recorded (redelivery).
	MarkProcessed(ctx context.Context, ev *domain.WebhookEvent) (bool, error)
}

// EventCatalog is the interface consumed from the event/ticket catalog
// collaborator: price/quantity lookups and the attendee append on capture.
type EventCatalog interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	// AddAttendee appends the purchase record and decrements remaining ticket
	// quantities, inside the caller's transaction.
	AddAttendee(ctx context.Context, tx pgx.Tx, a *domain.Attendee) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProcessedEventCache is the Redis fast path for webhook dedup. Best-effort:
// a miss falls through to the idempotent handlers.
type ProcessedEventCache interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string, ttl time.Duration) error
}
