package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypePayment  TransactionType = "PAYMENT"
	TransactionTypePayout   TransactionType = "PAYOUT"
	TransactionTypeRefund   TransactionType = "REFUND"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

// TransactionMetadata carries display/reconciliation context alongside the
// ledger entry. Selections are snapshotted at order creation so capture can
// append the attendee record without re-reading the catalog.
type TransactionMetadata struct {
	EventTitle   string            `json:"event_title,omitempty"`
	TicketCount  int               `json:"ticket_count,omitempty"`
	Selections   []TicketSelection `json:"selections,omitempty"`
	PayoutMethod string            `json:"payout_method,omitempty"`
}

// Transaction is one payment attempt: a ticket purchase, a payout, or a refund
// overlay. Created PENDING when an order or payout is dispatched; mutated only
// by the component owning the corresponding provider id; immutable once
// COMPLETED or FAILED except for the refund overlay. Never deleted.
type Transaction struct {
	ID              uuid.UUID           `json:"id"`
	OrganizerID     uuid.UUID           `json:"organizer_id"`
	BuyerID         *uuid.UUID          `json:"buyer_id,omitempty"`
	EventID         *uuid.UUID          `json:"event_id,omitempty"`
	Amount          int64               `json:"amount"` // smallest currency unit
	Type            TransactionType     `json:"type"`
	Status          TransactionStatus   `json:"status"`
	ProviderOrderID *string             `json:"provider_order_id,omitempty"`
	CaptureID       *string             `json:"capture_id,omitempty"`
	PayoutRef       *string             `json:"payout_ref,omitempty"`
	Metadata        TransactionMetadata `json:"metadata"`
	CreatedAt       time.Time           `json:"created_at"`
	ProcessedAt     *time.Time          `json:"processed_at,omitempty"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted ||
		t.Status == TransactionStatusFailed ||
		t.Status == TransactionStatusRefunded
}
