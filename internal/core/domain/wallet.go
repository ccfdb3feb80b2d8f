package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet tracks an organizer's ticket revenue. Balance is funds available for
// payout; PendingBalance is reserved against in-flight payouts. Created lazily
// on the first successful capture, never deleted.
//
// Invariants: Balance >= 0; PendingBalance equals the sum of amounts of
// payouts currently in status PENDING. Both are maintained by single-statement
// atomic updates in the ledger, never by read-modify-write.
type Wallet struct {
	ID             uuid.UUID  `json:"id"`
	OrganizerID    uuid.UUID  `json:"organizer_id"`
	Balance        int64      `json:"balance"` // smallest currency unit (cents)
	PendingBalance int64      `json:"pending_balance"`
	Currency       string     `json:"currency"`
	LastPayoutAt   *time.Time `json:"last_payout_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
