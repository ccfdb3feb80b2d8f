package domain

import (
	"time"

	"github.com/google/uuid"
)

// PayoutStatus is the lifecycle state of a pending payout reservation.
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "PENDING"
	PayoutStatusCompleted PayoutStatus = "COMPLETED"
	PayoutStatusFailed    PayoutStatus = "FAILED"
)

// PendingPayout is a reservation of wallet funds against an in-flight payout.
// PayoutRef is our sender batch id, generated before the provider call so the
// reservation exists even if the dispatch response is lost. Settlement happens
// strictly via webhook confirmation (or the failure path), never from the
// dispatch call's immediate response.
type PendingPayout struct {
	PayoutRef       string       `json:"payout_ref"`
	OrganizerID     uuid.UUID    `json:"organizer_id"`
	Amount          int64        `json:"amount"`
	ProviderBatchID *string      `json:"provider_batch_id,omitempty"`
	Receiver        string       `json:"receiver"`
	Status          PayoutStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	SettledAt       *time.Time   `json:"settled_at,omitempty"`
}
