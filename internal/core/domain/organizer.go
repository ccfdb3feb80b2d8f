package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus represents the state of an organizer's PayPal merchant account.
type AccountStatus string

const (
	AccountStatusUnverified AccountStatus = "UNVERIFIED"
	AccountStatusPending    AccountStatus = "PENDING"
	AccountStatusVerified   AccountStatus = "VERIFIED"
	AccountStatusDeclined   AccountStatus = "DECLINED"
	AccountStatusRevoked    AccountStatus = "REVOKED"
)

// accountStatusRank orders statuses so that stale updates (a late PENDING
// webhook after a VERIFIED poll) can never move the account backwards.
// VERIFIED and DECLINED share a rank: they are alternative terminal outcomes
// of the same review, and neither may overwrite the other.
var accountStatusRank = map[AccountStatus]int{
	AccountStatusUnverified: 0,
	AccountStatusPending:    1,
	AccountStatusVerified:   2,
	AccountStatusDeclined:   2,
	AccountStatusRevoked:    3,
}

// Rank returns the monotonic rank of the status. Unknown statuses rank lowest.
func (s AccountStatus) Rank() int {
	return accountStatusRank[s]
}

// CanTransitionTo reports whether moving from s to next is a legal forward
// transition. REVOKED is only reachable from VERIFIED (consent revocation).
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	if next == AccountStatusRevoked {
		return s == AccountStatusVerified
	}
	return next.Rank() > s.Rank()
}

// Organizer is the payment-facing projection of an organizer profile. Identity
// and role verification are owned by the auth collaborator; merchant account
// state is owned by this service.
type Organizer struct {
	ID                uuid.UUID     `json:"id"`
	Email             string        `json:"email"`
	Name              string        `json:"name"`
	VerifiedOrganizer bool          `json:"verified_organizer"`
	MerchantID        *string       `json:"merchant_id,omitempty"`
	TrackingID        *string       `json:"-"`
	AccountStatus     AccountStatus `json:"account_status"`
	VerificationEmail *string       `json:"verification_email,omitempty"`
	DeclineReason     *string       `json:"decline_reason,omitempty"`
	PayoutEmail       *string       `json:"payout_email,omitempty"`
	OnboardedAt       *time.Time    `json:"onboarded_at,omitempty"`
}

// PaymentReady reports whether the organizer may receive buyer funds.
func (o *Organizer) PaymentReady() bool {
	return o.AccountStatus == AccountStatusVerified && o.MerchantID != nil && *o.MerchantID != ""
}
