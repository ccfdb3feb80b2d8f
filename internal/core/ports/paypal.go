package ports

import "context"

// PayPalClient is the outbound interface to the payment network. External
// calls are the dominant suspension points; callers never hold locks across
// them, and a transport error means "outcome unknown": reconciliation defers
// to webhook/poll state.
type PayPalClient interface {
	// CreatePartnerReferral registers an organizer for merchant onboarding and
	// returns the redirect URL for the hosted approval flow.
	CreatePartnerReferral(ctx context.Context, trackingID, email string) (*PartnerReferral, error)
	// GetMerchantStatus polls the merchant integration status for a merchant id.
	GetMerchantStatus(ctx context.Context, merchantID string) (*ProviderMerchantStatus, error)
	// CreateProviderOrder creates a remote order routed to the organizer's
	// merchant account.
	CreateProviderOrder(ctx context.Context, req ProviderOrderRequest) (*ProviderOrder, error)
	// CaptureProviderOrder collects funds for an approved order.
	CaptureProviderOrder(ctx context.Context, orderID string) (*ProviderCapture, error)
	// GetProviderOrder fetches current order state (reconciliation poll).
	GetProviderOrder(ctx context.Context, orderID string) (*ProviderOrder, error)
	// CreatePayout dispatches a payout batch. senderBatchID is our payout ref.
	CreatePayout(ctx context.Context, req ProviderPayoutRequest) (*ProviderPayoutBatch, error)
	// VerifyWebhookSignature asks the provider to verify a webhook delivery.
	VerifyWebhookSignature(ctx context.Context, headers WebhookHeaders, body []byte) (bool, error)
}

// PartnerReferral is the result of registering an onboarding referral.
type PartnerReferral struct {
	ReferralID  string
	ApprovalURL string
}

// ProviderMerchantStatus is the raw merchant integration state.
type ProviderMerchantStatus struct {
	MerchantID            string
	PaymentsReceivable    bool
	PrimaryEmailConfirmed bool
	Status                string // ACTIVE, PENDING, DENIED, DEACTIVATED
}

// ProviderOrderRequest creates a remote order for a ticket purchase.
type ProviderOrderRequest struct {
	MerchantID  string
	Amount      int64 // smallest currency unit
	Currency    string
	Description string
	ReferenceID string
}

// ProviderOrder is the remote order state.
type ProviderOrder struct {
	OrderID     string
	Status      string // CREATED, APPROVED, COMPLETED, VOIDED
	ApprovalURL string
	CaptureID   string // set once COMPLETED
}

// ProviderCapture is the result of a capture call.
type ProviderCapture struct {
	OrderID   string
	CaptureID string
	Status    string // COMPLETED, DECLINED, PENDING
	Amount    int64
}

// ProviderPayoutRequest dispatches funds to an organizer's PayPal account.
type ProviderPayoutRequest struct {
	SenderBatchID string
	Receiver      string
	Amount        int64
	Currency      string
	Note          string
}

// ProviderPayoutBatch is the accepted payout batch reference.
type ProviderPayoutBatch struct {
	BatchID     string
	BatchStatus string // PENDING, PROCESSING, SUCCESS, DENIED
}
