package dto

// SaveMerchantRequest pairs the merchant id returned by the hosted
// onboarding flow with the authenticated organizer.
type SaveMerchantRequest struct {
	MerchantID string `json:"merchant_id" binding:"required,safe_id,max=64"`
}

// TicketSelectionDTO is one ticket type/quantity pair in an order.
type TicketSelectionDTO struct {
	TicketTypeID string `json:"id" binding:"required,uuid"`
	Quantity     int    `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest is the buyer's purchase intent. Prices are always read
// from the catalog; the client only names ticket types and quantities.
type CreateOrderRequest struct {
	EventID    string               `json:"event_id" binding:"required,uuid"`
	Selections []TicketSelectionDTO `json:"selections" binding:"required,min=1,max=20,dive"`
}

// CaptureOrderRequest collects funds for an approved order.
type CaptureOrderRequest struct {
	OrderID string `json:"order_id" binding:"required,safe_id,max=64"`
}

// PayoutRequest is an organizer withdrawal request.
type PayoutRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// OnboardResponse carries the hosted approval URL.
type OnboardResponse struct {
	ApprovalURL string `json:"approval_url"`
}

// OrderCreatedResponse is returned to the buyer for provider approval.
type OrderCreatedResponse struct {
	OrderID     string `json:"order_id"`
	ApprovalURL string `json:"approval_url"`
	Amount      int64  `json:"amount"`
}

// TransactionResponse is the serialized transaction record.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Amount      int64   `json:"amount"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	OrderID     *string `json:"order_id,omitempty"`
	PayoutRef   *string `json:"payout_ref,omitempty"`
	EventTitle  string  `json:"event_title,omitempty"`
	TicketCount int     `json:"ticket_count,omitempty"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at,omitempty"`
}

// WalletResponse is the organizer balance view.
type WalletResponse struct {
	Balance        int64   `json:"balance"`
	PendingBalance int64   `json:"pending_balance"`
	Currency       string  `json:"currency"`
	LastPayoutAt   *string `json:"last_payout_at,omitempty"`
}

// MerchantStatusResponse is the polled merchant account state.
type MerchantStatusResponse struct {
	MerchantID    string `json:"merchant_id"`
	AccountStatus string `json:"account_status"`
}
