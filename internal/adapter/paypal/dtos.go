package paypal

// Wire shapes for the PayPal REST API (orders v2, payouts v1, partner
// referrals v2, merchant integrations v1).

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type errorBody struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	DebugID string `json:"debug_id"`
}

// --- Partner referrals ---

type partnerReferralRequest struct {
	TrackingID string      `json:"tracking_id"`
	Email      string      `json:"email,omitempty"`
	Operations []operation `json:"operations"`
	Products   []string    `json:"products"`
	LegalConsents []legalConsent `json:"legal_consents"`
}

type operation struct {
	Operation string `json:"operation"`
}

type legalConsent struct {
	Type    string `json:"type"`
	Granted bool   `json:"granted"`
}

type partnerReferralResponse struct {
	Links []link `json:"links"`
}

// --- Merchant integrations ---

type merchantIntegrationResponse struct {
	MerchantID            string `json:"merchant_id"`
	PaymentsReceivable    bool   `json:"payments_receivable"`
	PrimaryEmailConfirmed bool   `json:"primary_email_confirmed"`
}

// --- Orders ---

type amountValue struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type payee struct {
	MerchantID string `json:"merchant_id"`
}

type purchaseUnitRequest struct {
	ReferenceID string      `json:"reference_id,omitempty"`
	Description string      `json:"description,omitempty"`
	Amount      amountValue `json:"amount"`
	Payee       *payee      `json:"payee,omitempty"`
}

type applicationContext struct {
	ReturnURL string `json:"return_url,omitempty"`
	CancelURL string `json:"cancel_url,omitempty"`
}

type createOrderRequest struct {
	Intent             string                `json:"intent"`
	PurchaseUnits      []purchaseUnitRequest `json:"purchase_units"`
	ApplicationContext *applicationContext   `json:"application_context,omitempty"`
}

type capture struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Amount amountValue `json:"amount"`
}

type payments struct {
	Captures []capture `json:"captures"`
}

type purchaseUnitResponse struct {
	ReferenceID string    `json:"reference_id"`
	Payments    *payments `json:"payments,omitempty"`
}

type orderResponse struct {
	ID            string                 `json:"id"`
	Status        string                 `json:"status"`
	PurchaseUnits []purchaseUnitResponse `json:"purchase_units"`
	Links         []link                 `json:"links"`
}

// --- Payouts ---

type senderBatchHeader struct {
	SenderBatchID string `json:"sender_batch_id"`
	EmailSubject  string `json:"email_subject,omitempty"`
}

type payoutItem struct {
	RecipientType string      `json:"recipient_type"`
	Amount        amountValue `json:"amount"`
	Receiver      string      `json:"receiver"`
	Note          string      `json:"note,omitempty"`
	SenderItemID  string      `json:"sender_item_id,omitempty"`
}

type createPayoutRequest struct {
	SenderBatchHeader senderBatchHeader `json:"sender_batch_header"`
	Items             []payoutItem      `json:"items"`
}

type batchHeader struct {
	PayoutBatchID string `json:"payout_batch_id"`
	BatchStatus   string `json:"batch_status"`
}

type payoutBatchResponse struct {
	BatchHeader batchHeader `json:"batch_header"`
}

// --- Webhook verification ---

type verifySignatureRequest struct {
	AuthAlgo         string      `json:"auth_algo"`
	CertURL          string      `json:"cert_url"`
	TransmissionID   string      `json:"transmission_id"`
	TransmissionSig  string      `json:"transmission_sig"`
	TransmissionTime string      `json:"transmission_time"`
	WebhookID        string      `json:"webhook_id"`
	WebhookEvent     interface{} `json:"webhook_event"`
}

type verifySignatureResponse struct {
	VerificationStatus string `json:"verification_status"`
}
