package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"ticketpay/config"
	"ticketpay/internal/core/ports"

	"github.com/rs/zerolog"
)

// tokenSlack refreshes the OAuth token this long before it actually expires.
const tokenSlack = 60 * time.Second

// Client implements ports.PayPalClient against the PayPal REST API.
type Client struct {
	baseURL              string
	clientID             string
	clientSecret         string
	webhookID            string
	partnerID            string
	partnerAttributionID string
	returnURL            string
	cancelURL            string
	currency             string
	httpClient           *http.Client
	log                  zerolog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a PayPal API client.
func NewClient(cfg config.PayPalConfig, currency string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:              strings.TrimRight(cfg.BaseURL, "/"),
		clientID:             cfg.ClientID,
		clientSecret:         cfg.ClientSecret,
		webhookID:            cfg.WebhookID,
		partnerID:            cfg.PartnerID,
		partnerAttributionID: cfg.PartnerAttributionID,
		returnURL:            cfg.ReturnURL,
		cancelURL:            cfg.CancelURL,
		currency:             currency,
		httpClient:           &http.Client{Timeout: cfg.Timeout},
		log:                  log,
	}
}

// CreatePartnerReferral registers an organizer for merchant onboarding.
func (c *Client) CreatePartnerReferral(ctx context.Context, trackingID, email string) (*ports.PartnerReferral, error) {
	req := partnerReferralRequest{
		TrackingID: trackingID,
		Email:      email,
		Operations: []operation{{Operation: "API_INTEGRATION"}},
		Products:   []string{"EXPRESS_CHECKOUT"},
		LegalConsents: []legalConsent{
			{Type: "SHARE_DATA_CONSENT", Granted: true},
		},
	}

	var resp partnerReferralResponse
	if err := c.do(ctx, http.MethodPost, "/v2/customer/partner-referrals", req, &resp); err != nil {
		return nil, err
	}

	actionURL := findLink(resp.Links, "action_url")
	if actionURL == "" {
		return nil, fmt.Errorf("partner referral response missing action_url link")
	}
	return &ports.PartnerReferral{
		ReferralID:  trackingID,
		ApprovalURL: actionURL,
	}, nil
}

// GetMerchantStatus polls the merchant integration status.
func (c *Client) GetMerchantStatus(ctx context.Context, merchantID string) (*ports.ProviderMerchantStatus, error) {
	path := fmt.Sprintf("/v1/customer/partners/%s/merchant-integrations/%s",
		url.PathEscape(c.partnerID), url.PathEscape(merchantID))

	var resp merchantIntegrationResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	status := "PENDING"
	if resp.PaymentsReceivable && resp.PrimaryEmailConfirmed {
		status = "ACTIVE"
	}
	return &ports.ProviderMerchantStatus{
		MerchantID:            resp.MerchantID,
		PaymentsReceivable:    resp.PaymentsReceivable,
		PrimaryEmailConfirmed: resp.PrimaryEmailConfirmed,
		Status:                status,
	}, nil
}

// CreateProviderOrder creates a remote order routed to the organizer's
// merchant account.
func (c *Client) CreateProviderOrder(ctx context.Context, req ports.ProviderOrderRequest) (*ports.ProviderOrder, error) {
	currency := req.Currency
	if currency == "" {
		currency = c.currency
	}
	body := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnitRequest{{
			ReferenceID: req.ReferenceID,
			Description: req.Description,
			Amount:      amountValue{CurrencyCode: currency, Value: formatAmount(req.Amount)},
			Payee:       &payee{MerchantID: req.MerchantID},
		}},
		ApplicationContext: &applicationContext{
			ReturnURL: c.returnURL,
			CancelURL: c.cancelURL,
		},
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &resp); err != nil {
		return nil, err
	}
	return &ports.ProviderOrder{
		OrderID:     resp.ID,
		Status:      resp.Status,
		ApprovalURL: findLink(resp.Links, "approve"),
	}, nil
}

// CaptureProviderOrder collects funds for an approved order.
func (c *Client) CaptureProviderOrder(ctx context.Context, orderID string) (*ports.ProviderCapture, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(orderID))

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return nil, err
	}

	result := &ports.ProviderCapture{OrderID: resp.ID, Status: resp.Status}
	if cap := firstCapture(resp); cap != nil {
		result.CaptureID = cap.ID
		result.Status = cap.Status
		if amt, err := parseAmount(cap.Amount.Value); err == nil {
			result.Amount = amt
		}
	}
	return result, nil
}

// GetProviderOrder fetches current order state (reconciliation poll).
func (c *Client) GetProviderOrder(ctx context.Context, orderID string) (*ports.ProviderOrder, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s", url.PathEscape(orderID))

	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	order := &ports.ProviderOrder{
		OrderID:     resp.ID,
		Status:      resp.Status,
		ApprovalURL: findLink(resp.Links, "approve"),
	}
	if cap := firstCapture(resp); cap != nil {
		order.CaptureID = cap.ID
	}
	return order, nil
}

// CreatePayout dispatches a payout batch.
func (c *Client) CreatePayout(ctx context.Context, req ports.ProviderPayoutRequest) (*ports.ProviderPayoutBatch, error) {
	currency := req.Currency
	if currency == "" {
		currency = c.currency
	}
	body := createPayoutRequest{
		SenderBatchHeader: senderBatchHeader{
			SenderBatchID: req.SenderBatchID,
			EmailSubject:  "You have a payout from your ticket sales",
		},
		Items: []payoutItem{{
			RecipientType: "EMAIL",
			Amount:        amountValue{CurrencyCode: currency, Value: formatAmount(req.Amount)},
			Receiver:      req.Receiver,
			Note:          req.Note,
			// Item-level webhook events carry sender_item_id, so it must
			// resolve back to the same payout ref as the batch id.
			SenderItemID: req.SenderBatchID,
		}},
	}

	var resp payoutBatchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/payments/payouts", body, &resp); err != nil {
		return nil, err
	}
	return &ports.ProviderPayoutBatch{
		BatchID:     resp.BatchHeader.PayoutBatchID,
		BatchStatus: resp.BatchHeader.BatchStatus,
	}, nil
}

// VerifyWebhookSignature asks the provider to verify a webhook delivery.
func (c *Client) VerifyWebhookSignature(ctx context.Context, headers ports.WebhookHeaders, body []byte) (bool, error) {
	req := verifySignatureRequest{
		AuthAlgo:         headers.AuthAlgo,
		CertURL:          headers.CertURL,
		TransmissionID:   headers.TransmissionID,
		TransmissionSig:  headers.TransmissionSig,
		TransmissionTime: headers.TransmissionTime,
		WebhookID:        c.webhookID,
		WebhookEvent:     json.RawMessage(body),
	}

	var resp verifySignatureResponse
	if err := c.do(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", req, &resp); err != nil {
		return false, err
	}
	return resp.VerificationStatus == "SUCCESS", nil
}

// do executes an authenticated API call and decodes the response.
func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.partnerAttributionID != "" {
		httpReq.Header.Set("PayPal-Partner-Attribution-Id", c.partnerAttributionID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("paypal request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var eb errorBody
		if err := json.Unmarshal(raw, &eb); err != nil || eb.Name == "" {
			return &ProviderError{StatusCode: resp.StatusCode, Name: "UNKNOWN", Message: string(raw)}
		}
		return &ProviderError{
			StatusCode: resp.StatusCode,
			Name:       eb.Name,
			Message:    eb.Message,
			DebugID:    eb.DebugID,
		}
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// token returns a cached OAuth access token, refreshing when close to expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSlack)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", &ProviderError{StatusCode: resp.StatusCode, Name: "TOKEN_ERROR", Message: string(raw)}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	c.log.Debug().Time("expiry", c.tokenExpiry).Msg("paypal access token refreshed")
	return c.accessToken, nil
}

func findLink(links []link, rel string) string {
	for _, l := range links {
		if l.Rel == rel {
			return l.Href
		}
	}
	return ""
}

func firstCapture(resp orderResponse) *capture {
	for _, pu := range resp.PurchaseUnits {
		if pu.Payments != nil && len(pu.Payments.Captures) > 0 {
			return &pu.Payments.Captures[0]
		}
	}
	return nil
}

// formatAmount renders cents as the decimal string the API expects.
func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// parseAmount converts a decimal amount string to cents.
func parseAmount(value string) (int64, error) {
	parts := strings.SplitN(value, ".", 2)
	whole, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	negative := strings.HasPrefix(parts[0], "-")

	var frac int64
	if len(parts) == 2 {
		f := parts[1]
		if len(f) > 2 {
			f = f[:2]
		}
		for len(f) < 2 {
			f += "0"
		}
		frac, err = strconv.ParseInt(f, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", value, err)
		}
	}

	cents := whole * 100
	if negative {
		cents -= frac
	} else {
		cents += frac
	}
	return cents, nil
}
