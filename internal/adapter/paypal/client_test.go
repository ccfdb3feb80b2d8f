package paypal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ticketpay/config"
	"ticketpay/internal/core/ports"
	"ticketpay/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient wires a client against an httptest server whose mux already
// answers the OAuth token endpoint.
func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *int32) {
	t.Helper()

	var tokenCalls int32
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.PayPalConfig{
		BaseURL:              srv.URL,
		ClientID:             "client-id",
		ClientSecret:         "client-secret",
		WebhookID:            "WH-ID",
		PartnerID:            "PARTNER1",
		PartnerAttributionID: "ATTR1",
		ReturnURL:            "https://app.example/return",
		CancelURL:            "https://app.example/cancel",
		Timeout:              5 * time.Second,
	}
	return NewClient(cfg, "USD", logger.NewWithWriter("debug", io.Discard)), &tokenCalls
}

func TestClient_TokenIsCachedAcrossCalls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/O1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"id": "O1", "status": "CREATED"})
	})

	client, tokenCalls := newTestClient(t, mux)
	ctx := context.Background()

	_, err := client.GetProviderOrder(ctx, "O1")
	require.NoError(t, err)
	_, err = client.GetProviderOrder(ctx, "O1")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(tokenCalls))
}

func TestClient_CreateProviderOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "ATTR1", r.Header.Get("PayPal-Partner-Attribution-Id"))

		var body createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CAPTURE", body.Intent)
		require.Len(t, body.PurchaseUnits, 1)
		assert.Equal(t, "150.00", body.PurchaseUnits[0].Amount.Value)
		assert.Equal(t, "USD", body.PurchaseUnits[0].Amount.CurrencyCode)
		assert.Equal(t, "MERCH123", body.PurchaseUnits[0].Payee.MerchantID)

		json.NewEncoder(w).Encode(map[string]any{
			"id":     "ORDER1",
			"status": "CREATED",
			"links": []map[string]string{
				{"rel": "approve", "href": "https://paypal.example/approve/ORDER1"},
			},
		})
	})

	client, _ := newTestClient(t, mux)

	order, err := client.CreateProviderOrder(context.Background(), ports.ProviderOrderRequest{
		ReferenceID: "ref-1",
		MerchantID:  "MERCH123",
		Amount:      15000,
		Description: "Summer Fest tickets",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORDER1", order.OrderID)
	assert.Equal(t, "https://paypal.example/approve/ORDER1", order.ApprovalURL)
}

func TestClient_CaptureProviderOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/ORDER1/capture", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "ORDER1",
			"status": "COMPLETED",
			"purchase_units": []map[string]any{{
				"payments": map[string]any{
					"captures": []map[string]any{{
						"id":     "CAP1",
						"status": "COMPLETED",
						"amount": map[string]string{"currency_code": "USD", "value": "150.00"},
					}},
				},
			}},
		})
	})

	client, _ := newTestClient(t, mux)

	cap, err := client.CaptureProviderOrder(context.Background(), "ORDER1")
	require.NoError(t, err)
	assert.Equal(t, "CAP1", cap.CaptureID)
	assert.Equal(t, "COMPLETED", cap.Status)
	assert.Equal(t, int64(15000), cap.Amount)
}

func TestClient_CaptureProviderOrder_Rejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/ORDER1/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{
			"name":     "UNPROCESSABLE_ENTITY",
			"message":  "ORDER_NOT_APPROVED",
			"debug_id": "d1",
		})
	})

	client, _ := newTestClient(t, mux)

	_, err := client.CaptureProviderOrder(context.Background(), "ORDER1")
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusUnprocessableEntity, provErr.StatusCode)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", provErr.Name)
	assert.True(t, IsDefinitiveRejection(err))
}

func TestClient_ServerErrorIsNotDefinitive(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders/ORDER1/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.CaptureProviderOrder(context.Background(), "ORDER1")
	require.Error(t, err)
	assert.False(t, IsDefinitiveRejection(err))
}

func TestClient_CreatePartnerReferral(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/customer/partner-referrals", func(w http.ResponseWriter, r *http.Request) {
		var body partnerReferralRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "track-1", body.TrackingID)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"links": []map[string]string{
				{"rel": "self", "href": "https://paypal.example/referral/1"},
				{"rel": "action_url", "href": "https://paypal.example/onboard/1"},
			},
		})
	})

	client, _ := newTestClient(t, mux)

	ref, err := client.CreatePartnerReferral(context.Background(), "track-1", "org@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://paypal.example/onboard/1", ref.ApprovalURL)
}

func TestClient_GetMerchantStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/customer/partners/PARTNER1/merchant-integrations/MERCH123", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"merchant_id":             "MERCH123",
			"payments_receivable":     true,
			"primary_email_confirmed": true,
		})
	})

	client, _ := newTestClient(t, mux)

	status, err := client.GetMerchantStatus(context.Background(), "MERCH123")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", status.Status)
	assert.True(t, status.PaymentsReceivable)
}

func TestClient_CreatePayout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/payments/payouts", func(w http.ResponseWriter, r *http.Request) {
		var body createPayoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ref-1", body.SenderBatchHeader.SenderBatchID)
		require.Len(t, body.Items, 1)
		assert.Equal(t, "ref-1", body.Items[0].SenderItemID)
		assert.Equal(t, "50.00", body.Items[0].Amount.Value)
		assert.Equal(t, "payout@example.com", body.Items[0].Receiver)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"batch_header": map[string]string{
				"payout_batch_id": "BATCH1",
				"batch_status":    "PENDING",
			},
		})
	})

	client, _ := newTestClient(t, mux)

	batch, err := client.CreatePayout(context.Background(), ports.ProviderPayoutRequest{
		SenderBatchID: "ref-1",
		Receiver:      "payout@example.com",
		Amount:        5000,
	})
	require.NoError(t, err)
	assert.Equal(t, "BATCH1", batch.BatchID)
	assert.Equal(t, "PENDING", batch.BatchStatus)
}

func TestClient_VerifyWebhookSignature(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		var body verifySignatureRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "WH-ID", body.WebhookID)
		assert.Equal(t, "t-1", body.TransmissionID)

		json.NewEncoder(w).Encode(map[string]string{"verification_status": "SUCCESS"})
	})

	client, _ := newTestClient(t, mux)

	valid, err := client.VerifyWebhookSignature(context.Background(), ports.WebhookHeaders{
		TransmissionID:   "t-1",
		TransmissionTime: "2026-01-01T00:00:00Z",
		TransmissionSig:  "sig",
		CertURL:          "https://paypal.example/cert",
		AuthAlgo:         "SHA256withRSA",
	}, []byte(`{"id":"WH-1"}`))
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "150.00", formatAmount(15000))
	assert.Equal(t, "0.05", formatAmount(5))
	assert.Equal(t, "10.50", formatAmount(1050))
	assert.Equal(t, "-2.50", formatAmount(-250))
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"150.00", 15000},
		{"10.5", 1050},
		{"0.05", 5},
		{"7", 700},
		{"-2.50", -250},
	}
	for _, tc := range cases {
		got, err := parseAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := parseAmount("abc")
	assert.Error(t, err)
}
