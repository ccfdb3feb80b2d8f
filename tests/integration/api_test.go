package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "ticketpay/internal/adapter/http/handler"
	"ticketpay/internal/adapter/http/middleware"
	"ticketpay/internal/adapter/notify"
	"ticketpay/internal/adapter/paypal"
	redisStore "ticketpay/internal/adapter/storage/redis"
	"ticketpay/internal/core/domain"
	"ticketpay/internal/service"
	"ticketpay/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret = "integration-secret"
	testJWTIssuer = "ticketpay-auth"
)

// testApp builds the full application stack: real HTTP layer, middleware,
// handlers and services, with in-memory repos, miniredis for the dedup cache,
// and a fake payment provider. End-to-end flows run against the same code
// paths production uses, minus the real database and network.
type testApp struct {
	server     *httptest.Server
	redis      *miniredis.Miniredis
	organizers *inMemoryOrganizerRepo
	wallets    *inMemoryWalletRepo
	txs        *inMemoryTransactionRepo
	payouts    *inMemoryPayoutRepo
	catalog    *inMemoryEventCatalog
	provider   *fakePayPal
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	organizers := newInMemoryOrganizerRepo()
	wallets := newInMemoryWalletRepo()
	txs := newInMemoryTransactionRepo()
	payouts := newInMemoryPayoutRepo()
	webhookEvents := newInMemoryWebhookEventRepo()
	catalog := newInMemoryEventCatalog()
	transactor := newInMemoryTransactor()
	provider := newFakePayPal()

	log := logger.NewWithWriter("error", io.Discard)
	notifier := notify.NewLogNotifier(log)
	dedup := redisStore.NewEventDedupStore(rdb)

	ledger := service.NewLedgerService(wallets, payouts, txs, transactor, log)
	onboarding := service.NewOnboardingService(organizers, provider, notifier, log)
	orders := service.NewOrderService(txs, organizers, catalog, ledger, provider, transactor, "USD", log)
	payoutSvc := service.NewPayoutService(organizers, payouts, txs, ledger, provider, 1000, "USD", log)
	walletSvc := service.NewWalletService(wallets, txs, "USD", log)
	webhooks := service.NewWebhookService(provider, organizers, txs, webhookEvents, dedup, onboarding, orders, ledger, notifier, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		OnboardingSvc: onboarding,
		OrderSvc:      orders,
		WalletSvc:     walletSvc,
		PayoutSvc:     payoutSvc,
		WebhookSvc:    webhooks,
		JWTSecret:     testJWTSecret,
		JWTIssuer:     testJWTIssuer,
		Logger:        log,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{
		server:     server,
		redis:      mr,
		organizers: organizers,
		wallets:    wallets,
		txs:        txs,
		payouts:    payouts,
		catalog:    catalog,
		provider:   provider,
	}
}

func tokenFor(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	claims := middleware.IdentityClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    testJWTIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

// doJSON performs an authenticated request and decodes the response envelope.
func doJSON(t *testing.T, app *testApp, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, app.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

// postWebhook delivers a signed provider webhook.
func postWebhook(t *testing.T, app *testApp, sig string, payload map[string]interface{}) int {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/webhook/paypal-webhook", bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Paypal-Transmission-Id", uuid.New().String())
	req.Header.Set("Paypal-Transmission-Time", time.Now().UTC().Format(time.RFC3339))
	req.Header.Set("Paypal-Transmission-Sig", sig)
	req.Header.Set("Paypal-Cert-Url", "https://api.sandbox.paypal.com/cert")
	req.Header.Set("Paypal-Auth-Algo", "SHA256withRSA")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	return resp.StatusCode
}

func seedOrganizer(app *testApp, verified bool, status domain.AccountStatus, merchantID, payoutEmail string) uuid.UUID {
	org := &domain.Organizer{
		ID:                uuid.New(),
		Email:             "organizer@example.com",
		Name:              "Test Organizer",
		VerifiedOrganizer: verified,
		AccountStatus:     status,
	}
	if merchantID != "" {
		org.MerchantID = &merchantID
	}
	if payoutEmail != "" {
		org.PayoutEmail = &payoutEmail
	}
	app.organizers.put(org)
	return org.ID
}

func seedEvent(app *testApp, organizerID uuid.UUID, price int64, remaining int) (uuid.UUID, uuid.UUID) {
	eventID := uuid.New()
	ticketTypeID := uuid.New()
	app.catalog.put(&domain.Event{
		ID:          eventID,
		OrganizerID: organizerID,
		Title:       "Summer Fest",
		TicketTypes: []domain.TicketType{
			{ID: ticketTypeID, Name: "General Admission", Price: price, Remaining: remaining},
		},
	})
	return eventID, ticketTypeID
}

// createOrder seeds a buyer order and returns the provider order id.
func createOrder(t *testing.T, app *testApp, eventID, ticketTypeID uuid.UUID, qty int) string {
	t.Helper()
	buyer := tokenFor(t, uuid.New(), middleware.RoleBuyer)
	status, resp := doJSON(t, app, http.MethodPost, "/payment/create-paypal-order", buyer, map[string]interface{}{
		"event_id": eventID.String(),
		"selections": []map[string]interface{}{
			{"id": ticketTypeID.String(), "quantity": qty},
		},
	})
	require.Equal(t, http.StatusCreated, status)
	data := resp["data"].(map[string]interface{})
	return data["order_id"].(string)
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_OnboardingFlow(t *testing.T) {
	app := newTestApp(t)
	organizerID := seedOrganizer(app, true, domain.AccountStatusUnverified, "", "")
	token := tokenFor(t, organizerID, middleware.RoleOrganizer)

	// Begin onboarding: hosted approval URL comes back, status moves to PENDING.
	status, resp := doJSON(t, app, http.MethodGet, "/connect/onboard-organizer", token, nil)
	require.Equal(t, http.StatusOK, status)
	data := resp["data"].(map[string]interface{})
	assert.Contains(t, data["approval_url"], "merchantsignup")

	org, err := app.organizers.GetByID(t.Context(), organizerID)
	require.NoError(t, err)
	require.NotNil(t, org.TrackingID)
	assert.Equal(t, domain.AccountStatusPending, org.AccountStatus)

	// The onboarding-completed webhook pairs the merchant id and verifies.
	code := postWebhook(t, app, goodSignature, map[string]interface{}{
		"id":         uuid.New().String(),
		"event_type": domain.EventMerchantOnboardingCompleted,
		"resource": map[string]interface{}{
			"merchant_id": "MERCH-001",
			"tracking_id": *org.TrackingID,
		},
	})
	assert.Equal(t, http.StatusOK, code)

	org, err = app.organizers.GetByID(t.Context(), organizerID)
	require.NoError(t, err)
	require.NotNil(t, org.MerchantID)
	assert.Equal(t, "MERCH-001", *org.MerchantID)
	assert.Equal(t, domain.AccountStatusVerified, org.AccountStatus)

	// Status poll agrees (fake provider reports ACTIVE).
	status, resp = doJSON(t, app, http.MethodGet, "/connect/check-paypal-status", token, nil)
	require.Equal(t, http.StatusOK, status)
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, "MERCH-001", data["merchant_id"])
	assert.Equal(t, string(domain.AccountStatusVerified), data["account_status"])
}

// A declined review lands via webhook with the provider's reason, and the
// organizer can restart onboarding afterwards, which resets the account to
// PENDING and clears the reason.
func TestIntegration_OnboardingDeclinedAndRestart(t *testing.T) {
	app := newTestApp(t)
	organizerID := seedOrganizer(app, true, domain.AccountStatusPending, "MERCH-001", "")
	token := tokenFor(t, organizerID, middleware.RoleOrganizer)

	code := postWebhook(t, app, goodSignature, map[string]interface{}{
		"id":         uuid.New().String(),
		"event_type": domain.EventMerchantOnboardingDeclined,
		"resource": map[string]interface{}{
			"merchant_id": "MERCH-001",
			"reason":      "documents rejected",
		},
	})
	assert.Equal(t, http.StatusOK, code)

	org, err := app.organizers.GetByID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusDeclined, org.AccountStatus)
	require.NotNil(t, org.DeclineReason)
	assert.Equal(t, "documents rejected", *org.DeclineReason)

	// Restart: fresh referral, account back to PENDING, reason cleared.
	status, resp := doJSON(t, app, http.MethodGet, "/connect/onboard-organizer", token, nil)
	require.Equal(t, http.StatusOK, status)
	data := resp["data"].(map[string]interface{})
	assert.Contains(t, data["approval_url"], "merchantsignup")

	org, err = app.organizers.GetByID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusPending, org.AccountStatus)
	assert.Nil(t, org.DeclineReason)
}

func TestIntegration_Onboarding_NotEligible(t *testing.T) {
	app := newTestApp(t)
	organizerID := seedOrganizer(app, false, domain.AccountStatusUnverified, "", "")
	token := tokenFor(t, organizerID, middleware.RoleOrganizer)

	status, resp := doJSON(t, app, http.MethodGet, "/connect/onboard-organizer", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTH_002", resp["error_code"])
}

func TestIntegration_OrderCaptureFlow(t *testing.T) {
	app := newTestApp(t)
	organizerID := seedOrganizer(app, true, domain.AccountStatusVerified, "MERCH-001", "payout@example.com")
	eventID, ticketTypeID := seedEvent(app, organizerID, 2500, 100)
	buyer := tokenFor(t, uuid.New(), middleware.RoleBuyer)

	// Create: priced from the catalog, not the client.
	status, resp := doJSON(t, app, http.MethodPost, "/payment/create-paypal-order", buyer, map[string]interface{}{
		"event_id": eventID.String(),
		"selections": []map[string]interface{}{
			{"id": ticketTypeID.String(), "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, status)
	data := resp["data"].(map[string]interface{})
	orderID := data["order_id"].(string)
	assert.Equal(t, float64(5000), data["amount"])
	assert.Contains(t, data["approval_url"], "checkoutnow")

	// Capture settles: transaction COMPLETED, wallet credited, attendee added.
	status, resp = doJSON(t, app, http.MethodPost, "/payment/capture-paypal-order", buyer, map[string]interface{}{
		"order_id": orderID,
	})
	require.Equal(t, http.StatusOK, status)
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, string(domain.TransactionStatusCompleted), data["status"])

	w, err := app.wallets.GetByOrganizerID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), w.Balance)

	event, err := app.catalog.GetEvent(t.Context(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 98, event.TicketTypes[0].Remaining)
	assert.Equal(t, 1, app.catalog.attendeeCount(eventID))

	// Repeat capture is a read, not a second credit.
	status, _ = doJSON(t, app, http.MethodPost, "/payment/capture-paypal-order", buyer, map[string]interface{}{
		"order_id": orderID,
	})
	require.Equal(t, http.StatusOK, status)
	w, err = app.wallets.GetByOrganizerID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), w.Balance)
	assert.Equal(t, 1, app.catalog.attendeeCount(eventID))
}

func TestIntegration_Capture_Declined(t *testing.T) {
	app := newTestApp(t)
	organizerID := seedOrganizer(app, true, domain.AccountStatusVerified, "MERCH-001", "")
	eventID, ticketTypeID := seedEvent(app, organizerID, 2500, 10)
	orderID := createOrder(t, app, eventID, ticketTypeID, 1)

	app.provider.setCaptureErr(&paypal.ProviderError{
		StatusCode: 422,
		Name:       "UNPROCESSABLE_ENTITY",
		Message:    "INSTRUMENT_DECLINED",
	})

	buyer := tokenFor(t, uuid.New(), middleware.RoleBuyer)
	status, resp := doJSON(t, app, http.MethodPost, "/payment/capture-paypal-order", buyer, map[string]interface{}{
		"order_id": orderID,
	})
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "ORD_002", resp["error_code"])

	tx, err := app.txs.GetByProviderOrderID(t.Context(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, tx.Status)

	// Wallet untouched.
	w, err := app.wallets.GetByOrganizerID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestIntegration_WebhookSettlesPendingOrder(t *testing.T) {
	app := newTestApp(t)
	organizerID := seedOrganizer(app, true, domain.AccountStatusVerified, "MERCH-001", "")
	eventID, ticketTypeID := seedEvent(app, organizerID, 2500, 10)
	orderID := createOrder(t, app, eventID, ticketTypeID, 2)

	// The capture webhook arrives before the buyer's capture call.
	code := postWebhook(t, app, goodSignature, map[string]interface{}{
		"id":         uuid.New().String(),
		"event_type": domain.EventCaptureCompleted,
		"resource": map[string]interface{}{
			"id": "CAP-" + orderID,
			"supplementary_data": map[string]interface{}{
				"related_ids": map[string]interface{}{"order_id": orderID},
			},
		},
	})
	assert.Equal(t, http.StatusOK, code)

	w, err := app.wallets.GetByOrganizerID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), w.Balance)

	// The buyer's late capture call sees the completed transaction; no second
	// credit.
	app.provider.setCaptureErr(&paypal.ProviderError{StatusCode: 422, Name: "ORDER_ALREADY_CAPTURED"})
	buyer := tokenFor(t, uuid.New(), middleware.RoleBuyer)
	status, resp := doJSON(t, app, http.MethodPost, "/payment/capture-paypal-order", buyer, map[string]interface{}{
		"order_id": orderID,
	})
	require.Equal(t, http.StatusOK, status)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, string(domain.TransactionStatusCompleted), data["status"])

	w, err = app.wallets.GetByOrganizerID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), w.Balance)
}

func TestIntegration_RefundWebhook(t *testing.T) {
	app := newTestApp(t)
	organizerID := seedOrganizer(app, true, domain.AccountStatusVerified, "MERCH-001", "")
	eventID, ticketTypeID := seedEvent(app, organizerID, 2500, 10)
	orderID := createOrder(t, app, eventID, ticketTypeID, 2)

	buyer := tokenFor(t, uuid.New(), middleware.RoleBuyer)
	status, _ := doJSON(t, app, http.MethodPost, "/payment/capture-paypal-order", buyer, map[string]interface{}{
		"order_id": orderID,
	})
	require.Equal(t, http.StatusOK, status)

	refundEvent := func() int {
		return postWebhook(t, app, goodSignature, map[string]interface{}{
			"id":         uuid.New().String(),
			"event_type": domain.EventCaptureRefunded,
			"resource": map[string]interface{}{
				"id": "REFUND-001",
				"supplementary_data": map[string]interface{}{
					"related_ids": map[string]interface{}{"order_id": orderID},
				},
			},
		})
	}
	assert.Equal(t, http.StatusOK, refundEvent())

	w, err := app.wallets.GetByOrganizerID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.Balance)

	tx, err := app.txs.GetByProviderOrderID(t.Context(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusRefunded, tx.Status)

	// Redelivery (fresh event id, same order): the status CAS makes it a no-op.
	assert.Equal(t, http.StatusOK, refundEvent())
	w, err = app.wallets.GetByOrganizerID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.Balance)
}

func TestIntegration_PayoutFlow(t *testing.T) {
	app := newTestApp(t)
	organizerID := seedOrganizer(app, true, domain.AccountStatusVerified, "MERCH-001", "payout@example.com")
	eventID, ticketTypeID := seedEvent(app, organizerID, 2500, 10)
	orderID := createOrder(t, app, eventID, ticketTypeID, 2)
	buyer := tokenFor(t, uuid.New(), middleware.RoleBuyer)
	status, _ := doJSON(t, app, http.MethodPost, "/payment/capture-paypal-order", buyer, map[string]interface{}{
		"order_id": orderID,
	})
	require.Equal(t, http.StatusOK, status)

	organizer := tokenFor(t, organizerID, middleware.RoleOrganizer)
	status, resp := doJSON(t, app, http.MethodPost, "/wallet/request-payout", organizer, map[string]interface{}{
		"amount": 3000,
	})
	require.Equal(t, http.StatusCreated, status)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, string(domain.TransactionStatusPending), data["status"])
	payoutRef := data["payout_ref"].(string)

	// Reservation moved funds out of the spendable balance.
	w, err := app.wallets.GetByOrganizerID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), w.Balance)
	assert.Equal(t, int64(3000), w.PendingBalance)

	successEvent := func() int {
		return postWebhook(t, app, goodSignature, map[string]interface{}{
			"id":         uuid.New().String(),
			"event_type": domain.EventPayoutBatchSuccess,
			"resource": map[string]interface{}{
				"batch_header": map[string]interface{}{
					"sender_batch_header": map[string]interface{}{"sender_batch_id": payoutRef},
				},
			},
		})
	}
	assert.Equal(t, http.StatusOK, successEvent())

	w, err = app.wallets.GetByOrganizerID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), w.Balance)
	assert.Equal(t, int64(0), w.PendingBalance)
	assert.NotNil(t, w.LastPayoutAt)

	tx, err := app.txs.GetByPayoutRef(t.Context(), payoutRef)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, tx.Status)

	// Redelivered success: the settle CAS finds no pending payout and no-ops.
	assert.Equal(t, http.StatusOK, successEvent())
	w, err = app.wallets.GetByOrganizerID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.PendingBalance)

	// Wallet response reflects settlement.
	status, resp = doJSON(t, app, http.MethodGet, "/wallet", organizer, nil)
	require.Equal(t, http.StatusOK, status)
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2000), data["balance"])
	assert.NotEmpty(t, data["last_payout_at"])
}

func TestIntegration_PayoutDenied_RestoresFunds(t *testing.T) {
	app := newTestApp(t)
	organizerID := seedOrganizer(app, true, domain.AccountStatusVerified, "MERCH-001", "payout@example.com")
	eventID, ticketTypeID := seedEvent(app, organizerID, 2500, 10)
	orderID := createOrder(t, app, eventID, ticketTypeID, 2)
	buyer := tokenFor(t, uuid.New(), middleware.RoleBuyer)
	status, _ := doJSON(t, app, http.MethodPost, "/payment/capture-paypal-order", buyer, map[string]interface{}{
		"order_id": orderID,
	})
	require.Equal(t, http.StatusOK, status)

	organizer := tokenFor(t, organizerID, middleware.RoleOrganizer)
	status, resp := doJSON(t, app, http.MethodPost, "/wallet/request-payout", organizer, map[string]interface{}{
		"amount": 5000,
	})
	require.Equal(t, http.StatusCreated, status)
	payoutRef := resp["data"].(map[string]interface{})["payout_ref"].(string)

	code := postWebhook(t, app, goodSignature, map[string]interface{}{
		"id":         uuid.New().String(),
		"event_type": domain.EventPayoutBatchDenied,
		"resource": map[string]interface{}{
			"batch_header": map[string]interface{}{
				"sender_batch_header": map[string]interface{}{"sender_batch_id": payoutRef},
			},
		},
	})
	assert.Equal(t, http.StatusOK, code)

	w, err := app.wallets.GetByOrganizerID(t.Context(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), w.Balance)
	assert.Equal(t, int64(0), w.PendingBalance)

	tx, err := app.txs.GetByPayoutRef(t.Context(), payoutRef)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, tx.Status)
}

func TestIntegration_PayoutValidation(t *testing.T) {
	app := newTestApp(t)
	organizerID := seedOrganizer(app, true, domain.AccountStatusVerified, "MERCH-001", "payout@example.com")
	organizer := tokenFor(t, organizerID, middleware.RoleOrganizer)

	// Below the 1000 minimum.
	status, resp := doJSON(t, app, http.MethodPost, "/wallet/request-payout", organizer, map[string]interface{}{
		"amount": 500,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "PAY_002", resp["error_code"])

	// More than the (empty) balance.
	status, resp = doJSON(t, app, http.MethodPost, "/wallet/request-payout", organizer, map[string]interface{}{
		"amount": 10000,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "PAY_001", resp["error_code"])

	// No payout destination on file.
	noDest := seedOrganizer(app, true, domain.AccountStatusVerified, "MERCH-002", "")
	noDestToken := tokenFor(t, noDest, middleware.RoleOrganizer)
	status, resp = doJSON(t, app, http.MethodPost, "/wallet/request-payout", noDestToken, map[string]interface{}{
		"amount": 2000,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PAY_003", resp["error_code"])
}

func TestIntegration_TransactionHistory(t *testing.T) {
	app := newTestApp(t)
	organizerID := seedOrganizer(app, true, domain.AccountStatusVerified, "MERCH-001", "")
	eventID, ticketTypeID := seedEvent(app, organizerID, 2500, 10)
	orderID := createOrder(t, app, eventID, ticketTypeID, 1)
	buyer := tokenFor(t, uuid.New(), middleware.RoleBuyer)
	status, _ := doJSON(t, app, http.MethodPost, "/payment/capture-paypal-order", buyer, map[string]interface{}{
		"order_id": orderID,
	})
	require.Equal(t, http.StatusOK, status)

	organizer := tokenFor(t, organizerID, middleware.RoleOrganizer)
	status, resp := doJSON(t, app, http.MethodGet, "/transactions", organizer, nil)
	require.Equal(t, http.StatusOK, status)
	items := resp["data"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, string(domain.TransactionTypePayment), first["type"])
	assert.Equal(t, "Summer Fest", first["event_title"])
}

func TestIntegration_Webhook_BadSignature(t *testing.T) {
	app := newTestApp(t)
	code := postWebhook(t, app, "forged-sig", map[string]interface{}{
		"id":         uuid.New().String(),
		"event_type": domain.EventCaptureCompleted,
		"resource":   map[string]interface{}{},
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestIntegration_AuthBoundaries(t *testing.T) {
	app := newTestApp(t)

	// No token.
	status, resp := doJSON(t, app, http.MethodGet, "/wallet", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "AUTH_001", resp["error_code"])

	// Buyer role on an organizer-only route.
	buyer := tokenFor(t, uuid.New(), middleware.RoleBuyer)
	status, resp = doJSON(t, app, http.MethodGet, "/wallet", buyer, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTH_002", resp["error_code"])
}
