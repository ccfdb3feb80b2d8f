package integration

import (
	"context"
	"fmt"
	"sync"

	"ticketpay/internal/core/ports"
)

const goodSignature = "good-sig"

// fakePayPal is an in-memory stand-in for the payment network. Order ids are
// sequential, captures succeed unless an error is injected, and webhook
// signatures verify iff the transmission signature equals goodSignature.
type fakePayPal struct {
	mu         sync.Mutex
	orderSeq   int
	orders     map[string]*ports.ProviderOrder
	amounts    map[string]int64
	captureErr error
	payoutErr  error
	merchant   map[string]string // merchantID -> provider status, default ACTIVE
}

func newFakePayPal() *fakePayPal {
	return &fakePayPal{
		orders:   make(map[string]*ports.ProviderOrder),
		amounts:  make(map[string]int64),
		merchant: make(map[string]string),
	}
}

func (f *fakePayPal) setCaptureErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captureErr = err
}

func (f *fakePayPal) setPayoutErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payoutErr = err
}

func (f *fakePayPal) CreatePartnerReferral(ctx context.Context, trackingID, email string) (*ports.PartnerReferral, error) {
	return &ports.PartnerReferral{
		ReferralID:  "REF-" + trackingID,
		ApprovalURL: "https://www.sandbox.paypal.com/merchantsignup?token=" + trackingID,
	}, nil
}

func (f *fakePayPal) GetMerchantStatus(ctx context.Context, merchantID string) (*ports.ProviderMerchantStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.merchant[merchantID]
	if !ok {
		status = "ACTIVE"
	}
	return &ports.ProviderMerchantStatus{
		MerchantID:            merchantID,
		PaymentsReceivable:    status == "ACTIVE",
		PrimaryEmailConfirmed: status == "ACTIVE",
		Status:                status,
	}, nil
}

func (f *fakePayPal) CreateProviderOrder(ctx context.Context, req ports.ProviderOrderRequest) (*ports.ProviderOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderSeq++
	id := fmt.Sprintf("ORDER-%03d", f.orderSeq)
	order := &ports.ProviderOrder{
		OrderID:     id,
		Status:      "CREATED",
		ApprovalURL: "https://www.sandbox.paypal.com/checkoutnow?token=" + id,
	}
	f.orders[id] = order
	f.amounts[id] = req.Amount
	return order, nil
}

func (f *fakePayPal) CaptureProviderOrder(ctx context.Context, orderID string) (*ports.ProviderCapture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("unknown order: %s", orderID)
	}
	order.Status = "COMPLETED"
	order.CaptureID = "CAP-" + orderID
	return &ports.ProviderCapture{
		OrderID:   orderID,
		CaptureID: order.CaptureID,
		Status:    "COMPLETED",
		Amount:    f.amounts[orderID],
	}, nil
}

func (f *fakePayPal) GetProviderOrder(ctx context.Context, orderID string) (*ports.ProviderOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("unknown order: %s", orderID)
	}
	cp := *order
	return &cp, nil
}

func (f *fakePayPal) CreatePayout(ctx context.Context, req ports.ProviderPayoutRequest) (*ports.ProviderPayoutBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payoutErr != nil {
		return nil, f.payoutErr
	}
	return &ports.ProviderPayoutBatch{
		BatchID:     "BATCH-" + req.SenderBatchID,
		BatchStatus: "PENDING",
	}, nil
}

func (f *fakePayPal) VerifyWebhookSignature(ctx context.Context, headers ports.WebhookHeaders, body []byte) (bool, error) {
	return headers.TransmissionSig == goodSignature, nil
}
