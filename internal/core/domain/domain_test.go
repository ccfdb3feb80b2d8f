package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAccountStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from AccountStatus
		to   AccountStatus
		want bool
	}{
		{"unverified to pending", AccountStatusUnverified, AccountStatusPending, true},
		{"pending to verified", AccountStatusPending, AccountStatusVerified, true},
		{"pending to declined", AccountStatusPending, AccountStatusDeclined, true},
		{"verified to pending is stale", AccountStatusVerified, AccountStatusPending, false},
		{"declined cannot overwrite verified", AccountStatusVerified, AccountStatusDeclined, false},
		{"verified cannot overwrite declined", AccountStatusDeclined, AccountStatusVerified, false},
		{"revoked only from verified", AccountStatusPending, AccountStatusRevoked, false},
		{"verified to revoked", AccountStatusVerified, AccountStatusRevoked, true},
		{"same status is a no-op", AccountStatusPending, AccountStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrganizer_PaymentReady(t *testing.T) {
	merchantID := "MERCH123"
	empty := ""

	tests := []struct {
		name       string
		status     AccountStatus
		merchantID *string
		want       bool
	}{
		{"verified with merchant id", AccountStatusVerified, &merchantID, true},
		{"verified without merchant id", AccountStatusVerified, nil, false},
		{"verified with empty merchant id", AccountStatusVerified, &empty, false},
		{"pending with merchant id", AccountStatusPending, &merchantID, false},
		{"revoked with merchant id", AccountStatusRevoked, &merchantID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Organizer{AccountStatus: tt.status, MerchantID: tt.merchantID}
			assert.Equal(t, tt.want, o.PaymentReady())
		})
	}
}

func TestTransaction_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status TransactionStatus
		want   bool
	}{
		{"pending", TransactionStatusPending, false},
		{"completed", TransactionStatusCompleted, true},
		{"failed", TransactionStatusFailed, true},
		{"refunded", TransactionStatusRefunded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.status}
			assert.Equal(t, tt.want, tx.IsTerminal())
		})
	}
}

func TestEvent_TicketType(t *testing.T) {
	ga := TicketType{ID: uuid.New(), Name: "GA", Price: 2500, Remaining: 100}
	vip := TicketType{ID: uuid.New(), Name: "VIP", Price: 10000, Remaining: 10}
	e := &Event{ID: uuid.New(), TicketTypes: []TicketType{ga, vip}}

	found := e.TicketType(vip.ID)
	assert.NotNil(t, found)
	assert.Equal(t, "VIP", found.Name)

	assert.Nil(t, e.TicketType(uuid.New()))
}

func TestAccountStatus_Constants(t *testing.T) {
	assert.Equal(t, AccountStatus("UNVERIFIED"), AccountStatusUnverified)
	assert.Equal(t, AccountStatus("PENDING"), AccountStatusPending)
	assert.Equal(t, AccountStatus("VERIFIED"), AccountStatusVerified)
	assert.Equal(t, AccountStatus("DECLINED"), AccountStatusDeclined)
	assert.Equal(t, AccountStatus("REVOKED"), AccountStatusRevoked)
}

func TestTransactionType_Constants(t *testing.T) {
	assert.Equal(t, TransactionType("PAYMENT"), TransactionTypePayment)
	assert.Equal(t, TransactionType("PAYOUT"), TransactionTypePayout)
	assert.Equal(t, TransactionType("REFUND"), TransactionTypeRefund)
}
