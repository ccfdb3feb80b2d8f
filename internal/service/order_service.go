package service

import (
	"context"
	"fmt"
	"time"

	"ticketpay/internal/adapter/paypal"
	"ticketpay/internal/core/domain"
	"ticketpay/internal/core/ports"
	"ticketpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderServiceImpl manages the ticket order lifecycle: price the selection,
// create the provider order routed to the organizer's merchant account, then
// capture approved orders idempotently. Settlement (the capture CAS, the
// wallet credit and the attendee append) runs in one DB transaction whether
// it is triggered by the buyer's capture call, a capture webhook, or the
// reconciliation poll.
type OrderServiceImpl struct {
	txRepo        ports.TransactionRepository
	organizerRepo ports.OrganizerRepository
	catalog       ports.EventCatalog
	ledger        ports.LedgerService
	paypal        ports.PayPalClient
	transactor    ports.DBTransactor
	currency      string
	log           zerolog.Logger
}

// NewOrderService creates a new OrderServiceImpl.
func NewOrderService(
	txRepo ports.TransactionRepository,
	organizerRepo ports.OrganizerRepository,
	catalog ports.EventCatalog,
	ledger ports.LedgerService,
	paypalClient ports.PayPalClient,
	transactor ports.DBTransactor,
	currency string,
	log zerolog.Logger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		txRepo:        txRepo,
		organizerRepo: organizerRepo,
		catalog:       catalog,
		ledger:        ledger,
		paypal:        paypalClient,
		transactor:    transactor,
		currency:      currency,
		log:           log,
	}
}

// CreateOrder validates the buyer's ticket selection, prices it from the
// catalog (never from client input), creates the provider order and records a
// PENDING transaction keyed by the provider order id.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, req ports.CreateOrderRequest) (*ports.CreateOrderResult, error) {
	if len(req.Selections) == 0 {
		return nil, apperror.ErrInvalidOrder("at least one ticket selection is required")
	}

	event, err := s.catalog.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if event == nil {
		return nil, apperror.ErrNotFound("Event")
	}

	organizer, err := s.organizerRepo.GetByID(ctx, event.OrganizerID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if organizer == nil || !organizer.PaymentReady() {
		return nil, apperror.ErrMerchantNotReady()
	}

	var total int64
	var count int
	for _, sel := range req.Selections {
		if sel.Quantity <= 0 {
			return nil, apperror.ErrInvalidOrder("ticket quantity must be positive")
		}
		tt := event.TicketType(sel.TicketTypeID)
		if tt == nil {
			return nil, apperror.ErrInvalidOrder("unknown ticket type in selection")
		}
		if tt.Remaining < sel.Quantity {
			return nil, apperror.ErrInvalidOrder(fmt.Sprintf("not enough %q tickets remaining", tt.Name))
		}
		total += tt.Price * int64(sel.Quantity)
		count += sel.Quantity
	}
	if total <= 0 {
		return nil, apperror.ErrInvalidOrder("order total must be positive")
	}

	referenceID := uuid.New().String()
	order, err := s.paypal.CreateProviderOrder(ctx, ports.ProviderOrderRequest{
		MerchantID:  *organizer.MerchantID,
		Amount:      total,
		Currency:    s.currency,
		Description: event.Title,
		ReferenceID: referenceID,
	})
	if err != nil {
		s.log.Error().Err(err).Str("event_id", req.EventID.String()).Msg("provider order creation failed")
		return nil, apperror.ErrOrderDispatch(err)
	}

	tx := &domain.Transaction{
		ID:              uuid.New(),
		OrganizerID:     event.OrganizerID,
		BuyerID:         &req.BuyerID,
		EventID:         &req.EventID,
		Amount:          total,
		Type:            domain.TransactionTypePayment,
		Status:          domain.TransactionStatusPending,
		ProviderOrderID: &order.OrderID,
		Metadata: domain.TransactionMetadata{
			EventTitle:  event.Title,
			TicketCount: count,
			Selections:  req.Selections,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, apperror.InternalError(err)
	}

	s.log.Info().
		Str("order_id", order.OrderID).
		Str("event_id", req.EventID.String()).
		Int64("amount", total).
		Msg("order created")

	return &ports.CreateOrderResult{
		OrderID:     order.OrderID,
		ApprovalURL: order.ApprovalURL,
		Amount:      total,
	}, nil
}

// CaptureOrder collects funds for an approved order. Idempotent on the order
// id: a repeat call for a completed order returns the stored transaction
// without touching the provider or the wallet. The provider capture call is
// itself idempotent on the order id, so a retry after an unknown outcome is
// safe.
func (s *OrderServiceImpl) CaptureOrder(ctx context.Context, orderID string) (*domain.Transaction, error) {
	tx, err := s.txRepo.GetByProviderOrderID(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if tx == nil {
		return nil, apperror.ErrNotFound("Order")
	}
	if tx.Status == domain.TransactionStatusCompleted || tx.Status == domain.TransactionStatusRefunded {
		return tx, nil
	}
	if tx.Status == domain.TransactionStatusFailed {
		return nil, apperror.ErrCaptureFailed()
	}

	capture, err := s.paypal.CaptureProviderOrder(ctx, orderID)
	if err != nil {
		if paypal.IsDefinitiveRejection(err) {
			if _, ferr := s.FailOrder(ctx, orderID); ferr != nil {
				s.log.Error().Err(ferr).Str("order_id", orderID).Msg("failed to mark declined order")
			}
			s.log.Warn().Err(err).Str("order_id", orderID).Msg("capture declined by provider")
			return nil, apperror.ErrCaptureFailed()
		}
		// Transport error or 5xx: the capture may have landed. Leave the
		// transaction pending for webhook/poll reconciliation.
		s.log.Error().Err(err).Str("order_id", orderID).Msg("capture outcome unknown")
		return nil, apperror.ErrCaptureOutcomeUnknown(err)
	}

	if _, err := s.settleCapture(ctx, tx, capture.CaptureID); err != nil {
		return nil, err
	}
	return s.txRepo.GetByProviderOrderID(ctx, orderID)
}

// ReconcileCapture applies a provider-confirmed capture without calling the
// provider; the capture webhook and the stale-order poll both land here.
func (s *OrderServiceImpl) ReconcileCapture(ctx context.Context, orderID, captureID string) (bool, error) {
	tx, err := s.txRepo.GetByProviderOrderID(ctx, orderID)
	if err != nil {
		return false, apperror.InternalError(err)
	}
	if tx == nil {
		// Capture event for an order we never created. Log and ack; replaying
		// the delivery will not help.
		s.log.Warn().Str("order_id", orderID).Msg("capture event for unknown order")
		return false, nil
	}
	if tx.Status != domain.TransactionStatusPending {
		return false, nil
	}
	return s.settleCapture(ctx, tx, captureID)
}

// settleCapture runs the settlement transaction: the status CAS, the wallet
// credit and the attendee append commit or roll back as one. The CAS makes
// the whole settlement exactly-once under concurrent capture calls and
// webhook redeliveries.
func (s *OrderServiceImpl) settleCapture(ctx context.Context, tx *domain.Transaction, captureID string) (bool, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	ok, err := s.txRepo.MarkCompleted(ctx, dbTx, tx.ID, captureID)
	if err != nil {
		return false, apperror.InternalError(err)
	}
	if !ok {
		// Lost the race: another path settled this order first.
		return false, nil
	}

	if err := s.ledger.Credit(ctx, dbTx, tx.OrganizerID, tx.Amount); err != nil {
		return false, err
	}

	if tx.BuyerID != nil && tx.EventID != nil && tx.ProviderOrderID != nil {
		attendee := &domain.Attendee{
			ID:        uuid.New(),
			EventID:   *tx.EventID,
			BuyerID:   *tx.BuyerID,
			OrderID:   *tx.ProviderOrderID,
			Tickets:   tx.Metadata.Selections,
			Amount:    tx.Amount,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.catalog.AddAttendee(ctx, dbTx, attendee); err != nil {
			return false, apperror.InternalError(err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return false, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("order_id", deref(tx.ProviderOrderID)).
		Str("capture_id", captureID).
		Int64("amount", tx.Amount).
		Str("organizer_id", tx.OrganizerID.String()).
		Msg("capture settled")
	return true, nil
}

// ReconcileRefund applies a refund overlay on a completed order: the status
// flips COMPLETED -> REFUNDED, the organizer wallet is debited, and a REFUND
// transaction records the reversal. Idempotent via the status CAS.
func (s *OrderServiceImpl) ReconcileRefund(ctx context.Context, orderID string) (bool, error) {
	tx, err := s.txRepo.GetByProviderOrderID(ctx, orderID)
	if err != nil {
		return false, apperror.InternalError(err)
	}
	if tx == nil {
		s.log.Warn().Str("order_id", orderID).Msg("refund event for unknown order")
		return false, nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	ok, err := s.txRepo.MarkRefunded(ctx, dbTx, tx.ID)
	if err != nil {
		return false, apperror.InternalError(err)
	}
	if !ok {
		return false, nil
	}

	if err := s.ledger.Debit(ctx, dbTx, tx.OrganizerID, tx.Amount); err != nil {
		return false, err
	}

	// The audit row rides the same transaction as the status CAS and the
	// debit: an insert failure rolls all three back and the redelivered
	// webhook retries the whole overlay.
	refund := &domain.Transaction{
		ID:              uuid.New(),
		OrganizerID:     tx.OrganizerID,
		BuyerID:         tx.BuyerID,
		EventID:         tx.EventID,
		Amount:          tx.Amount,
		Type:            domain.TransactionTypeRefund,
		Status:          domain.TransactionStatusCompleted,
		ProviderOrderID: nil,
		CaptureID:       tx.CaptureID,
		Metadata:        domain.TransactionMetadata{EventTitle: tx.Metadata.EventTitle},
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.txRepo.CreateInTx(ctx, dbTx, refund); err != nil {
		return false, apperror.InternalError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return false, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("order_id", orderID).
		Int64("amount", tx.Amount).
		Msg("refund applied")
	return true, nil
}

// FailOrder marks a pending order failed after a definitive rejection or a
// reconciliation poll finding the order voided.
func (s *OrderServiceImpl) FailOrder(ctx context.Context, orderID string) (bool, error) {
	tx, err := s.txRepo.GetByProviderOrderID(ctx, orderID)
	if err != nil {
		return false, apperror.InternalError(err)
	}
	if tx == nil {
		return false, nil
	}
	ok, err := s.txRepo.MarkFailed(ctx, tx.ID)
	if err != nil {
		return false, apperror.InternalError(err)
	}
	return ok, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
