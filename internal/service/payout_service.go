package service

import (
	"context"
	"fmt"
	"time"

	"ticketpay/internal/core/domain"
	"ticketpay/internal/core/ports"
	"ticketpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PayoutServiceImpl dispatches organizer withdrawals: reserve first, dispatch
// second, reconcile via webhook. Funds sit in pending_balance until the
// provider confirms or denies the batch; a synchronous dispatch failure
// releases them immediately through the same idempotent settle path the
// webhook uses.
type PayoutServiceImpl struct {
	organizerRepo ports.OrganizerRepository
	payoutRepo    ports.PayoutRepository
	txRepo        ports.TransactionRepository
	ledger        ports.LedgerService
	paypal        ports.PayPalClient
	minimumAmount int64
	currency      string
	log           zerolog.Logger
}

// NewPayoutService creates a new PayoutServiceImpl.
func NewPayoutService(
	organizerRepo ports.OrganizerRepository,
	payoutRepo ports.PayoutRepository,
	txRepo ports.TransactionRepository,
	ledger ports.LedgerService,
	paypalClient ports.PayPalClient,
	minimumAmount int64,
	currency string,
	log zerolog.Logger,
) *PayoutServiceImpl {
	return &PayoutServiceImpl{
		organizerRepo: organizerRepo,
		payoutRepo:    payoutRepo,
		txRepo:        txRepo,
		ledger:        ledger,
		paypal:        paypalClient,
		minimumAmount: minimumAmount,
		currency:      currency,
		log:           log,
	}
}

// RequestPayout reserves the amount, dispatches the payout batch and records
// a PENDING payout transaction. The reservation commits before the provider
// call, so a crash between the two leaves a pending reservation the
// reconciliation worker can release; it never leaves money dispatched but
// unreserved.
func (s *PayoutServiceImpl) RequestPayout(ctx context.Context, organizerID uuid.UUID, amount int64) (*domain.Transaction, error) {
	if amount < s.minimumAmount {
		return nil, apperror.ErrPayoutBelowMinimum(s.minimumAmount)
	}

	org, err := s.organizerRepo.GetByID(ctx, organizerID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if org == nil {
		return nil, apperror.ErrNotFound("Organizer")
	}
	receiver := ""
	if org.PayoutEmail != nil {
		receiver = *org.PayoutEmail
	}
	if receiver == "" {
		return nil, apperror.ErrNoPayoutDestination()
	}

	payoutRef := uuid.New().String()
	if err := s.ledger.ReserveForPayout(ctx, organizerID, amount, payoutRef, receiver); err != nil {
		return nil, err
	}

	batch, err := s.paypal.CreatePayout(ctx, ports.ProviderPayoutRequest{
		SenderBatchID: payoutRef,
		Receiver:      receiver,
		Amount:        amount,
		Currency:      s.currency,
		Note:          "TicketPay organizer payout",
	})
	if err != nil {
		// Synchronous rejection: release the reservation. The settle CAS keeps
		// this safe even if a failure webhook for the same batch also arrives.
		s.log.Error().Err(err).
			Str("payout_ref", payoutRef).
			Str("organizer_id", organizerID.String()).
			Msg("payout dispatch failed, releasing reserved funds")
		if _, rerr := s.ledger.ReleasePayout(ctx, payoutRef); rerr != nil {
			s.log.Error().Err(rerr).Str("payout_ref", payoutRef).Msg("failed to release reserved funds")
		}
		return nil, apperror.ErrPayoutDispatch(err)
	}

	if err := s.payoutRepo.SetProviderBatchID(ctx, payoutRef, batch.BatchID); err != nil {
		s.log.Error().Err(err).Str("payout_ref", payoutRef).Msg("failed to store provider batch id")
	}

	tx := &domain.Transaction{
		ID:          uuid.New(),
		OrganizerID: organizerID,
		Amount:      amount,
		Type:        domain.TransactionTypePayout,
		Status:      domain.TransactionStatusPending,
		PayoutRef:   &payoutRef,
		Metadata:    domain.TransactionMetadata{PayoutMethod: "paypal"},
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("recording payout transaction: %w", err))
	}

	s.log.Info().
		Str("payout_ref", payoutRef).
		Str("provider_batch_id", batch.BatchID).
		Str("organizer_id", organizerID.String()).
		Int64("amount", amount).
		Msg("payout dispatched")
	return tx, nil
}
