package service

import (
	"context"
	"fmt"
	"time"

	"ticketpay/internal/core/domain"
	"ticketpay/internal/core/ports"
	"ticketpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService. It is the only component
// that mutates wallet balances; capture, refund, payout dispatch and webhook
// reconciliation all funnel through here so the balance invariants are
// checked in exactly one place.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	payoutRepo ports.PayoutRepository
	txRepo     ports.TransactionRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	payoutRepo ports.PayoutRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo: walletRepo,
		payoutRepo: payoutRepo,
		txRepo:     txRepo,
		transactor: transactor,
		log:        log,
	}
}

// Credit adds captured funds inside the caller's DB transaction, so the
// capture CAS and the wallet increment commit or roll back together.
func (s *LedgerServiceImpl) Credit(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return apperror.Validation("credit amount must be positive")
	}
	if err := s.walletRepo.Credit(ctx, tx, organizerID, amount); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}

// Debit removes refunded funds with a floor check. A refund for more than the
// current balance indicates drift between us and the provider; surfaced as an
// internal error rather than letting the balance go negative.
func (s *LedgerServiceImpl) Debit(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return apperror.Validation("debit amount must be positive")
	}
	ok, err := s.walletRepo.DebitWithFloor(ctx, tx, organizerID, amount)
	if err != nil {
		return apperror.InternalError(err)
	}
	if !ok {
		return apperror.InternalError(fmt.Errorf("refund debit of %d exceeds balance for organizer %s", amount, organizerID))
	}
	return nil
}

// ReserveForPayout atomically moves amount from balance to pending and
// records the reservation. The floor check is in the UPDATE itself; failure
// leaves nothing to roll back.
func (s *LedgerServiceImpl) ReserveForPayout(ctx context.Context, organizerID uuid.UUID, amount int64, payoutRef, receiver string) error {
	if amount <= 0 {
		return apperror.Validation("payout amount must be positive")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	ok, err := s.walletRepo.ReserveFunds(ctx, dbTx, organizerID, amount)
	if err != nil {
		return apperror.InternalError(err)
	}
	if !ok {
		return apperror.ErrInsufficientFunds()
	}

	reservation := &domain.PendingPayout{
		PayoutRef:   payoutRef,
		OrganizerID: organizerID,
		Amount:      amount,
		Receiver:    receiver,
		Status:      domain.PayoutStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.payoutRepo.Create(ctx, dbTx, reservation); err != nil {
		return apperror.InternalError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payout_ref", payoutRef).
		Str("organizer_id", organizerID.String()).
		Int64("amount", amount).
		Msg("payout funds reserved")
	return nil
}

// ConfirmPayout settles a confirmed payout. The CAS on the pending_payouts
// row is the idempotency guard: a redelivered success webhook, or a success
// arriving after the failure path already ran, finds no PENDING row and no-ops.
func (s *LedgerServiceImpl) ConfirmPayout(ctx context.Context, payoutRef string) (bool, error) {
	return s.settle(ctx, payoutRef, domain.PayoutStatusCompleted)
}

// ReleasePayout restores reserved funds after a failed payout, idempotent on
// the payout ref exactly like ConfirmPayout: the synchronous dispatch failure
// path and a payout-failed webhook can both fire for the same payout without
// releasing twice.
func (s *LedgerServiceImpl) ReleasePayout(ctx context.Context, payoutRef string) (bool, error) {
	return s.settle(ctx, payoutRef, domain.PayoutStatusFailed)
}

func (s *LedgerServiceImpl) settle(ctx context.Context, payoutRef string, status domain.PayoutStatus) (bool, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	settled, err := s.payoutRepo.Settle(ctx, dbTx, payoutRef, status)
	if err != nil {
		return false, apperror.InternalError(err)
	}
	if settled == nil {
		// Not pending: already settled by another path, or unknown ref.
		return false, nil
	}

	if status == domain.PayoutStatusCompleted {
		err = s.walletRepo.ConfirmReserved(ctx, dbTx, settled.OrganizerID, settled.Amount)
	} else {
		err = s.walletRepo.ReleaseReserved(ctx, dbTx, settled.OrganizerID, settled.Amount)
	}
	if err != nil {
		return false, apperror.InternalError(err)
	}

	txStatus := domain.TransactionStatusCompleted
	if status == domain.PayoutStatusFailed {
		txStatus = domain.TransactionStatusFailed
	}
	if _, err := s.txRepo.SettleByPayoutRef(ctx, dbTx, payoutRef, txStatus); err != nil {
		return false, apperror.InternalError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return false, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payout_ref", payoutRef).
		Str("status", string(status)).
		Int64("amount", settled.Amount).
		Msg("payout settled")
	return true, nil
}
