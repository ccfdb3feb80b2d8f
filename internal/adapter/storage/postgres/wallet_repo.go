package postgres

import (
	"context"
	"errors"
	"fmt"

	"ticketpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository. Every balance mutation is a
// single UPDATE with the arithmetic done in SQL, so concurrent captures and
// payouts for the same organizer serialize at the row level without
// application locks. Floor checks live in the WHERE clause: zero rows
// affected means the guard failed and nothing moved.
type WalletRepo struct {
	pool     Pool
	currency string
}

// NewWalletRepo creates a new WalletRepo. Lazily created wallets carry the
// given currency.
func NewWalletRepo(pool Pool, currency string) *WalletRepo {
	return &WalletRepo{pool: pool, currency: currency}
}

// GetByOrganizerID fetches a wallet by organizer id. Returns nil, nil when the
// organizer has no wallet yet (nothing captured so far).
func (r *WalletRepo) GetByOrganizerID(ctx context.Context, organizerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, organizer_id, balance, pending_balance, currency, last_payout_at, created_at, updated_at
		FROM wallets WHERE organizer_id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, organizerID).Scan(
		&w.ID, &w.OrganizerID, &w.Balance, &w.PendingBalance,
		&w.Currency, &w.LastPayoutAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by organizer id: %w", err)
	}
	return w, nil
}

// Credit adds captured funds, creating the wallet lazily on first credit.
func (r *WalletRepo) Credit(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error {
	query := `INSERT INTO wallets (id, organizer_id, balance, pending_balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, NOW(), NOW())
		ON CONFLICT (organizer_id)
		DO UPDATE SET balance = wallets.balance + $3, updated_at = NOW()`

	_, err := tx.Exec(ctx, query, uuid.New(), organizerID, amount, r.currency)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	return nil
}

// DebitWithFloor subtracts refunded funds only when the balance covers them.
func (r *WalletRepo) DebitWithFloor(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) (bool, error) {
	query := `UPDATE wallets SET balance = balance - $1, updated_at = NOW()
		WHERE organizer_id = $2 AND balance >= $1`

	tag, err := tx.Exec(ctx, query, amount, organizerID)
	if err != nil {
		return false, fmt.Errorf("debit wallet: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ReserveFunds moves amount from balance to pending_balance. The balance floor
// lives in the WHERE clause: two concurrent reservations can both succeed only
// if the balance supports both, and neither can push it below zero.
func (r *WalletRepo) ReserveFunds(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) (bool, error) {
	query := `UPDATE wallets
		SET balance = balance - $1, pending_balance = pending_balance + $1, updated_at = NOW()
		WHERE organizer_id = $2 AND balance >= $1`

	tag, err := tx.Exec(ctx, query, amount, organizerID)
	if err != nil {
		return false, fmt.Errorf("reserve wallet funds: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ConfirmReserved finalizes a confirmed payout: the balance was decremented at
// reservation time, so only pending_balance drops here.
func (r *WalletRepo) ConfirmReserved(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error {
	query := `UPDATE wallets
		SET pending_balance = pending_balance - $1, last_payout_at = NOW(), updated_at = NOW()
		WHERE organizer_id = $2`

	tag, err := tx.Exec(ctx, query, amount, organizerID)
	if err != nil {
		return fmt.Errorf("confirm reserved funds: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found for organizer: %s", organizerID)
	}
	return nil
}

// ReleaseReserved returns reserved funds to the available balance after a
// failed payout.
func (r *WalletRepo) ReleaseReserved(ctx context.Context, tx pgx.Tx, organizerID uuid.UUID, amount int64) error {
	query := `UPDATE wallets
		SET balance = balance + $1, pending_balance = pending_balance - $1, updated_at = NOW()
		WHERE organizer_id = $2`

	tag, err := tx.Exec(ctx, query, amount, organizerID)
	if err != nil {
		return fmt.Errorf("release reserved funds: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found for organizer: %s", organizerID)
	}
	return nil
}
