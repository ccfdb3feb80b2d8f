package postgres

import (
	"context"
	"errors"
	"fmt"

	"ticketpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const payoutColumns = `payout_ref, organizer_id, amount, provider_batch_id, receiver, status, created_at, settled_at`

// PayoutRepo implements ports.PayoutRepository.
type PayoutRepo struct {
	pool Pool
}

// NewPayoutRepo creates a new PayoutRepo.
func NewPayoutRepo(pool Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

// Create inserts a pending payout reservation inside the reservation's DB
// transaction.
func (r *PayoutRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.PendingPayout) error {
	query := `INSERT INTO pending_payouts (payout_ref, organizer_id, amount, provider_batch_id, receiver, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		p.PayoutRef, p.OrganizerID, p.Amount, p.ProviderBatchID, p.Receiver, p.Status, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pending payout: %w", err)
	}
	return nil
}

// GetByRef fetches a payout by our payout reference (sender batch id).
func (r *PayoutRepo) GetByRef(ctx context.Context, payoutRef string) (*domain.PendingPayout, error) {
	query := `SELECT ` + payoutColumns + ` FROM pending_payouts WHERE payout_ref = $1`

	p := &domain.PendingPayout{}
	err := r.pool.QueryRow(ctx, query, payoutRef).Scan(
		&p.PayoutRef, &p.OrganizerID, &p.Amount, &p.ProviderBatchID,
		&p.Receiver, &p.Status, &p.CreatedAt, &p.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payout by ref: %w", err)
	}
	return p, nil
}

// SetProviderBatchID records the provider's batch id after dispatch.
func (r *PayoutRepo) SetProviderBatchID(ctx context.Context, payoutRef, providerBatchID string) error {
	query := `UPDATE pending_payouts SET provider_batch_id = $1 WHERE payout_ref = $2`

	tag, err := r.pool.Exec(ctx, query, providerBatchID, payoutRef)
	if err != nil {
		return fmt.Errorf("set provider batch id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending payout not found: %s", payoutRef)
	}
	return nil
}

// Settle is CAS PENDING -> status, returning the settled row. Nil means the
// payout was not pending: already settled by another delivery of the same
// outcome, or by the synchronous failure path.
func (r *PayoutRepo) Settle(ctx context.Context, tx pgx.Tx, payoutRef string, status domain.PayoutStatus) (*domain.PendingPayout, error) {
	query := `UPDATE pending_payouts SET status = $1, settled_at = NOW()
		WHERE payout_ref = $2 AND status = $3
		RETURNING ` + payoutColumns

	p := &domain.PendingPayout{}
	err := tx.QueryRow(ctx, query, status, payoutRef, domain.PayoutStatusPending).Scan(
		&p.PayoutRef, &p.OrganizerID, &p.Amount, &p.ProviderBatchID,
		&p.Receiver, &p.Status, &p.CreatedAt, &p.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("settle payout: %w", err)
	}
	return p, nil
}

// ListPending returns the organizer's in-flight payout reservations.
func (r *PayoutRepo) ListPending(ctx context.Context, organizerID uuid.UUID) ([]domain.PendingPayout, error) {
	query := `SELECT ` + payoutColumns + ` FROM pending_payouts
		WHERE organizer_id = $1 AND status = $2 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, organizerID, domain.PayoutStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending payouts: %w", err)
	}
	defer rows.Close()

	var result []domain.PendingPayout
	for rows.Next() {
		p := domain.PendingPayout{}
		if err := rows.Scan(
			&p.PayoutRef, &p.OrganizerID, &p.Amount, &p.ProviderBatchID,
			&p.Receiver, &p.Status, &p.CreatedAt, &p.SettledAt,
		); err != nil {
			return nil, fmt.Errorf("scan pending payout: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending payouts: %w", err)
	}
	return result, nil
}
