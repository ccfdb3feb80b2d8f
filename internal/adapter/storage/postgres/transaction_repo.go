package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ticketpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const transactionColumns = `id, organizer_id, buyer_id, event_id, amount, type, status,
	provider_order_id, capture_id, payout_ref, metadata, created_at, processed_at`

// TransactionRepo implements ports.TransactionRepository. Rows are an audit
// trail: inserts and CAS status moves only, never deletes.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	return r.insert(ctx, r.pool, t)
}

// CreateInTx inserts inside the caller's transaction.
func (r *TransactionRepo) CreateInTx(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	return r.insert(ctx, tx, t)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *TransactionRepo) insert(ctx context.Context, db execer, t *domain.Transaction) error {
	meta, err := json.Marshal(t.Metadata)
	if err != nil {
		return fmt.Errorf("marshal transaction metadata: %w", err)
	}

	query := `INSERT INTO transactions (id, organizer_id, buyer_id, event_id, amount, type, status,
		provider_order_id, capture_id, payout_ref, metadata, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = db.Exec(ctx, query,
		t.ID, t.OrganizerID, t.BuyerID, t.EventID, t.Amount, t.Type, t.Status,
		t.ProviderOrderID, t.CaptureID, t.PayoutRef, meta, t.CreatedAt, t.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByProviderOrderID fetches the transaction keyed by the external order id.
func (r *TransactionRepo) GetByProviderOrderID(ctx context.Context, orderID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE provider_order_id = $1`
	return r.scanTransaction(r.pool.QueryRow(ctx, query, orderID))
}

// GetByPayoutRef fetches the payout transaction keyed by the payout reference.
func (r *TransactionRepo) GetByPayoutRef(ctx context.Context, payoutRef string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE payout_ref = $1`
	return r.scanTransaction(r.pool.QueryRow(ctx, query, payoutRef))
}

// ListByOrganizer returns the organizer's most recent transactions.
func (r *TransactionRepo) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE organizer_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, organizerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return r.collectTransactions(rows)
}

// MarkCompleted is the capture idempotency guard: CAS PENDING -> COMPLETED.
// Zero rows affected means another capture path settled the transaction first
// and the caller must not credit the wallet again.
func (r *TransactionRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, captureID string) (bool, error) {
	query := `UPDATE transactions SET status = $1, capture_id = $2, processed_at = NOW()
		WHERE id = $3 AND status = $4`

	tag, err := tx.Exec(ctx, query, domain.TransactionStatusCompleted, captureID, id, domain.TransactionStatusPending)
	if err != nil {
		return false, fmt.Errorf("mark transaction completed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkFailed is CAS PENDING -> FAILED after a definitive provider rejection.
func (r *TransactionRepo) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE transactions SET status = $1, processed_at = NOW()
		WHERE id = $2 AND status = $3`

	tag, err := r.pool.Exec(ctx, query, domain.TransactionStatusFailed, id, domain.TransactionStatusPending)
	if err != nil {
		return false, fmt.Errorf("mark transaction failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkRefunded is CAS COMPLETED -> REFUNDED (the refund overlay).
func (r *TransactionRepo) MarkRefunded(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `UPDATE transactions SET status = $1, processed_at = NOW()
		WHERE id = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, domain.TransactionStatusRefunded, id, domain.TransactionStatusCompleted)
	if err != nil {
		return false, fmt.Errorf("mark transaction refunded: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SettleByPayoutRef is CAS PENDING -> status on a payout transaction.
func (r *TransactionRepo) SettleByPayoutRef(ctx context.Context, tx pgx.Tx, payoutRef string, status domain.TransactionStatus) (bool, error) {
	query := `UPDATE transactions SET status = $1, processed_at = NOW()
		WHERE payout_ref = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, status, payoutRef, domain.TransactionStatusPending)
	if err != nil {
		return false, fmt.Errorf("settle payout transaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListStalePending returns payment transactions stuck PENDING longer than the
// threshold, oldest first, for the reconciliation worker.
func (r *TransactionRepo) ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE type = $1 AND status = $2 AND created_at < NOW() - $3::interval
		ORDER BY created_at ASC LIMIT $4`

	interval := fmt.Sprintf("%d seconds", int(olderThan.Seconds()))
	rows, err := r.pool.Query(ctx, query, domain.TransactionTypePayment, domain.TransactionStatusPending, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale pending transactions: %w", err)
	}
	defer rows.Close()

	return r.collectTransactions(rows)
}

func (r *TransactionRepo) collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var result []domain.Transaction
	for rows.Next() {
		t, err := r.scanTransactionValues(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return result, nil
}

func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t, err := r.scanTransactionValues(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *TransactionRepo) scanTransactionValues(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var meta []byte
	err := row.Scan(
		&t.ID, &t.OrganizerID, &t.BuyerID, &t.EventID, &t.Amount, &t.Type, &t.Status,
		&t.ProviderOrderID, &t.CaptureID, &t.PayoutRef, &meta, &t.CreatedAt, &t.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &t.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal transaction metadata: %w", err)
		}
	}
	return t, nil
}
