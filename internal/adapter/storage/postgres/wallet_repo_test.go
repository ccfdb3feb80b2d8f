package postgres

import (
	"context"
	"testing"
	"time"

	"ticketpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(organizerID uuid.UUID) *domain.Wallet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Wallet{
		ID:             uuid.New(),
		OrganizerID:    organizerID,
		Balance:        25000,
		PendingBalance: 5000,
		Currency:       "USD",
		LastPayoutAt:   nil,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func walletColumns() []string {
	return []string{"id", "organizer_id", "balance", "pending_balance", "currency", "last_payout_at", "created_at", "updated_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletColumns()).AddRow(
		w.ID, w.OrganizerID, w.Balance, w.PendingBalance,
		w.Currency, w.LastPayoutAt, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_GetByOrganizerID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock, "USD")
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE organizer_id").
		WithArgs(w.OrganizerID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByOrganizerID(context.Background(), w.OrganizerID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.Balance, result.Balance)
	assert.Equal(t, w.PendingBalance, result.PendingBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByOrganizerID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock, "USD")

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE organizer_id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(walletColumns()))

	result, err := repo.GetByOrganizerID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Credit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock, "USD")
	organizerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallets .+ ON CONFLICT").
		WithArgs(pgxmock.AnyArg(), organizerID, int64(10000), "USD").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Credit(context.Background(), tx, organizerID, 10000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A lazily created wallet carries the configured currency, not a hardcoded one.
func TestWalletRepo_Credit_ConfiguredCurrency(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock, "EUR")
	organizerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallets .+ ON CONFLICT").
		WithArgs(pgxmock.AnyArg(), organizerID, int64(2500), "EUR").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Credit(context.Background(), tx, organizerID, 2500)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_DebitWithFloor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock, "USD")
	organizerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance = balance -").
		WithArgs(int64(3000), organizerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := repo.DebitWithFloor(context.Background(), tx, organizerID, 3000)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Zero rows affected means the WHERE floor rejected the debit.
func TestWalletRepo_DebitWithFloor_Insufficient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock, "USD")
	organizerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance = balance -").
		WithArgs(int64(999999), organizerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := repo.DebitWithFloor(context.Background(), tx, organizerID, 999999)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_ReserveFunds(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock, "USD")
	organizerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets").
		WithArgs(int64(5000), organizerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := repo.ReserveFunds(context.Background(), tx, organizerID, 5000)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_ConfirmReserved_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock, "USD")
	organizerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets").
		WithArgs(int64(5000), organizerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.ConfirmReserved(context.Background(), tx, organizerID, 5000)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "wallet not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_ReleaseReserved(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock, "USD")
	organizerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets").
		WithArgs(int64(5000), organizerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.ReleaseReserved(context.Background(), tx, organizerID, 5000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
