package service

import (
	"context"
	"time"

	"ticketpay/internal/core/domain"
	"ticketpay/internal/core/ports"
	"ticketpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultTransactionLimit = 50

// WalletServiceImpl is the organizer-facing reporting surface: balances and
// transaction history. Read-only; mutations go through the ledger.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	currency   string
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	currency string,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		currency:   currency,
		log:        log,
	}
}

// GetWallet returns the organizer's wallet. Organizers who have never been
// credited see an empty wallet rather than a 404; the row is created lazily
// on first credit.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, organizerID uuid.UUID) (*domain.Wallet, error) {
	w, err := s.walletRepo.GetByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if w == nil {
		return &domain.Wallet{
			OrganizerID: organizerID,
			Currency:    s.currency,
			CreatedAt:   time.Now().UTC(),
		}, nil
	}
	return w, nil
}

// ListTransactions returns the organizer's transaction history, newest first.
func (s *WalletServiceImpl) ListTransactions(ctx context.Context, organizerID uuid.UUID, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultTransactionLimit
	}
	txs, err := s.txRepo.ListByOrganizer(ctx, organizerID, limit)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return txs, nil
}
