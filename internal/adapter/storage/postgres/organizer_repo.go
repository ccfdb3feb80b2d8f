package postgres

import (
	"context"
	"errors"
	"fmt"

	"ticketpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const organizerColumns = `id, email, name, verified_organizer, merchant_id, tracking_id,
	account_status, verification_email, decline_reason, payout_email, onboarded_at`

// OrganizerRepo implements ports.OrganizerRepository over the organizer
// profile table owned by the auth/catalog side; this service only touches the
// merchant account columns.
type OrganizerRepo struct {
	pool Pool
}

// NewOrganizerRepo creates a new OrganizerRepo.
func NewOrganizerRepo(pool Pool) *OrganizerRepo {
	return &OrganizerRepo{pool: pool}
}

// GetByID fetches an organizer by id.
func (r *OrganizerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organizer, error) {
	query := `SELECT ` + organizerColumns + ` FROM organizers WHERE id = $1`
	return r.scanOrganizer(r.pool.QueryRow(ctx, query, id))
}

// GetByMerchantID fetches an organizer by their external merchant id.
func (r *OrganizerRepo) GetByMerchantID(ctx context.Context, merchantID string) (*domain.Organizer, error) {
	query := `SELECT ` + organizerColumns + ` FROM organizers WHERE merchant_id = $1`
	return r.scanOrganizer(r.pool.QueryRow(ctx, query, merchantID))
}

// GetByTrackingID fetches an organizer by their onboarding referral tracking id.
func (r *OrganizerRepo) GetByTrackingID(ctx context.Context, trackingID string) (*domain.Organizer, error) {
	query := `SELECT ` + organizerColumns + ` FROM organizers WHERE tracking_id = $1`
	return r.scanOrganizer(r.pool.QueryRow(ctx, query, trackingID))
}

// SetOnboarding stores the referral tracking id and onboarding timestamp.
func (r *OrganizerRepo) SetOnboarding(ctx context.Context, id uuid.UUID, trackingID string) error {
	query := `UPDATE organizers SET tracking_id = $1, onboarded_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, trackingID, id)
	if err != nil {
		return fmt.Errorf("set onboarding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("organizer not found: %s", id)
	}
	return nil
}

// SaveMerchantID persists the external merchant id.
func (r *OrganizerRepo) SaveMerchantID(ctx context.Context, id uuid.UUID, merchantID string) error {
	query := `UPDATE organizers SET merchant_id = $1 WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, merchantID, id)
	if err != nil {
		return fmt.Errorf("save merchant id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("organizer not found: %s", id)
	}
	return nil
}

// UpdateAccountStatus performs a compare-and-set on the account status. The
// WHERE clause pins the previously observed status, so a concurrent writer
// that advanced the status first turns this write into a no-op.
func (r *OrganizerRepo) UpdateAccountStatus(ctx context.Context, id uuid.UUID, from, to domain.AccountStatus, declineReason *string) (bool, error) {
	query := `UPDATE organizers SET account_status = $1, decline_reason = $2
		WHERE id = $3 AND account_status = $4`

	tag, err := r.pool.Exec(ctx, query, to, declineReason, id, from)
	if err != nil {
		return false, fmt.Errorf("update account status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrganizerRepo) scanOrganizer(row pgx.Row) (*domain.Organizer, error) {
	o := &domain.Organizer{}
	err := row.Scan(
		&o.ID, &o.Email, &o.Name, &o.VerifiedOrganizer, &o.MerchantID, &o.TrackingID,
		&o.AccountStatus, &o.VerificationEmail, &o.DeclineReason, &o.PayoutEmail, &o.OnboardedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan organizer: %w", err)
	}
	return o, nil
}
