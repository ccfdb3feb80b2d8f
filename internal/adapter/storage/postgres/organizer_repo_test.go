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

func strPtr(s string) *string { return &s }

func newTestOrganizer() *domain.Organizer {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Organizer{
		ID:                uuid.New(),
		Email:             "org@example.com",
		Name:              "Test Organizer",
		VerifiedOrganizer: true,
		MerchantID:        strPtr("MERCH123"),
		TrackingID:        strPtr("track-1"),
		AccountStatus:     domain.AccountStatusPending,
		VerificationEmail: strPtr("org@example.com"),
		DeclineReason:     nil,
		PayoutEmail:       strPtr("payout@example.com"),
		OnboardedAt:       &now,
	}
}

func organizerTestColumns() []string {
	return []string{"id", "email", "name", "verified_organizer", "merchant_id", "tracking_id",
		"account_status", "verification_email", "decline_reason", "payout_email", "onboarded_at"}
}

func organizerRow(o *domain.Organizer) *pgxmock.Rows {
	return pgxmock.NewRows(organizerTestColumns()).AddRow(
		o.ID, o.Email, o.Name, o.VerifiedOrganizer, o.MerchantID, o.TrackingID,
		o.AccountStatus, o.VerificationEmail, o.DeclineReason, o.PayoutEmail, o.OnboardedAt,
	)
}

func TestOrganizerRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrganizerRepo(mock)
	o := newTestOrganizer()

	mock.ExpectQuery("SELECT .+ FROM organizers WHERE id").
		WithArgs(o.ID).
		WillReturnRows(organizerRow(o))

	result, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, o.ID, result.ID)
	assert.Equal(t, o.AccountStatus, result.AccountStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizerRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrganizerRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM organizers WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(organizerTestColumns()))

	result, err := repo.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizerRepo_GetByMerchantID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrganizerRepo(mock)
	o := newTestOrganizer()

	mock.ExpectQuery("SELECT .+ FROM organizers WHERE merchant_id").
		WithArgs(*o.MerchantID).
		WillReturnRows(organizerRow(o))

	result, err := repo.GetByMerchantID(context.Background(), *o.MerchantID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, o.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizerRepo_GetByTrackingID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrganizerRepo(mock)
	o := newTestOrganizer()

	mock.ExpectQuery("SELECT .+ FROM organizers WHERE tracking_id").
		WithArgs(*o.TrackingID).
		WillReturnRows(organizerRow(o))

	result, err := repo.GetByTrackingID(context.Background(), *o.TrackingID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, o.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizerRepo_SetOnboarding(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrganizerRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE organizers SET tracking_id").
		WithArgs("track-2", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.SetOnboarding(context.Background(), id, "track-2")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizerRepo_SaveMerchantID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrganizerRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE organizers SET merchant_id").
		WithArgs("MERCH999", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.SaveMerchantID(context.Background(), id, "MERCH999")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "organizer not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizerRepo_UpdateAccountStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrganizerRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE organizers SET account_status").
		WithArgs(domain.AccountStatusVerified, pgxmock.AnyArg(), id, domain.AccountStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.UpdateAccountStatus(context.Background(), id, domain.AccountStatusPending, domain.AccountStatusVerified, nil)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The CAS pins the observed status: a concurrent writer that moved the row
// first makes this update affect zero rows.
func TestOrganizerRepo_UpdateAccountStatus_LostRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrganizerRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE organizers SET account_status").
		WithArgs(domain.AccountStatusVerified, pgxmock.AnyArg(), id, domain.AccountStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.UpdateAccountStatus(context.Background(), id, domain.AccountStatusPending, domain.AccountStatusVerified, nil)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
