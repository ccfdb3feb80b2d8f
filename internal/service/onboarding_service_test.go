package service

import (
	"context"
	"testing"

	"ticketpay/internal/core/domain"
	"ticketpay/internal/core/ports"
	"ticketpay/internal/core/ports/mocks"
	"ticketpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newOnboardingFixture(t *testing.T) (*OnboardingServiceImpl, *mocks.MockOrganizerRepository, *mocks.MockPayPalClient, *mocks.MockNotifier) {
	ctrl := gomock.NewController(t)
	organizerRepo := mocks.NewMockOrganizerRepository(ctrl)
	paypal := mocks.NewMockPayPalClient(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	svc := NewOnboardingService(organizerRepo, paypal, notifier, testLogger())
	return svc, organizerRepo, paypal, notifier
}

func organizerFixture(status domain.AccountStatus) *domain.Organizer {
	return &domain.Organizer{
		ID:                uuid.New(),
		Email:             "org@example.com",
		Name:              "Live Nation Jr",
		VerifiedOrganizer: true,
		AccountStatus:     status,
	}
}

func TestBeginOnboarding_Success(t *testing.T) {
	svc, organizerRepo, paypal, _ := newOnboardingFixture(t)
	ctx := context.Background()
	org := organizerFixture(domain.AccountStatusUnverified)

	organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil).Times(2)
	paypal.EXPECT().
		CreatePartnerReferral(ctx, gomock.Any(), org.Email).
		Return(&ports.PartnerReferral{ApprovalURL: "https://paypal.example/approve"}, nil)
	organizerRepo.EXPECT().SetOnboarding(ctx, org.ID, gomock.Any()).Return(nil)
	organizerRepo.EXPECT().
		UpdateAccountStatus(ctx, org.ID, domain.AccountStatusUnverified, domain.AccountStatusPending, nil).
		Return(true, nil)

	url, err := svc.BeginOnboarding(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://paypal.example/approve", url)
}

func TestBeginOnboarding_NotEligible(t *testing.T) {
	svc, organizerRepo, _, _ := newOnboardingFixture(t)
	ctx := context.Background()
	org := organizerFixture(domain.AccountStatusUnverified)
	org.VerifiedOrganizer = false

	organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil)

	_, err := svc.BeginOnboarding(ctx, org.ID)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_002", appErr.Code)
}

// A declined organizer can restart onboarding: the account resets to PENDING
// (clearing the decline reason) so the new review can reach VERIFIED.
func TestBeginOnboarding_RestartAfterDecline(t *testing.T) {
	svc, organizerRepo, paypal, _ := newOnboardingFixture(t)
	ctx := context.Background()
	reason := "documents rejected"
	org := organizerFixture(domain.AccountStatusDeclined)
	org.DeclineReason = &reason

	organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil)
	paypal.EXPECT().
		CreatePartnerReferral(ctx, gomock.Any(), org.Email).
		Return(&ports.PartnerReferral{ApprovalURL: "https://paypal.example/approve"}, nil)
	organizerRepo.EXPECT().SetOnboarding(ctx, org.ID, gomock.Any()).Return(nil)
	organizerRepo.EXPECT().
		UpdateAccountStatus(ctx, org.ID, domain.AccountStatusDeclined, domain.AccountStatusPending, nil).
		Return(true, nil)

	url, err := svc.BeginOnboarding(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://paypal.example/approve", url)
}

func TestBeginOnboarding_AlreadyVerified(t *testing.T) {
	svc, organizerRepo, _, _ := newOnboardingFixture(t)
	ctx := context.Background()
	org := organizerFixture(domain.AccountStatusVerified)

	organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil)

	_, err := svc.BeginOnboarding(ctx, org.ID)
	require.Error(t, err)
}

func TestApplyStatus_ForwardTransitionWrites(t *testing.T) {
	svc, organizerRepo, _, notifier := newOnboardingFixture(t)
	ctx := context.Background()
	org := organizerFixture(domain.AccountStatusPending)

	organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil)
	organizerRepo.EXPECT().
		UpdateAccountStatus(ctx, org.ID, domain.AccountStatusPending, domain.AccountStatusVerified, nil).
		Return(true, nil)
	notifier.EXPECT().OnboardingCompleted(ctx, gomock.Any()).Return(nil)

	applied, err := svc.ApplyStatus(ctx, org.ID, domain.AccountStatusVerified, nil)
	require.NoError(t, err)
	assert.True(t, applied)
}

// A late PENDING webhook after verification must not move the account back.
func TestApplyStatus_StaleTransitionIgnored(t *testing.T) {
	svc, organizerRepo, _, _ := newOnboardingFixture(t)
	ctx := context.Background()
	org := organizerFixture(domain.AccountStatusVerified)

	organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil)

	applied, err := svc.ApplyStatus(ctx, org.ID, domain.AccountStatusPending, nil)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestApplyStatus_DeclinedCannotOverwriteVerified(t *testing.T) {
	svc, organizerRepo, _, _ := newOnboardingFixture(t)
	ctx := context.Background()
	org := organizerFixture(domain.AccountStatusVerified)

	organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil)

	applied, err := svc.ApplyStatus(ctx, org.ID, domain.AccountStatusDeclined, nil)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestApplyStatus_RevokedOnlyFromVerified(t *testing.T) {
	svc, organizerRepo, _, _ := newOnboardingFixture(t)
	ctx := context.Background()

	pending := organizerFixture(domain.AccountStatusPending)
	organizerRepo.EXPECT().GetByID(ctx, pending.ID).Return(pending, nil)

	applied, err := svc.ApplyStatus(ctx, pending.ID, domain.AccountStatusRevoked, nil)
	require.NoError(t, err)
	assert.False(t, applied)

	verified := organizerFixture(domain.AccountStatusVerified)
	organizerRepo.EXPECT().GetByID(ctx, verified.ID).Return(verified, nil)
	organizerRepo.EXPECT().
		UpdateAccountStatus(ctx, verified.ID, domain.AccountStatusVerified, domain.AccountStatusRevoked, nil).
		Return(true, nil)

	applied, err = svc.ApplyStatus(ctx, verified.ID, domain.AccountStatusRevoked, nil)
	require.NoError(t, err)
	assert.True(t, applied)
}

// Losing the CAS race means another writer advanced us. Not an error.
func TestApplyStatus_LostRaceIsNoOp(t *testing.T) {
	svc, organizerRepo, _, _ := newOnboardingFixture(t)
	ctx := context.Background()
	org := organizerFixture(domain.AccountStatusPending)

	organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil)
	organizerRepo.EXPECT().
		UpdateAccountStatus(ctx, org.ID, domain.AccountStatusPending, domain.AccountStatusVerified, nil).
		Return(false, nil)

	applied, err := svc.ApplyStatus(ctx, org.ID, domain.AccountStatusVerified, nil)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestCheckStatus_MapsActiveToVerified(t *testing.T) {
	svc, organizerRepo, paypal, notifier := newOnboardingFixture(t)
	ctx := context.Background()

	merchantID := "MERCH123"
	org := organizerFixture(domain.AccountStatusPending)
	org.MerchantID = &merchantID

	verified := organizerFixture(domain.AccountStatusVerified)
	verified.ID = org.ID
	verified.MerchantID = &merchantID

	gomock.InOrder(
		organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil),
		organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil), // ApplyStatus re-read
		organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(verified, nil),
	)
	paypal.EXPECT().
		GetMerchantStatus(ctx, merchantID).
		Return(&ports.ProviderMerchantStatus{MerchantID: merchantID, Status: "ACTIVE"}, nil)
	organizerRepo.EXPECT().
		UpdateAccountStatus(ctx, org.ID, domain.AccountStatusPending, domain.AccountStatusVerified, nil).
		Return(true, nil)
	notifier.EXPECT().OnboardingCompleted(ctx, gomock.Any()).Return(nil)

	result, err := svc.CheckStatus(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusVerified, result.AccountStatus)
	assert.Equal(t, merchantID, result.MerchantID)
}

func TestCheckStatus_NotOnboarded(t *testing.T) {
	svc, organizerRepo, _, _ := newOnboardingFixture(t)
	ctx := context.Background()
	org := organizerFixture(domain.AccountStatusUnverified)

	organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil)

	_, err := svc.CheckStatus(ctx, org.ID)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ONB_002", appErr.Code)
}

func TestSaveMerchant_RejectsRepairing(t *testing.T) {
	svc, organizerRepo, _, _ := newOnboardingFixture(t)
	ctx := context.Background()

	existing := "MERCH_A"
	org := organizerFixture(domain.AccountStatusPending)
	org.MerchantID = &existing

	organizerRepo.EXPECT().GetByID(ctx, org.ID).Return(org, nil)

	err := svc.SaveMerchant(ctx, org.ID, "MERCH_B")
	require.Error(t, err)
}
