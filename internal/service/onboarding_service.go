package service

import (
	"context"
	"strings"

	"ticketpay/internal/core/domain"
	"ticketpay/internal/core/ports"
	"ticketpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OnboardingServiceImpl drives an organizer's merchant account through the
// verification state machine. The provider reports account state through two
// channels (a polled status endpoint and webhooks) that race each other, so
// every write goes through ApplyStatus, which enforces the forward-only
// transition rules.
type OnboardingServiceImpl struct {
	organizerRepo ports.OrganizerRepository
	paypal        ports.PayPalClient
	notifier      ports.Notifier
	log           zerolog.Logger
}

// NewOnboardingService creates a new OnboardingServiceImpl.
func NewOnboardingService(
	organizerRepo ports.OrganizerRepository,
	paypal ports.PayPalClient,
	notifier ports.Notifier,
	log zerolog.Logger,
) *OnboardingServiceImpl {
	return &OnboardingServiceImpl{
		organizerRepo: organizerRepo,
		paypal:        paypal,
		notifier:      notifier,
		log:           log,
	}
}

// BeginOnboarding registers a partner referral for the organizer and returns
// the hosted approval URL. Restarting onboarding while already PENDING issues
// a fresh referral with a fresh tracking id; the old link simply goes stale.
// A DECLINED organizer may restart too: the account drops back to PENDING and
// the stored decline reason is cleared.
func (s *OnboardingServiceImpl) BeginOnboarding(ctx context.Context, organizerID uuid.UUID) (string, error) {
	org, err := s.organizerRepo.GetByID(ctx, organizerID)
	if err != nil {
		return "", apperror.InternalError(err)
	}
	if org == nil {
		return "", apperror.ErrNotFound("Organizer")
	}
	if !org.VerifiedOrganizer {
		return "", apperror.ErrNotEligible()
	}
	if org.AccountStatus == domain.AccountStatusVerified {
		return "", apperror.Validation("organizer is already verified")
	}

	trackingID := uuid.New().String()
	referral, err := s.paypal.CreatePartnerReferral(ctx, trackingID, org.Email)
	if err != nil {
		s.log.Error().Err(err).Str("organizer_id", organizerID.String()).Msg("partner referral creation failed")
		return "", apperror.ErrOnboardingDispatch(err)
	}

	if err := s.organizerRepo.SetOnboarding(ctx, organizerID, trackingID); err != nil {
		return "", apperror.InternalError(err)
	}
	if org.AccountStatus == domain.AccountStatusDeclined {
		// The general transition rules never move backwards, so the restart
		// resets DECLINED -> PENDING with an explicit compare-and-set. Stale
		// webhook or poll writes cannot take this path.
		if _, err := s.organizerRepo.UpdateAccountStatus(ctx, organizerID, domain.AccountStatusDeclined, domain.AccountStatusPending, nil); err != nil {
			return "", apperror.InternalError(err)
		}
	} else {
		// UNVERIFIED -> PENDING. Already-PENDING restarts no-op here.
		if _, err := s.ApplyStatus(ctx, organizerID, domain.AccountStatusPending, nil); err != nil {
			return "", err
		}
	}

	s.log.Info().
		Str("organizer_id", organizerID.String()).
		Str("tracking_id", trackingID).
		Msg("merchant onboarding started")
	return referral.ApprovalURL, nil
}

// SaveMerchant stores the merchant id handed back by the hosted flow's return
// redirect. The webhook carries the same pairing, so this is a fast path, not
// the source of truth.
func (s *OnboardingServiceImpl) SaveMerchant(ctx context.Context, organizerID uuid.UUID, merchantID string) error {
	merchantID = strings.TrimSpace(merchantID)
	if merchantID == "" {
		return apperror.Validation("merchant id is required")
	}
	org, err := s.organizerRepo.GetByID(ctx, organizerID)
	if err != nil {
		return apperror.InternalError(err)
	}
	if org == nil {
		return apperror.ErrNotFound("Organizer")
	}
	if org.MerchantID != nil && *org.MerchantID != "" && *org.MerchantID != merchantID {
		return apperror.Validation("organizer is already paired with a different merchant account")
	}
	if err := s.organizerRepo.SaveMerchantID(ctx, organizerID, merchantID); err != nil {
		return apperror.InternalError(err)
	}
	s.log.Info().
		Str("organizer_id", organizerID.String()).
		Str("merchant_id", merchantID).
		Msg("merchant id saved")
	return nil
}

// CheckStatus polls the provider for the organizer's merchant integration
// state and folds the result into the state machine. The response reflects
// the stored state after the fold, so a stale provider read can never show
// the caller a backwards status.
func (s *OnboardingServiceImpl) CheckStatus(ctx context.Context, organizerID uuid.UUID) (*ports.MerchantStatusResult, error) {
	org, err := s.organizerRepo.GetByID(ctx, organizerID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if org == nil {
		return nil, apperror.ErrNotFound("Organizer")
	}
	if org.MerchantID == nil || *org.MerchantID == "" {
		return nil, apperror.ErrNotOnboarded()
	}

	provider, err := s.paypal.GetMerchantStatus(ctx, *org.MerchantID)
	if err != nil {
		s.log.Error().Err(err).Str("merchant_id", *org.MerchantID).Msg("merchant status poll failed")
		return nil, apperror.ErrOnboardingDispatch(err)
	}

	polled := mapProviderStatus(provider.Status)
	if polled != org.AccountStatus {
		if _, err := s.ApplyStatus(ctx, organizerID, polled, nil); err != nil {
			return nil, err
		}
		// Re-read: ApplyStatus may have rejected a backward transition.
		org, err = s.organizerRepo.GetByID(ctx, organizerID)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
	}

	return &ports.MerchantStatusResult{
		MerchantID:    *org.MerchantID,
		AccountStatus: org.AccountStatus,
	}, nil
}

// ApplyStatus is the single transition function shared by the poll path and
// the webhook path. Backward or same-rank moves are rejected without error;
// the CAS in the repository catches the remaining write race, and a lost race
// is treated as "someone else already advanced us", also a no-op.
func (s *OnboardingServiceImpl) ApplyStatus(ctx context.Context, organizerID uuid.UUID, status domain.AccountStatus, declineReason *string) (bool, error) {
	org, err := s.organizerRepo.GetByID(ctx, organizerID)
	if err != nil {
		return false, apperror.InternalError(err)
	}
	if org == nil {
		return false, apperror.ErrNotFound("Organizer")
	}
	if !org.AccountStatus.CanTransitionTo(status) {
		s.log.Debug().
			Str("organizer_id", organizerID.String()).
			Str("from", string(org.AccountStatus)).
			Str("to", string(status)).
			Msg("ignoring stale account status transition")
		return false, nil
	}

	ok, err := s.organizerRepo.UpdateAccountStatus(ctx, organizerID, org.AccountStatus, status, declineReason)
	if err != nil {
		return false, apperror.InternalError(err)
	}
	if !ok {
		return false, nil
	}

	s.log.Info().
		Str("organizer_id", organizerID.String()).
		Str("from", string(org.AccountStatus)).
		Str("to", string(status)).
		Msg("account status advanced")

	if status == domain.AccountStatusVerified {
		org.AccountStatus = status
		if err := s.notifier.OnboardingCompleted(ctx, org); err != nil {
			// Notification failures never roll back a status change.
			s.log.Warn().Err(err).Str("organizer_id", organizerID.String()).Msg("onboarding notification failed")
		}
	}
	return true, nil
}

// mapProviderStatus folds the provider's merchant integration status into our
// account state machine.
func mapProviderStatus(providerStatus string) domain.AccountStatus {
	switch providerStatus {
	case "ACTIVE":
		return domain.AccountStatusVerified
	case "DENIED", "DEACTIVATED":
		return domain.AccountStatusDeclined
	default:
		return domain.AccountStatusPending
	}
}
