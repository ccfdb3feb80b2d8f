package service

import (
	"context"
	"encoding/json"
	"time"

	"ticketpay/internal/core/domain"
	"ticketpay/internal/core/ports"
	"ticketpay/pkg/apperror"

	"github.com/rs/zerolog"
)

const dedupTTL = 24 * time.Hour

// WebhookServiceImpl ingests provider webhook deliveries. The signature gate
// runs before anything else touches the payload. Deliveries are at-least-once
// and unordered, so dedup is layered: the Redis cache short-circuits most
// redeliveries cheaply, and every handler is idempotent on the business key
// (status CAS or settle CAS), so a cache miss on a redelivery is still safe.
type WebhookServiceImpl struct {
	paypal        ports.PayPalClient
	organizerRepo ports.OrganizerRepository
	txRepo        ports.TransactionRepository
	webhookRepo   ports.WebhookEventRepository
	dedup         ports.ProcessedEventCache
	onboarding    ports.OnboardingService
	orders        ports.OrderService
	ledger        ports.LedgerService
	notifier      ports.Notifier
	log           zerolog.Logger
}

// NewWebhookService creates a new WebhookServiceImpl.
func NewWebhookService(
	paypalClient ports.PayPalClient,
	organizerRepo ports.OrganizerRepository,
	txRepo ports.TransactionRepository,
	webhookRepo ports.WebhookEventRepository,
	dedup ports.ProcessedEventCache,
	onboarding ports.OnboardingService,
	orders ports.OrderService,
	ledger ports.LedgerService,
	notifier ports.Notifier,
	log zerolog.Logger,
) *WebhookServiceImpl {
	return &WebhookServiceImpl{
		paypal:        paypalClient,
		organizerRepo: organizerRepo,
		txRepo:        txRepo,
		webhookRepo:   webhookRepo,
		dedup:         dedup,
		onboarding:    onboarding,
		orders:        orders,
		ledger:        ledger,
		notifier:      notifier,
		log:           log,
	}
}

// webhookEnvelope is the outer shape of a provider delivery.
type webhookEnvelope struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Resource  json.RawMessage `json:"resource"`
}

// Handle verifies the delivery signature, deduplicates, and dispatches the
// event to its idempotent handler. Unknown event types are acknowledged so
// the provider stops redelivering them.
func (s *WebhookServiceImpl) Handle(ctx context.Context, raw []byte, headers ports.WebhookHeaders) error {
	valid, err := s.paypal.VerifyWebhookSignature(ctx, headers, raw)
	if err != nil {
		// Verification unavailable is not "verified": reject and let the
		// provider redeliver.
		s.log.Error().Err(err).Msg("webhook signature verification errored")
		return apperror.ErrSignatureInvalid()
	}
	if !valid {
		s.log.Warn().Str("transmission_id", headers.TransmissionID).Msg("webhook signature rejected")
		return apperror.ErrSignatureInvalid()
	}

	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apperror.ErrMalformedEvent(err)
	}
	if env.ID == "" || env.EventType == "" {
		return apperror.ErrMalformedEvent(nil)
	}

	log := s.log.With().Str("event_id", env.ID).Str("event_type", env.EventType).Logger()

	seen, err := s.dedup.Seen(ctx, env.ID)
	if err != nil {
		// Cache down: fall through to the idempotent handlers.
		log.Warn().Err(err).Msg("webhook dedup cache unavailable")
	} else if seen {
		log.Debug().Msg("duplicate webhook delivery ignored")
		return nil
	}

	if err := s.dispatch(ctx, env, log); err != nil {
		return err
	}

	if _, err := s.webhookRepo.MarkProcessed(ctx, &domain.WebhookEvent{
		EventID:     env.ID,
		EventType:   env.EventType,
		ProcessedAt: time.Now().UTC(),
	}); err != nil {
		log.Error().Err(err).Msg("failed to record processed webhook event")
	}
	if err := s.dedup.Mark(ctx, env.ID, dedupTTL); err != nil {
		log.Warn().Err(err).Msg("failed to mark webhook event in dedup cache")
	}
	return nil
}

func (s *WebhookServiceImpl) dispatch(ctx context.Context, env webhookEnvelope, log zerolog.Logger) error {
	switch env.EventType {
	case domain.EventMerchantOnboardingCompleted:
		return s.handleOnboardingCompleted(ctx, env.Resource, log)
	case domain.EventMerchantOnboardingDeclined:
		return s.handleOnboardingStatus(ctx, env.Resource, domain.AccountStatusDeclined, log)
	case domain.EventMerchantOnboardingPending:
		return s.handleOnboardingStatus(ctx, env.Resource, domain.AccountStatusPending, log)
	case domain.EventMerchantConsentRevoked:
		return s.handleConsentRevoked(ctx, env.Resource, log)
	case domain.EventCaptureCompleted:
		return s.handleCaptureCompleted(ctx, env.Resource, log)
	case domain.EventCaptureRefunded:
		return s.handleCaptureRefunded(ctx, env.Resource, log)
	case domain.EventPayoutBatchSuccess, domain.EventPayoutItemSucceeded:
		return s.handlePayoutSettled(ctx, env.Resource, true, log)
	case domain.EventPayoutBatchDenied, domain.EventPayoutItemFailed:
		return s.handlePayoutSettled(ctx, env.Resource, false, log)
	default:
		log.Info().Msg("unhandled webhook event type acknowledged")
		return nil
	}
}

func (s *WebhookServiceImpl) handleOnboardingCompleted(ctx context.Context, resource json.RawMessage, log zerolog.Logger) error {
	var res struct {
		MerchantID string `json:"merchant_id"`
		TrackingID string `json:"tracking_id"`
	}
	if err := json.Unmarshal(resource, &res); err != nil {
		return apperror.ErrMalformedEvent(err)
	}
	if res.MerchantID == "" {
		return apperror.ErrMalformedEvent(nil)
	}

	org, err := s.resolveOrganizer(ctx, res.MerchantID, res.TrackingID)
	if err != nil {
		return err
	}
	if org == nil {
		// Onboarding for somebody we never referred. Ack and move on.
		log.Warn().Str("merchant_id", res.MerchantID).Msg("onboarding event for unknown organizer")
		return nil
	}

	if org.MerchantID == nil || *org.MerchantID == "" {
		if err := s.organizerRepo.SaveMerchantID(ctx, org.ID, res.MerchantID); err != nil {
			return apperror.InternalError(err)
		}
	}
	if _, err := s.onboarding.ApplyStatus(ctx, org.ID, domain.AccountStatusVerified, nil); err != nil {
		return err
	}
	return nil
}

// handleOnboardingStatus folds a declined or pending onboarding review result
// into the account state machine. A declined event carries the provider's
// reason, which is stored alongside the status for the organizer to act on.
func (s *WebhookServiceImpl) handleOnboardingStatus(ctx context.Context, resource json.RawMessage, status domain.AccountStatus, log zerolog.Logger) error {
	var res struct {
		MerchantID string `json:"merchant_id"`
		TrackingID string `json:"tracking_id"`
		Reason     string `json:"reason"`
	}
	if err := json.Unmarshal(resource, &res); err != nil {
		return apperror.ErrMalformedEvent(err)
	}
	if res.MerchantID == "" && res.TrackingID == "" {
		return apperror.ErrMalformedEvent(nil)
	}

	org, err := s.resolveOrganizer(ctx, res.MerchantID, res.TrackingID)
	if err != nil {
		return err
	}
	if org == nil {
		log.Warn().Str("merchant_id", res.MerchantID).Msg("onboarding event for unknown organizer")
		return nil
	}

	var declineReason *string
	if status == domain.AccountStatusDeclined && res.Reason != "" {
		declineReason = &res.Reason
	}
	if _, err := s.onboarding.ApplyStatus(ctx, org.ID, status, declineReason); err != nil {
		return err
	}
	return nil
}

func (s *WebhookServiceImpl) handleConsentRevoked(ctx context.Context, resource json.RawMessage, log zerolog.Logger) error {
	var res struct {
		MerchantID string `json:"merchant_id"`
	}
	if err := json.Unmarshal(resource, &res); err != nil {
		return apperror.ErrMalformedEvent(err)
	}
	if res.MerchantID == "" {
		return apperror.ErrMalformedEvent(nil)
	}

	org, err := s.resolveOrganizer(ctx, res.MerchantID, "")
	if err != nil {
		return err
	}
	if org == nil {
		log.Warn().Str("merchant_id", res.MerchantID).Msg("consent revocation for unknown organizer")
		return nil
	}
	if _, err := s.onboarding.ApplyStatus(ctx, org.ID, domain.AccountStatusRevoked, nil); err != nil {
		return err
	}
	return nil
}

func (s *WebhookServiceImpl) handleCaptureCompleted(ctx context.Context, resource json.RawMessage, log zerolog.Logger) error {
	var res struct {
		ID                string `json:"id"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	}
	if err := json.Unmarshal(resource, &res); err != nil {
		return apperror.ErrMalformedEvent(err)
	}
	orderID := res.SupplementaryData.RelatedIDs.OrderID
	if orderID == "" {
		log.Warn().Str("capture_id", res.ID).Msg("capture event without order id")
		return nil
	}

	applied, err := s.orders.ReconcileCapture(ctx, orderID, res.ID)
	if err != nil {
		return err
	}
	if applied {
		log.Info().Str("order_id", orderID).Msg("capture settled from webhook")
	}
	return nil
}

func (s *WebhookServiceImpl) handleCaptureRefunded(ctx context.Context, resource json.RawMessage, log zerolog.Logger) error {
	var res struct {
		ID                string `json:"id"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	}
	if err := json.Unmarshal(resource, &res); err != nil {
		return apperror.ErrMalformedEvent(err)
	}
	orderID := res.SupplementaryData.RelatedIDs.OrderID
	if orderID == "" {
		log.Warn().Str("refund_id", res.ID).Msg("refund event without order id")
		return nil
	}

	applied, err := s.orders.ReconcileRefund(ctx, orderID)
	if err != nil {
		return err
	}
	if applied {
		log.Info().Str("order_id", orderID).Msg("refund applied from webhook")
	}
	return nil
}

// handlePayoutSettled covers both the batch-level and the item-level payout
// events. Every payout batch here carries exactly one item, and both shapes
// carry our sender batch id, which is the payout ref.
func (s *WebhookServiceImpl) handlePayoutSettled(ctx context.Context, resource json.RawMessage, succeeded bool, log zerolog.Logger) error {
	var res struct {
		BatchHeader struct {
			SenderBatchHeader struct {
				SenderBatchID string `json:"sender_batch_id"`
			} `json:"sender_batch_header"`
		} `json:"batch_header"`
		PayoutItem struct {
			SenderItemID string `json:"sender_item_id"`
		} `json:"payout_item"`
	}
	if err := json.Unmarshal(resource, &res); err != nil {
		return apperror.ErrMalformedEvent(err)
	}
	payoutRef := res.BatchHeader.SenderBatchHeader.SenderBatchID
	if payoutRef == "" {
		payoutRef = res.PayoutItem.SenderItemID
	}
	if payoutRef == "" {
		log.Warn().Msg("payout event without sender batch id")
		return nil
	}

	var applied bool
	var err error
	if succeeded {
		applied, err = s.ledger.ConfirmPayout(ctx, payoutRef)
	} else {
		applied, err = s.ledger.ReleasePayout(ctx, payoutRef)
	}
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	log.Info().Str("payout_ref", payoutRef).Bool("succeeded", succeeded).Msg("payout settled from webhook")

	tx, err := s.txRepo.GetByPayoutRef(ctx, payoutRef)
	if err != nil || tx == nil {
		return nil
	}
	org, err := s.organizerRepo.GetByID(ctx, tx.OrganizerID)
	if err != nil || org == nil {
		return nil
	}
	if err := s.notifier.PayoutSettled(ctx, org, tx.Amount, succeeded); err != nil {
		log.Warn().Err(err).Msg("payout notification failed")
	}
	return nil
}

func (s *WebhookServiceImpl) resolveOrganizer(ctx context.Context, merchantID, trackingID string) (*domain.Organizer, error) {
	org, err := s.organizerRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if org != nil {
		return org, nil
	}
	if trackingID == "" {
		return nil, nil
	}
	org, err = s.organizerRepo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return org, nil
}
