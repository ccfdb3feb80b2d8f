package domain

import "time"

// Provider webhook event types this service reconciles.
const (
	EventMerchantOnboardingCompleted = "MERCHANT.ONBOARDING.COMPLETED"
	EventMerchantOnboardingDeclined  = "MERCHANT.ONBOARDING.DECLINED"
	EventMerchantOnboardingPending   = "MERCHANT.ONBOARDING.PENDING"
	EventMerchantConsentRevoked      = "MERCHANT.PARTNER-CONSENT.REVOKED"
	EventCaptureCompleted            = "PAYMENT.CAPTURE.COMPLETED"
	EventCaptureRefunded             = "PAYMENT.CAPTURE.REFUNDED"
	EventPayoutBatchSuccess          = "PAYMENT.PAYOUTSBATCH.SUCCESS"
	EventPayoutBatchDenied           = "PAYMENT.PAYOUTSBATCH.DENIED"
	EventPayoutItemSucceeded         = "PAYMENT.PAYOUTS-ITEM.SUCCEEDED"
	EventPayoutItemFailed            = "PAYMENT.PAYOUTS-ITEM.FAILED"
)

// WebhookEvent is the processed-event log entry. The provider delivers
// at-least-once and out of order; the log (plus a Redis fast path) lets
// redeliveries short-circuit before touching any handler.
type WebhookEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	ResourceID  string    `json:"resource_id"`
	ProcessedAt time.Time `json:"processed_at"`
}
