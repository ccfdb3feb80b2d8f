package notify

import (
	"context"

	"ticketpay/internal/core/domain"

	"github.com/rs/zerolog"
)

// LogNotifier is the default ports.Notifier. The transactional email
// collaborator is owned by another service; until its queue is wired in,
// notifications land in the structured log where they can be tailed and
// alerted on.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) OnboardingCompleted(ctx context.Context, organizer *domain.Organizer) error {
	n.log.Info().
		Str("notification", "onboarding_completed").
		Str("organizer_id", organizer.ID.String()).
		Str("email", organizer.Email).
		Msg("organizer onboarding completed")
	return nil
}

func (n *LogNotifier) PayoutSettled(ctx context.Context, organizer *domain.Organizer, amount int64, succeeded bool) error {
	n.log.Info().
		Str("notification", "payout_settled").
		Str("organizer_id", organizer.ID.String()).
		Str("email", organizer.Email).
		Int64("amount", amount).
		Bool("succeeded", succeeded).
		Msg("organizer payout settled")
	return nil
}
