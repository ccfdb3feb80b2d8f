package postgres

import (
	"context"
	"fmt"

	"ticketpay/internal/core/domain"
)

// WebhookEventRepo implements ports.WebhookEventRepository: the durable
// processed-event log behind the Redis fast path.
type WebhookEventRepo struct {
	pool Pool
}

// NewWebhookEventRepo creates a new WebhookEventRepo.
func NewWebhookEventRepo(pool Pool) *WebhookEventRepo {
	return &WebhookEventRepo{pool: pool}
}

// MarkProcessed records a provider event id. ON CONFLICT DO NOTHING makes the
// insert itself the dedup check: zero rows affected means this delivery is a
// repeat.
func (r *WebhookEventRepo) MarkProcessed(ctx context.Context, ev *domain.WebhookEvent) (bool, error) {
	query := `INSERT INTO webhook_events (event_id, event_type, resource_id, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, ev.EventID, ev.EventType, ev.ResourceID, ev.ProcessedAt)
	if err != nil {
		return false, fmt.Errorf("insert webhook event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
