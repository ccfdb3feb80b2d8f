package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventDedupStore implements ports.ProcessedEventCache. It is the fast path
// in front of the durable webhook_events log: a hit short-circuits a
// redelivered event before any handler runs; a miss (or a Redis outage) falls
// through to the idempotent handlers, so correctness never depends on it.
type EventDedupStore struct {
	client *goredis.Client
	prefix string
}

// NewEventDedupStore creates a new Redis-backed processed-event cache.
func NewEventDedupStore(client *goredis.Client) *EventDedupStore {
	return &EventDedupStore{
		client: client,
		prefix: "webhook:event:",
	}
}

// Seen reports whether the event id was already processed.
func (s *EventDedupStore) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis event dedup exists: %w", err)
	}
	return n > 0, nil
}

// Mark records the event id with a TTL.
func (s *EventDedupStore) Mark(ctx context.Context, eventID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+eventID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis event dedup set: %w", err)
	}
	return nil
}
