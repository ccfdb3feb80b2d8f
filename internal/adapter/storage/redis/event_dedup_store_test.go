package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDedupStore_MarkAndSeen(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewEventDedupStore(client)
	ctx := context.Background()

	// Unknown event id is a miss
	seen, err := store.Seen(ctx, "WH-1")
	assert.NoError(t, err)
	assert.False(t, seen)

	err = store.Mark(ctx, "WH-1", 24*time.Hour)
	require.NoError(t, err)

	seen, err = store.Seen(ctx, "WH-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestEventDedupStore_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewEventDedupStore(client)
	ctx := context.Background()

	err := store.Mark(ctx, "WH-2", 1*time.Second)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	seen, err := store.Seen(ctx, "WH-2")
	assert.NoError(t, err)
	assert.False(t, seen, "expired event id should fall through to the durable log")
}

func TestEventDedupStore_IDsAreIndependent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewEventDedupStore(client)
	ctx := context.Background()

	err := store.Mark(ctx, "WH-3", time.Hour)
	require.NoError(t, err)

	seen, err := store.Seen(ctx, "WH-4")
	require.NoError(t, err)
	assert.False(t, seen)
}
