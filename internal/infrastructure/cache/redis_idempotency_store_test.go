package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Redis when RELAY_TEST_REDIS_ADDR is set.
func TestRedisIdempotencyStore_Integration(t *testing.T) {
	addr := os.Getenv("RELAY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RELAY_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewRedisIdempotencyStore(ctx, RedisOptions{Addr: addr})
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, "redis", store.Kind())

	eventID := "evt_" + uuid.NewString()

	isNew, err := store.MarkProcessed(ctx, eventID, time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, eventID, time.Minute)
	require.NoError(t, err)
	assert.False(t, isNew)

	processed, err := store.IsProcessed(ctx, eventID)
	require.NoError(t, err)
	assert.True(t, processed)
}
