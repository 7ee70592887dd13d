package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ProcessedStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewProcessedStore(rdb, time.Minute), mr
}

func TestProcessedStore_MarkAndCheck(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seen, err := store.AlreadyProcessed(ctx, "hub", "evt-1")
	require.NoError(t, err)
	assert.False(t, seen)

	first, err := store.MarkProcessed(ctx, "hub", "evt-1")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := store.MarkProcessed(ctx, "hub", "evt-1")
	require.NoError(t, err)
	assert.False(t, second, "retried emit must be suppressed")

	seen, err = store.AlreadyProcessed(ctx, "hub", "evt-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestProcessedStore_ProvidersAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "hub", "evt-1")
	require.NoError(t, err)

	ok, err := store.MarkProcessed(ctx, "billing", "evt-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProcessedStore_EntriesExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "hub", "evt-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	ok, err := store.MarkProcessed(ctx, "hub", "evt-1")
	require.NoError(t, err)
	assert.True(t, ok, "expired id behaves as unseen")
}
