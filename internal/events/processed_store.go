package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProcessedStore records event ids that were already emitted, so retried
// emits inside the TTL window are suppressed server-side. Client stores
// dedupe by id anyway; this just keeps redundant frames off the wire.
type ProcessedStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProcessedStore creates a store over the given Redis client.
func NewProcessedStore(rdb *redis.Client, ttl time.Duration) *ProcessedStore {
	if rdb == nil {
		panic("events: redis client required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ProcessedStore{rdb: rdb, ttl: ttl}
}

func processedKey(provider, eventID string) string {
	return fmt.Sprintf("notify:processed:%s:%s", provider, eventID)
}

// MarkProcessed records the event id, returning false if it was already
// present.
func (s *ProcessedStore) MarkProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, processedKey(provider, eventID), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("events: mark processed: %w", err)
	}
	return ok, nil
}

// AlreadyProcessed checks whether the event id has been recorded.
func (s *ProcessedStore) AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, processedKey(provider, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("events: check processed: %w", err)
	}
	return n > 0, nil
}
