package data

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopscout/shopscout-backend/internal/feedback/types"
)

const (
	eventsKey     = "feedback:events"
	itemIndexKey  = "feedback:item:%s"
	queryIndexKey = "feedback:query:%s"
)

// RedisStore keeps the append-only event log in redis lists, so the
// log survives a restart and several instances can share it. The main
// log lives under one list; per-item and per-query indexes duplicate
// the payload for cheap history reads.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a redis-backed event store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Append stores one accepted event
func (s *RedisStore) Append(ctx context.Context, event *types.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, eventsKey, payload)
	pipe.RPush(ctx, fmt.Sprintf(itemIndexKey, event.ItemID), payload)
	pipe.RPush(ctx, fmt.Sprintf(queryIndexKey, event.QueryID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// All returns every stored event in append order
func (s *RedisStore) All(ctx context.Context) ([]*types.Event, error) {
	return s.readList(ctx, eventsKey)
}

// ByItem returns the events recorded for one item
func (s *RedisStore) ByItem(ctx context.Context, itemID string) ([]*types.Event, error) {
	return s.readList(ctx, fmt.Sprintf(itemIndexKey, itemID))
}

// ByQuery returns the events recorded for one query
func (s *RedisStore) ByQuery(ctx context.Context, queryID string) ([]*types.Event, error) {
	return s.readList(ctx, fmt.Sprintf(queryIndexKey, queryID))
}

func (s *RedisStore) readList(ctx context.Context, key string) ([]*types.Event, error) {
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	events := make([]*types.Event, 0, len(raw))
	for _, payload := range raw {
		var event types.Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return nil, fmt.Errorf("corrupt event payload in %s: %w", key, err)
		}
		events = append(events, &event)
	}
	return events, nil
}
