package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/mx-space/folio/internal/models"
)

const redisEventsKey = "folio:analytics:events"

// EventStore keeps the most recent events, oldest first.
type EventStore interface {
	// Append records a batch atomically and trims to the retained window.
	Append(ctx context.Context, events []models.AnalyticsEvent) error
	List(ctx context.Context) ([]models.AnalyticsEvent, error)
}

// MemoryStore is a process-local EventStore.
type MemoryStore struct {
	mu     sync.RWMutex
	retain int
	events []models.AnalyticsEvent
}

func NewMemoryStore(retain int) *MemoryStore {
	return &MemoryStore{retain: retain}
}

func (s *MemoryStore) Append(_ context.Context, events []models.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	if over := len(s.events) - s.retain; over > 0 {
		trimmed := make([]models.AnalyticsEvent, s.retain)
		copy(trimmed, s.events[over:])
		s.events = trimmed
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.AnalyticsEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AnalyticsEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

// RedisStore keeps events as JSON entries of one Redis list.
type RedisStore struct {
	rdb    *redis.Client
	key    string
	retain int
}

func NewRedisStore(rdb *redis.Client, retain int) *RedisStore {
	return &RedisStore{rdb: rdb, key: redisEventsKey, retain: retain}
}

func (s *RedisStore) Append(ctx context.Context, events []models.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}
	values := make([]interface{}, len(events))
	for i, ev := range events {
		raw, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		values[i] = raw
	}

	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, s.key, values...)
	pipe.LTrim(ctx, s.key, int64(-s.retain), -1)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) List(ctx context.Context) ([]models.AnalyticsEvent, error) {
	raw, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.AnalyticsEvent, 0, len(raw))
	for _, item := range raw {
		var ev models.AnalyticsEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}
