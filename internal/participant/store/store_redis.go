package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"rollcall/internal/participant"
)

const defaultRedisKey = "rollcall:participants"

// RedisStore appends JSON-encoded records onto a Redis list. RPUSH preserves
// append order and LRANGE returns the whole collection, which maps directly
// onto the append-only contract.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: defaultRedisKey}
}

func (s *RedisStore) Append(ctx context.Context, rec participant.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal participant: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("rpush participant: %w", err)
	}
	return nil
}

func (s *RedisStore) ListAll(ctx context.Context) ([]participant.Record, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange participants: %w", err)
	}
	records := make([]participant.Record, 0, len(items))
	for _, item := range items {
		var rec participant.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal participant: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
