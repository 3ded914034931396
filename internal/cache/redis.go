package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "dash:"

// Compile-time check to ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

// RedisStore shares cache entries between processes. Keys expire in Redis one
// TTL after being written; freshness is still decided by the Cache clock.
type RedisStore struct {
	client *redis.Client
}

type redisEntry struct {
	Value     json.RawMessage `json:"v"`
	FetchedAt time.Time       `json:"t"`
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	payload, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, err
	}

	var e redisEntry
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decode entry %s: %w", key, err)
	}
	return e.Value, e.FetchedAt, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, fetchedAt time.Time, ttl time.Duration) error {
	payload, err := json.Marshal(redisEntry{Value: value, FetchedAt: fetchedAt})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKeyPrefix+key, payload, ttl).Err()
}

// DeletePrefix scans for matching keys and deletes them in batches.
func (r *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (r *RedisStore) Name() string { return "redis" }

// Ping checks that the server is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
