package thumbcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "thumb:"

// RedisStore is the durable backend. Thumbnails are small JSON blobs keyed
// by product id and survive restarts as long as Redis persists.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, productID string) (Asset, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+productID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Asset{}, false, nil
	}
	if err != nil {
		return Asset{}, false, fmt.Errorf("thumbcache: redis get: %w", err)
	}
	var a Asset
	if err := json.Unmarshal(raw, &a); err != nil {
		return Asset{}, false, fmt.Errorf("thumbcache: decode cached asset: %w", err)
	}
	return a, true, nil
}

func (s *RedisStore) Set(ctx context.Context, productID string, asset Asset) error {
	raw, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("thumbcache: encode asset: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+productID, raw, 0).Err(); err != nil {
		return fmt.Errorf("thumbcache: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, productID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+productID).Err(); err != nil {
		return fmt.Errorf("thumbcache: redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) Durable() bool { return true }
