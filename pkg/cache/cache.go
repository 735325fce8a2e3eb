package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin JSON cache over Redis. Read paths tolerate staleness;
// callers on the write path must invalidate after every inventory mutation.
type Cache struct {
	c   *redis.Client
	ttl time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{c: client, ttl: ttl}
}

// Get unmarshals the cached value into dst. Returns false on a miss;
// errors other than a miss propagate so callers can decide to fall through.
func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(v, dst)
}

func (r *Cache) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.c.Set(ctx, key, b, r.ttl).Err()
}

func (r *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.c.Del(ctx, keys...).Err()
}
