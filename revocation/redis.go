package revocation

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV implements [KeyValueStore] over a go-redis client. It is a thin
// transport binding; error wrapping happens in [Store].
type RedisKV struct {
	client redis.UniversalClient
}

// NewRedisKV wraps client as a blacklist backing store.
func NewRedisKV(client redis.UniversalClient) *RedisKV {
	return &RedisKV{client: client}
}

// Set writes value under key with the given TTL.
func (r *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Exists reports whether key is present.
func (r *RedisKV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
