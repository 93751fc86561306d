package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is the TTL key/value store with unordered string sets that records and
// the fuzzy index live in. Implementations own their transport timeouts.
type KV interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get reports false without an error when key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetAdd(ctx context.Context, setKey, member string) error
	SetMembers(ctx context.Context, setKey string) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

type RedisKV struct {
	rdb redis.UniversalClient
}

func NewRedisKV(rdb *redis.Client) KV {
	return &RedisKV{rdb: rdb}
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisKV) SetAdd(ctx context.Context, setKey, member string) error {
	return r.rdb.SAdd(ctx, setKey, member).Err()
}

func (r *RedisKV) SetMembers(ctx context.Context, setKey string) ([]string, error) {
	return r.rdb.SMembers(ctx, setKey).Result()
}

func (r *RedisKV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.rdb.Expire(ctx, key, ttl).Err()
}
