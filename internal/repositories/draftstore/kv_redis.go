package draftstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/stagecraft/draftpipe/internal/errors"
)

// RedisKV implements KV on a Redis client. Draft snapshots carry a TTL so
// abandoned drafts eventually expire.
type RedisKV struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// RedisKVConfig holds configuration for the Redis KV
type RedisKVConfig struct {
	Client redis.UniversalClient // Required
	TTL    time.Duration         // Optional, defaults to 30 days; 0 < keeps forever is not supported
}

// DefaultDraftTTL is how long an untouched draft snapshot survives.
const DefaultDraftTTL = 30 * 24 * time.Hour

// NewRedisKV creates a Redis-backed KV
func NewRedisKV(cfg *RedisKVConfig) *RedisKV {
	if cfg == nil || cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}

	return &RedisKV{
		client: cfg.Client,
		ttl:    ttl,
	}
}

// Get returns the stored value for key
func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.NotFoundf("no value for key %q", key)
		}
		return "", apperrors.WrapWithCode(err, apperrors.CodePersistence, "redis get failed").
			WithMeta("key", key)
	}
	return value, nil
}

// Set stores the value under key with the configured TTL
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodePersistence, "redis set failed").
			WithMeta("key", key)
	}
	return nil
}

// Del removes the key; absent keys are fine
func (r *RedisKV) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodePersistence, "redis del failed").
			WithMeta("key", key)
	}
	return nil
}
