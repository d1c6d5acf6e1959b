package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "idemp:"

// RedisIdempotencyStore guards checkout against replayed requests. A lock key
// marks a request in flight and a map key remembers the order it produced.
type RedisIdempotencyStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisIdempotencyStore creates a store whose keys expire after ttl.
func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With().Str("component", "idempotency-store").Logger(),
	}
}

// TryLock claims scope/key. It reports false when another request holds it.
func (s *RedisIdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, lockKey(scope, key), "1", s.ttl).Result()
	if err != nil {
		s.logger.Error().Err(err).Str("scope", scope).Msg("failed to acquire idempotency lock")
		return false, fmt.Errorf("failed to acquire idempotency lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock so a failed request can be retried with the same key.
func (s *RedisIdempotencyStore) Release(ctx context.Context, scope, key string) error {
	if err := s.rdb.Del(ctx, lockKey(scope, key)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("scope", scope).Msg("failed to release idempotency lock")
		return fmt.Errorf("failed to release idempotency lock: %w", err)
	}
	return nil
}

// Remember records the order produced for scope/key.
func (s *RedisIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	if err := s.rdb.Set(ctx, mapKey(scope, key), value, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("scope", scope).Msg("failed to remember idempotency result")
		return fmt.Errorf("failed to remember idempotency result: %w", err)
	}
	return nil
}

// Recall returns the order recorded for scope/key, if any.
func (s *RedisIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, mapKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to recall idempotency result: %w", err)
	}
	return val, true, nil
}

func lockKey(scope, key string) string {
	return keyPrefix + scope + ":" + key
}

func mapKey(scope, key string) string {
	return keyPrefix + "map:" + scope + ":" + key
}
