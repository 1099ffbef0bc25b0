package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "sandbox:otp:"
	missKeyPrefix = "sandbox:otp-misses:"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, userID, hash string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyPrefix+userID, hash, s.ttl)
		pipe.Del(ctx, missKeyPrefix+userID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (string, error) {
	hash, err := s.client.Get(ctx, keyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return hash, nil
}

// Fail counts misses under their own key, which expires with the code.
func (s *RedisStore) Fail(ctx context.Context, userID string) (int, error) {
	ttl, err := s.client.PTTL(ctx, keyPrefix+userID).Result()
	if err != nil {
		return 0, fmt.Errorf("redis pttl: %w", err)
	}
	if ttl <= 0 {
		return 0, ErrCodeNotFound
	}

	var incr *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, missKeyPrefix+userID)
		pipe.PExpire(ctx, missKeyPrefix+userID, ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, keyPrefix+userID, missKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
