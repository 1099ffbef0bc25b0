package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// RedisStore keeps credentials in Redis so several BFF replicas share sign-ins.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisStore) Load(ctx context.Context, clientID string) (Credential, error) {
	token, err := r.client.Get(ctx, credentialKey(clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return Credential{}, ErrCredentialNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("redis get failed: %w", err)
	}

	email, err := r.client.Get(ctx, emailKey(clientID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Credential{}, fmt.Errorf("redis get failed: %w", err)
	}
	return Credential{Token: token, Email: email}, nil
}

func (r *RedisStore) Save(ctx context.Context, clientID string, cred Credential) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, credentialKey(clientID), cred.Token, r.ttl)
		if cred.Email != "" {
			pipe.Set(ctx, emailKey(clientID), cred.Email, r.ttl)
		} else {
			pipe.Del(ctx, emailKey(clientID))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, clientID string) error {
	if err := r.client.Del(ctx, credentialKey(clientID), emailKey(clientID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func credentialKey(clientID string) string {
	return fmt.Sprintf("storefront:credential:%s", clientID)
}

func emailKey(clientID string) string {
	return fmt.Sprintf("storefront:email:%s", clientID)
}
