// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phamduylong/authgate/internal/platform/constants"
)

// ErrStateNotFound is returned when a state entry is missing, expired, or
// already consumed.
var ErrStateNotFound = errors.New("google: state not found")

// RedisStateStore implements [StateStore] on Redis with native TTL
// expiry. GETDEL makes consumption atomic, so a replayed callback with
// the same state value always fails.
type RedisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore creates a Redis-backed state store.
func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

// Set stores the nonce under the state key with the given TTL.
func (store *RedisStateStore) Set(ctx context.Context, state, nonce string, ttl time.Duration) error {
	key := constants.RedisPrefixOAuthState + state
	if err := store.client.Set(ctx, key, nonce, ttl).Err(); err != nil {
		return fmt.Errorf("google: redis set failed: %w", err)
	}
	return nil
}

// Take atomically fetches and deletes the nonce for a state.
func (store *RedisStateStore) Take(ctx context.Context, state string) (string, error) {
	key := constants.RedisPrefixOAuthState + state
	nonce, err := store.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrStateNotFound
		}
		return "", fmt.Errorf("google: redis getdel failed: %w", err)
	}
	return nonce, nil
}
