package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openrba/stepgate/core"
	"github.com/openrba/stepgate/ports"
)

// RedisStore is a Redis implementation of the SessionStore interface.
// Each session is one hash keyed by the session key.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a new Redis session store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "stepgate:session:",
		ttl:    ttl,
	}
}

// Get retrieves a session attribute
func (s *RedisStore) Get(ctx context.Context, sessionKey, attr string) (string, error) {
	value, err := s.client.HGet(ctx, s.prefix+sessionKey, attr).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrAttributeNotFound
		}
		return "", fmt.Errorf("failed to read session attribute: %w", err)
	}

	return value, nil
}

// Set writes a session attribute and bounds the session lifetime
func (s *RedisStore) Set(ctx context.Context, sessionKey, attr, value string) error {
	key := s.prefix + sessionKey

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, attr, value)
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session attribute: %w", err)
	}

	return nil
}

// Delete removes a session attribute
func (s *RedisStore) Delete(ctx context.Context, sessionKey, attr string) error {
	if err := s.client.HDel(ctx, s.prefix+sessionKey, attr).Err(); err != nil {
		return fmt.Errorf("failed to delete session attribute: %w", err)
	}

	return nil
}

// Save refreshes the session TTL, persisting it for another lifetime window
func (s *RedisStore) Save(ctx context.Context, sessionKey string) error {
	if err := s.client.Expire(ctx, s.prefix+sessionKey, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	return nil
}

var _ ports.SessionStore = (*RedisStore)(nil)
