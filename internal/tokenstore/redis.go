package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rezonia/efactura/internal/model"
)

const redisKeyPrefix = "efactura:token:"

// RedisStore persists tokens in Redis with a TTL equal to the token expiry.
// It is the durable backend for multi-instance hosts; any other database can
// stand in by implementing Store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store on top of an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SetToken installs or overwrites the token for a user.
func (s *RedisStore) SetToken(ctx context.Context, user string, token *model.Token) error {
	key, err := normalizeUser(user)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(token)
	if err != nil {
		return err
	}
	ttl := time.Until(token.ExpiresAt())
	if ttl <= 0 {
		// Already expired, make sure no stale entry survives.
		return s.client.Del(ctx, redisKeyPrefix+key).Err()
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// GetToken returns the stored token, deleting it when expired.
func (s *RedisStore) GetToken(ctx context.Context, user string) (*model.Token, error) {
	key, err := normalizeUser(user)
	if err != nil {
		return nil, err
	}
	payload, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get token: %w", err)
	}
	var token model.Token
	if err := json.Unmarshal(payload, &token); err != nil {
		// Unreadable entry, drop it.
		_ = s.client.Del(ctx, redisKeyPrefix+key).Err()
		return nil, nil
	}
	if token.IsExpired() {
		if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
			return nil, fmt.Errorf("redis delete expired token: %w", err)
		}
		return nil, nil
	}
	return &token, nil
}

// RemoveToken deletes the entry for a user.
func (s *RedisStore) RemoveToken(ctx context.Context, user string) error {
	key, err := normalizeUser(user)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis remove token: %w", err)
	}
	return nil
}

// HasValidToken reports whether a stored token is currently usable.
func (s *RedisStore) HasValidToken(ctx context.Context, user string) (bool, error) {
	token, err := s.GetToken(ctx, user)
	if err != nil {
		return false, err
	}
	return token != nil && token.IsValid(), nil
}
