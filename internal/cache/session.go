package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"learnhub/internal/model"
)

// SessionStore keeps one user snapshot per authenticated user, keyed by the
// bare user id. The key's TTL bounds how long a refresh can succeed.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Put(ctx context.Context, user model.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, user.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, userID string) (model.User, error) {
	payload, err := s.client.Get(ctx, userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.User{}, ErrMiss
	}
	if err != nil {
		return model.User{}, fmt.Errorf("load session: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(payload, &user); err != nil {
		return model.User{}, fmt.Errorf("decode session: %w", err)
	}
	return user, nil
}

// Replace overwrites an existing snapshot and keeps its remaining TTL. It
// reports false without writing when no session exists.
func (s *SessionStore) Replace(ctx context.Context, user model.User) (bool, error) {
	payload, err := json.Marshal(user)
	if err != nil {
		return false, fmt.Errorf("encode session: %w", err)
	}

	err = s.client.SetArgs(ctx, user.ID, payload, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("replace session: %w", err)
	}
	return true, nil
}

// Extend re-arms the full TTL. It reports false when the session is gone.
func (s *SessionStore) Extend(ctx context.Context, userID string) (bool, error) {
	ok, err := s.client.Expire(ctx, userID, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("extend session: %w", err)
	}
	return ok, nil
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, userID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
