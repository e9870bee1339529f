package service

import (
	"context"
	"errors"
	"fmt"

	"learnhub/internal/cache"
	"learnhub/internal/model"
)

type sessionCache interface {
	Put(ctx context.Context, user model.User) error
	Get(ctx context.Context, userID string) (model.User, error)
	Replace(ctx context.Context, user model.User) (bool, error)
	Extend(ctx context.Context, userID string) (bool, error)
	Delete(ctx context.Context, userID string) error
}

type sessionTokens interface {
	IssuePair(userID string) (model.TokenPair, error)
	VerifyAccess(tokenString string) (string, error)
	VerifyRefresh(tokenString string) (string, error)
}

// SessionService owns the cached-session lifecycle: a session exists from
// login until logout, account deletion or refresh TTL expiry.
type SessionService struct {
	tokens sessionTokens
	cache  sessionCache
}

func NewSessionService(tokens sessionTokens, cache sessionCache) *SessionService {
	return &SessionService{tokens: tokens, cache: cache}
}

// Establish issues a token pair and stores the user snapshot.
func (s *SessionService) Establish(ctx context.Context, user model.User) (model.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.cache.Put(ctx, user); err != nil {
		return model.TokenPair{}, err
	}

	return pair, nil
}

// Authenticate resolves an access token to the cached principal.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (model.User, error) {
	userID, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return model.User{}, err
	}

	return s.load(ctx, userID)
}

// Refresh issues a new pair for a live session and re-arms its TTL.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, model.User, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return model.TokenPair{}, model.User{}, err
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return model.TokenPair{}, model.User{}, err
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return model.TokenPair{}, model.User{}, err
	}

	alive, err := s.cache.Extend(ctx, user.ID)
	if err != nil {
		return model.TokenPair{}, model.User{}, err
	}
	if !alive {
		return model.TokenPair{}, model.User{}, model.ErrSessionExpired
	}

	return pair, user, nil
}

func (s *SessionService) End(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, userID)
}

// Sync overwrites the cached snapshot after a profile write. A user without
// a session stays logged out.
func (s *SessionService) Sync(ctx context.Context, user model.User) error {
	if _, err := s.cache.Replace(ctx, user); err != nil {
		return fmt.Errorf("sync session: %w", err)
	}
	return nil
}

// Cached returns the session snapshot when one exists.
func (s *SessionService) Cached(ctx context.Context, userID string) (model.User, bool, error) {
	user, err := s.cache.Get(ctx, userID)
	if errors.Is(err, cache.ErrMiss) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	return user, true, nil
}

func (s *SessionService) load(ctx context.Context, userID string) (model.User, error) {
	user, ok, err := s.Cached(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, model.ErrSessionExpired
	}
	return user, nil
}
