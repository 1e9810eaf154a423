package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix    = "session:"
	oauthStateKeyPrefix = "oauth_state:"
)

// SessionStore tracks active sign-in sessions. A session is active while its
// key exists; revoking deletes it.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func SessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func OAuthStateKey(state string) string {
	return oauthStateKeyPrefix + state
}

func (s *SessionStore) Create(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.client.Set(ctx, SessionKey(sessionID), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis.SessionStore.Create: %w", err)
	}
	return nil
}

// Active returns the owner of the session, or ok=false when it expired or
// was revoked.
func (s *SessionStore) Active(ctx context.Context, sessionID string) (uuid.UUID, bool, error) {
	v, err := s.client.Get(ctx, SessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("redis.SessionStore.Active: %w", err)
	}
	userID, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("redis.SessionStore.Active: parse user id: %w", err)
	}
	return userID, true, nil
}

// Extend resets the session's time to live. It reports false when the
// session is no longer active.
func (s *SessionStore) Extend(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.Expire(ctx, SessionKey(sessionID), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis.SessionStore.Extend: %w", err)
	}
	return ok, nil
}

func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, SessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis.SessionStore.Revoke: %w", err)
	}
	return nil
}

// SaveState records a single-use OAuth state value for provider.
func (s *SessionStore) SaveState(ctx context.Context, state, provider string, ttl time.Duration) error {
	if err := s.client.Set(ctx, OAuthStateKey(state), provider, ttl).Err(); err != nil {
		return fmt.Errorf("redis.SessionStore.SaveState: %w", err)
	}
	return nil
}

// ConsumeState deletes the state and returns the provider it was issued
// for. ok is false for unknown, expired or already used states.
func (s *SessionStore) ConsumeState(ctx context.Context, state string) (string, bool, error) {
	provider, err := s.client.GetDel(ctx, OAuthStateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis.SessionStore.ConsumeState: %w", err)
	}
	return provider, true, nil
}
