package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"khidmat-api/internal/domain"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound means the session id is not live in the store: it was
// revoked, expired past the idle window, or never existed.
var ErrSessionNotFound = errors.New("session not found")

// Record is the server-side session state held in Redis
type Record struct {
	SessionID   string
	Kind        domain.IdentityKind
	PrincipalID string
}

// Store keeps live sessions in Redis with a sliding idle expiry. A token
// is only honored while its session id is present here, which gives
// server-side revocation on logout.
type Store interface {
	Create(ctx context.Context, kind domain.IdentityKind, principalID string) (*Record, error)
	Get(ctx context.Context, sessionID string) (*Record, error)
	Touch(ctx context.Context, sessionID string) error
	Revoke(ctx context.Context, sessionID string) error
}

// RedisStore implements Store on go-redis
type RedisStore struct {
	client  *redis.Client
	idleTTL time.Duration
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(client *redis.Client, idleTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, idleTTL: idleTTL}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// newSessionID generates an opaque 128-bit session id
func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create registers a new session and starts its idle window
func (s *RedisStore) Create(ctx context.Context, kind domain.IdentityKind, principalID string) (*Record, error) {
	sessionID, err := newSessionID()
	if err != nil {
		return nil, err
	}

	value := string(kind) + ":" + principalID
	if err := s.client.Set(ctx, sessionKey(sessionID), value, s.idleTTL).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &Record{SessionID: sessionID, Kind: kind, PrincipalID: principalID}, nil
}

// Get returns the live session record, or ErrSessionNotFound. Read-only:
// it never slides the idle window.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	value, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	kind, principalID, ok := strings.Cut(value, ":")
	if !ok {
		// Corrupt entry; drop it rather than resolve a broken identity
		return nil, ErrSessionNotFound
	}

	return &Record{
		SessionID:   sessionID,
		Kind:        domain.IdentityKind(kind),
		PrincipalID: principalID,
	}, nil
}

// Touch slides the idle expiry window. Only the mutating resolver variant
// calls this.
func (s *RedisStore) Touch(ctx context.Context, sessionID string) error {
	ok, err := s.client.Expire(ctx, sessionKey(sessionID), s.idleTTL).Result()
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Revoke removes the session; subsequent resolutions see Unauthenticated
func (s *RedisStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
