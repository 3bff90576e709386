package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Weilei424/leafwheels-sub000/pkg/redis"
	"github.com/google/uuid"
)

// Session pins a checkout to the cart contents observed when it began. The
// checksum is validated again at commit; any drift voids the session.
type Session struct {
	CartID   uuid.UUID `json:"cart_id"`
	Checksum string    `json:"checksum"`
}

// ErrNoSession reports that no checkout session exists for the user.
var ErrNoSession = errors.New("no active checkout session")

// SessionStore holds at most one checkout session per user. Consume removes
// the session as it reads it, so concurrent commits cannot both observe the
// same token.
type SessionStore interface {
	Put(ctx context.Context, userID uuid.UUID, session Session) error
	Consume(ctx context.Context, userID uuid.UUID) (*Session, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type sessionBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutSessionKey(userID string) string
}

type redisSessionStore struct {
	backend sessionBackend
	ttl     time.Duration
}

// NewSessionStore builds a Redis-backed session store. Sessions expire on
// their own after ttl; a fresh begin overwrites any prior session.
func NewSessionStore(backend *redis.Client, ttl time.Duration) (SessionStore, error) {
	if backend == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &redisSessionStore{backend: backend, ttl: ttl}, nil
}

func (s *redisSessionStore) Put(ctx context.Context, userID uuid.UUID, session Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode checkout session: %w", err)
	}
	return s.backend.Set(ctx, s.backend.CheckoutSessionKey(userID.String()), payload, s.ttl)
}

// Consume pops the user's session in a single GETDEL, so a double-submit
// races for one token and exactly one commit proceeds.
func (s *redisSessionStore) Consume(ctx context.Context, userID uuid.UUID) (*Session, error) {
	raw, err := s.backend.GetDel(ctx, s.backend.CheckoutSessionKey(userID.String()))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &session, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.backend.Del(ctx, s.backend.CheckoutSessionKey(userID.String()))
}
