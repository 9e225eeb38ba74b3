package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the primary session backend: persistent, shared across
// process instances. Every call is bounded by the configured timeout so a
// wedged backend cannot stall a request past its budget.
type RedisStore struct {
	redis   redis.UniversalClient
	prefix  string
	timeout time.Duration
}

func NewRedisStore(client redis.UniversalClient, prefix string, timeout time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "sg"
	}
	return &RedisStore{
		redis:   client,
		prefix:  prefix,
		timeout: timeout,
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + ":sess:" + sessionID
}

func (s *RedisStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Save persists the session with a server-side TTL so Redis expires the row
// even if no reader ever observes it again.
func (s *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.redis.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get retrieves a session by ID, enforcing expiry at read time as well.
// The server-side TTL usually removes the row first, but a clock-skewed or
// restored replica may still hand back a stale record.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		// unreadable record fails closed
		return nil, ErrSessionNotFound
	}
	sess.ID = sessionID

	if sess.Expired(time.Now()) {
		_ = s.redis.Del(ctx, s.key(sessionID)).Err()
		return nil, ErrSessionExpired
	}

	return sess, nil
}

// Delete removes the session. Deleting an absent session is not an error.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
