package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned when a session is absent, expired, or its
// stored record cannot be decoded. Callers cannot distinguish the three: an
// unreadable or expired record is indistinguishable from one that never
// existed.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired marks the expiry case specifically. It matches
// ErrSessionNotFound under errors.Is, so the external contract stays
// uniform; only instrumentation branches on it.
var ErrSessionExpired = fmt.Errorf("%w: expired", ErrSessionNotFound)

// ErrRedisUnavailable wraps transport failures of the primary backend.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store is the session persistence contract. Each operation is
// independently atomic from the caller's perspective; no transaction spans
// two of them.
type Store interface {
	Save(ctx context.Context, sess *Session, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
