package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gallerium/sessionguard"
)

// RedisStore keeps credential records in Redis, one key per principal.
// PutUser maps to SETNX so insert-if-absent is atomic server-side; that is
// what makes concurrent bootstrap runs safe.
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

func (s *RedisStore) key(username string) string {
	return s.prefix + ":user:" + username
}

func (s *RedisStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *RedisStore) GetUser(ctx context.Context, username string) (sessionguard.CredentialRecord, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	data, err := s.redis.Get(ctx, s.key(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sessionguard.CredentialRecord{}, sessionguard.ErrUserNotFound
		}
		return sessionguard.CredentialRecord{}, fmt.Errorf("%w: %v", sessionguard.ErrCredentialBackend, err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		return sessionguard.CredentialRecord{}, fmt.Errorf("%w: %v", sessionguard.ErrCredentialBackend, err)
	}
	return *record, nil
}

func (s *RedisStore) PutUser(ctx context.Context, record sessionguard.CredentialRecord) error {
	data, err := encodeRecord(&record)
	if err != nil {
		return err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	created, err := s.redis.SetNX(ctx, s.key(record.Username), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", sessionguard.ErrCredentialBackend, err)
	}
	if !created {
		return sessionguard.ErrUserExists
	}
	return nil
}

func (s *RedisStore) UpdateUser(ctx context.Context, record sessionguard.CredentialRecord) error {
	data, err := encodeRecord(&record)
	if err != nil {
		return err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	// XX: only overwrite an existing record
	set, err := s.redis.SetXX(ctx, s.key(record.Username), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", sessionguard.ErrCredentialBackend, err)
	}
	if !set {
		return sessionguard.ErrUserNotFound
	}
	return nil
}

func (s *RedisStore) DeleteUser(ctx context.Context, username string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	removed, err := s.redis.Del(ctx, s.key(username)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", sessionguard.ErrCredentialBackend, err)
	}
	if removed == 0 {
		return sessionguard.ErrUserNotFound
	}
	return nil
}
