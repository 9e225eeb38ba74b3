package credstore

import (
	"context"
	"sync"

	"github.com/gallerium/sessionguard"
)

// MemoryStore is an in-process credential store for tests and demos. It
// mirrors the Redis store's semantics exactly, including atomic
// insert-if-absent.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]sessionguard.CredentialRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]sessionguard.CredentialRecord),
	}
}

func (s *MemoryStore) GetUser(_ context.Context, username string) (sessionguard.CredentialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[username]
	if !ok {
		return sessionguard.CredentialRecord{}, sessionguard.ErrUserNotFound
	}
	return cloneRecord(record), nil
}

func (s *MemoryStore) PutUser(_ context.Context, record sessionguard.CredentialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[record.Username]; exists {
		return sessionguard.ErrUserExists
	}
	s.users[record.Username] = cloneRecord(record)
	return nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, record sessionguard.CredentialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[record.Username]; !exists {
		return sessionguard.ErrUserNotFound
	}
	s.users[record.Username] = cloneRecord(record)
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; !exists {
		return sessionguard.ErrUserNotFound
	}
	delete(s.users, username)
	return nil
}

func cloneRecord(record sessionguard.CredentialRecord) sessionguard.CredentialRecord {
	cp := record
	cp.Salt = append([]byte(nil), record.Salt...)
	cp.PasswordHash = append([]byte(nil), record.PasswordHash...)
	return cp
}
