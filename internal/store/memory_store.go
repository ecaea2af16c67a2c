package store

import (
	"context"
	"sync"

	"sigil/internal/domain"
)

// CredentialMemoryStore keeps credentials in process memory. Nothing survives
// a restart.
type CredentialMemoryStore struct {
	mu      sync.RWMutex
	gate    gate
	users   map[string]domain.Credential
	current *domain.Credential
}

// NewCredentialMemoryStore returns an empty CredentialMemoryStore.
func NewCredentialMemoryStore() *CredentialMemoryStore {
	return &CredentialMemoryStore{
		gate:  newGate(),
		users: make(map[string]domain.Credential),
	}
}

// Acquire serializes read-check-write sequences.
func (s *CredentialMemoryStore) Acquire(ctx context.Context) (func(), error) {
	if err := s.gate.enter(ctx); err != nil {
		return nil, err
	}
	return s.gate.leave, nil
}

// LoadAll returns a copy of the collection.
func (s *CredentialMemoryStore) LoadAll() (map[string]domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUsers(s.users), nil
}

// SaveAll replaces the collection with a copy of users.
func (s *CredentialMemoryStore) SaveAll(users map[string]domain.Credential) error {
	if _, err := encodeUsers(users); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = cloneUsers(users)
	return nil
}

// LoadCurrentSession returns the current-session record and whether one is set.
func (s *CredentialMemoryStore) LoadCurrentSession() (domain.Credential, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Credential{}, false, nil
	}
	return *s.current, true, nil
}

// SaveCurrentSession replaces the current-session record.
func (s *CredentialMemoryStore) SaveCurrentSession(cred domain.Credential) error {
	if _, err := encodeCredential(cred); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &cred
	return nil
}

// ClearCurrentSession removes the current-session record.
func (s *CredentialMemoryStore) ClearCurrentSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	return nil
}

// Compile-time assertions that CredentialMemoryStore implements the store contracts.
var (
	_ domain.CredentialStore = (*CredentialMemoryStore)(nil)
	_ domain.StoreLocker     = (*CredentialMemoryStore)(nil)
)
