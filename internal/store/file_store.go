package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"sigil/internal/domain"
)

const (
	usersFile       = "users.json"
	currentUserFile = "current_user.json"
	lockFile        = "sigil.lock"

	slotUsers       = "users"
	slotCurrentUser = "currentUser"

	lockRetryDelay = 50 * time.Millisecond
)

// CredentialFileStore stores the credential collection and the current
// session as JSON files in dir.
type CredentialFileStore struct {
	dir    string
	mu     sync.Mutex
	gate   gate
	flock  *flock.Flock
	sealer *sealer
}

// FileOption configures a CredentialFileStore.
type FileOption func(*CredentialFileStore)

// WithPassphrase seals both files with a key derived from passphrase.
func WithPassphrase(passphrase string) FileOption {
	return func(s *CredentialFileStore) { s.sealer = newSealer(passphrase) }
}

// NewCredentialFileStore returns a CredentialFileStore rooted at dir. The
// directory must exist.
func NewCredentialFileStore(dir string, opts ...FileOption) *CredentialFileStore {
	s := &CredentialFileStore{
		dir:   dir,
		gate:  newGate(),
		flock: flock.New(filepath.Join(dir, lockFile)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sealed reports whether files are encrypted at rest.
func (s *CredentialFileStore) Sealed() bool { return s.sealer != nil }

// Acquire takes the in-process lock, then an exclusive flock on the lock file
// so other processes sharing dir are serialized too.
func (s *CredentialFileStore) Acquire(ctx context.Context) (func(), error) {
	if err := s.gate.enter(ctx); err != nil {
		return nil, err
	}
	locked, err := s.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		s.gate.leave()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: waiting for %s: %w", domain.ErrOperationAbandoned, lockFile, ctxErr)
		}
		return nil, fmt.Errorf("%w: lock %s: %v", domain.ErrStorageUnavailable, lockFile, err)
	}
	return func() {
		_ = s.flock.Unlock()
		s.gate.leave()
	}, nil
}

// LoadAll returns every stored credential keyed by name.
func (s *CredentialFileStore) LoadAll() (map[string]domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.read(usersFile, slotUsers)
	if err != nil {
		return nil, err
	}
	return decodeUsers(b)
}

// SaveAll replaces the stored collection.
func (s *CredentialFileStore) SaveAll(users map[string]domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := encodeUsers(users)
	if err != nil {
		return err
	}
	return s.write(usersFile, slotUsers, b)
}

// LoadCurrentSession returns the current-session record and whether one is set.
func (s *CredentialFileStore) LoadCurrentSession() (domain.Credential, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.read(currentUserFile, slotCurrentUser)
	if err != nil {
		return domain.Credential{}, false, err
	}
	return decodeCredential(b)
}

// SaveCurrentSession replaces the current-session record.
func (s *CredentialFileStore) SaveCurrentSession(cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := encodeCredential(cred)
	if err != nil {
		return err
	}
	return s.write(currentUserFile, slotCurrentUser, b)
}

// ClearCurrentSession removes the current-session record.
func (s *CredentialFileStore) ClearCurrentSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return removeFile(filepath.Join(s.dir, currentUserFile))
}

func (s *CredentialFileStore) read(name, slot string) ([]byte, error) {
	b, err := readFile(filepath.Join(s.dir, name))
	if err != nil || b == nil || s.sealer == nil {
		return b, err
	}
	return s.sealer.open(slot, b)
}

func (s *CredentialFileStore) write(name, slot string, b []byte) error {
	if s.sealer != nil {
		sealed, err := s.sealer.seal(slot, b)
		if err != nil {
			return err
		}
		b = sealed
	}
	return writeFile(filepath.Join(s.dir, name), b, 0o600)
}

// Compile-time assertions that CredentialFileStore implements the store contracts.
var (
	_ domain.CredentialStore = (*CredentialFileStore)(nil)
	_ domain.StoreLocker     = (*CredentialFileStore)(nil)
)
