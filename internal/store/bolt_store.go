package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/boltdb/bolt"

	"sigil/internal/domain"
)

var (
	bucketCredentials = []byte("credentials")
	keyUsers          = []byte(slotUsers)
	keyCurrentUser    = []byte(slotCurrentUser)
)

// CredentialBoltStore keeps both slots as JSON values in one bolt bucket.
type CredentialBoltStore struct {
	db   *bolt.DB
	gate gate
}

// OpenCredentialBoltStore opens (creating if needed) the bolt database at
// path. A nil options uses a one second open timeout.
func OpenCredentialBoltStore(path string, mode os.FileMode, options *bolt.Options) (*CredentialBoltStore, error) {
	if options == nil {
		options = &bolt.Options{Timeout: time.Second}
	}
	db, err := bolt.Open(path, mode, options)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStorageUnavailable, path, err)
	}
	s := &CredentialBoltStore{db: db, gate: newGate()}
	if err := db.Update(s.init); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init %s: %v", domain.ErrStorageUnavailable, path, err)
	}
	return s, nil
}

// init creates the bucket. It is idempotent.
func (s *CredentialBoltStore) init(tx *bolt.Tx) error {
	_, err := tx.CreateBucketIfNotExists(bucketCredentials)
	return err
}

// Close releases the database file.
func (s *CredentialBoltStore) Close() error {
	return s.db.Close()
}

// Acquire serializes callers in this process; bolt itself holds an exclusive
// file lock for as long as the database is open.
func (s *CredentialBoltStore) Acquire(ctx context.Context) (func(), error) {
	if err := s.gate.enter(ctx); err != nil {
		return nil, err
	}
	return s.gate.leave, nil
}

// LoadAll returns every stored credential keyed by name.
func (s *CredentialBoltStore) LoadAll() (map[string]domain.Credential, error) {
	var users map[string]domain.Credential
	err := s.view(func(b *bolt.Bucket) error {
		var err error
		users, err = decodeUsers(b.Get(keyUsers))
		return err
	})
	return users, err
}

// SaveAll replaces the stored collection in a single transaction.
func (s *CredentialBoltStore) SaveAll(users map[string]domain.Credential) error {
	raw, err := encodeUsers(users)
	if err != nil {
		return err
	}
	return s.update(func(b *bolt.Bucket) error {
		return b.Put(keyUsers, raw)
	})
}

// LoadCurrentSession returns the current-session record and whether one is set.
func (s *CredentialBoltStore) LoadCurrentSession() (domain.Credential, bool, error) {
	var (
		cred domain.Credential
		ok   bool
	)
	err := s.view(func(b *bolt.Bucket) error {
		var err error
		cred, ok, err = decodeCredential(b.Get(keyCurrentUser))
		return err
	})
	return cred, ok, err
}

// SaveCurrentSession replaces the current-session record.
func (s *CredentialBoltStore) SaveCurrentSession(cred domain.Credential) error {
	raw, err := encodeCredential(cred)
	if err != nil {
		return err
	}
	return s.update(func(b *bolt.Bucket) error {
		return b.Put(keyCurrentUser, raw)
	})
}

// ClearCurrentSession removes the current-session record.
func (s *CredentialBoltStore) ClearCurrentSession() error {
	return s.update(func(b *bolt.Bucket) error {
		return b.Delete(keyCurrentUser)
	})
}

// view runs fn in a read transaction. Values passed to fn are only valid
// inside it; decoding copies them out.
func (s *CredentialBoltStore) view(fn func(*bolt.Bucket) error) error {
	return classify(s.db.View(func(tx *bolt.Tx) error {
		return fn(tx.Bucket(bucketCredentials))
	}))
}

func (s *CredentialBoltStore) update(fn func(*bolt.Bucket) error) error {
	return classify(s.db.Update(func(tx *bolt.Tx) error {
		return fn(tx.Bucket(bucketCredentials))
	}))
}

// classify maps bolt failures to ErrStorageUnavailable, leaving domain
// errors produced by decoding untouched.
func classify(err error) error {
	if err == nil ||
		errors.Is(err, domain.ErrCorruptStore) ||
		errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}

// Compile-time assertions that CredentialBoltStore implements the store contracts.
var (
	_ domain.CredentialStore = (*CredentialBoltStore)(nil)
	_ domain.StoreLocker     = (*CredentialBoltStore)(nil)
)
