package interfaces

import (
	"context"

	domaintypes "sigil/internal/domain/types"
)

// CredentialStore persists the name-indexed credential collection and the
// current-session slot. It performs no cryptography.
type CredentialStore interface {
	LoadAll() (map[string]domaintypes.Credential, error)
	SaveAll(users map[string]domaintypes.Credential) error

	LoadCurrentSession() (domaintypes.Credential, bool, error)
	SaveCurrentSession(cred domaintypes.Credential) error
	ClearCurrentSession() error
}

// StoreLocker serializes read-check-write sequences against a store.
type StoreLocker interface {
	Acquire(ctx context.Context) (release func(), err error)
}
