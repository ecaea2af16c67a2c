// Package store provides persistence for sigil credential records.
//
// It contains concrete implementations of domain.CredentialStore, each
// keeping two logical slots: "users" (a JSON object mapping name to record)
// and "currentUser" (one record). Stores perform no cryptography on records;
// the file store can optionally seal its files with a passphrase.
//
// The package includes:
//   - CredentialFileStore: JSON files under a home directory, atomic
//     temp-file replacement, cross-process flock
//   - CredentialBoltStore: one bolt bucket, one transaction per write
//   - CredentialMemoryStore: in-process, for tests and ephemeral use
//
// All stores are concurrency-safe via internal locking and implement
// domain.StoreLocker so callers can serialize read-check-write sequences.
// Medium failures are reported as domain.ErrStorageUnavailable and unparsable
// content as domain.ErrCorruptStore.
package store
