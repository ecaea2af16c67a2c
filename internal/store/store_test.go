package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sigil/internal/domain"
	"sigil/internal/store"
)

type backend struct {
	name string
	open func(t *testing.T) domain.CredentialStore
}

func backends() []backend {
	return []backend{
		{"file", func(t *testing.T) domain.CredentialStore {
			return store.NewCredentialFileStore(t.TempDir())
		}},
		{"bolt", func(t *testing.T) domain.CredentialStore {
			s, err := store.OpenCredentialBoltStore(filepath.Join(t.TempDir(), "sigil.db"), 0o600, nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
		{"memory", func(t *testing.T) domain.CredentialStore {
			return store.NewCredentialMemoryStore()
		}},
	}
}

func record(name string) domain.Credential {
	return domain.Credential{
		ID:         domain.IdentityID("id-" + name),
		Name:       name,
		Email:      name + "@x.com",
		Signature:  "c2ln",
		PublicKey:  "cHVi",
		PrivateKey: "cHJpdg==",
	}
}

func TestStores_EmptyState(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)

			users, err := s.LoadAll()
			require.NoError(t, err)
			require.NotNil(t, users)
			require.Empty(t, users)

			_, ok, err := s.LoadCurrentSession()
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.ClearCurrentSession())
		})
	}
}

func TestStores_SaveLoadAll(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			in := map[string]domain.Credential{
				"alice": record("alice"),
				"bob":   record("bob"),
			}
			require.NoError(t, s.SaveAll(in))

			got, err := s.LoadAll()
			require.NoError(t, err)
			require.Equal(t, in, got)

			// Overwrite replaces rather than merges.
			require.NoError(t, s.SaveAll(map[string]domain.Credential{"carol": record("carol")}))
			got, err = s.LoadAll()
			require.NoError(t, err)
			require.Equal(t, map[string]domain.Credential{"carol": record("carol")}, got)
		})
	}
}

func TestStores_LoadAllReturnsCopy(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			require.NoError(t, s.SaveAll(map[string]domain.Credential{"alice": record("alice")}))

			got, err := s.LoadAll()
			require.NoError(t, err)
			delete(got, "alice")

			again, err := s.LoadAll()
			require.NoError(t, err)
			require.Contains(t, again, "alice")
		})
	}
}

func TestStores_CurrentSession(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			require.NoError(t, s.SaveCurrentSession(record("alice")))
			require.NoError(t, s.SaveCurrentSession(record("bob")))

			got, ok, err := s.LoadCurrentSession()
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, record("bob"), got)

			require.NoError(t, s.ClearCurrentSession())
			_, ok, err = s.LoadCurrentSession()
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestStores_RejectInvalidRecords(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)

			misfiled := map[string]domain.Credential{"mallory": record("alice")}
			require.ErrorIs(t, s.SaveAll(misfiled), domain.ErrInvalidInput)

			noKeys := record("alice")
			noKeys.PrivateKey = ""
			require.ErrorIs(t, s.SaveCurrentSession(noKeys), domain.ErrInvalidInput)
		})
	}
}

func TestStores_AcquireSerializesAndHonoursContext(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			locker, ok := b.open(t).(domain.StoreLocker)
			require.True(t, ok)

			release, err := locker.Acquire(context.Background())
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_, err = locker.Acquire(ctx)
			require.ErrorIs(t, err, domain.ErrOperationAbandoned)

			release()
			release2, err := locker.Acquire(context.Background())
			require.NoError(t, err)
			release2()
		})
	}
}
