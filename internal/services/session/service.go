package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"sigil/internal/domain"
	"sigil/internal/logging"
	"sigil/internal/services/identity"
)

// Manager implements domain.SessionService.
//
// The session lives only in the store's currentUser slot. Every Manager and
// process sharing the store sees the same session, including logouts made
// elsewhere.
type Manager struct {
	store        domain.CredentialStore
	ids          *identity.Service
	log          logging.Logger
	verifyLogins bool

	mu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithAttestationCheck toggles re-verification of the stored attestation at
// login. It is on by default.
func WithAttestationCheck(on bool) Option {
	return func(m *Manager) { m.verifyLogins = on }
}

// New returns a logged-out Manager over store.
func New(store domain.CredentialStore, ids *identity.Service, log logging.Logger, opts ...Option) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	m := &Manager{
		store:        store,
		ids:          ids,
		log:          log.With("component", "session"),
		verifyLogins: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register creates a new identity for name and email, stores it and makes it
// the current session.
//
// Steps:
//  1. Generate a key pair and derive its identity.
//  2. Sign the canonical {name, email} payload.
//  3. Under the store lock, reject the credential if its identity is already
//     stored, then save the collection and the current session.
func (m *Manager) Register(ctx context.Context, name, email string) (domain.Credential, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Credential{}, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
	}

	kp, err := m.generate(ctx)
	if err != nil {
		return domain.Credential{}, m.fail(ctx, "register", err, "name", name)
	}
	cred, err := m.ids.Attest(kp, name, email)
	if err != nil {
		return domain.Credential{}, m.fail(ctx, "register", err, "name", name)
	}

	err = m.locked(ctx, func() error {
		users, err := m.store.LoadAll()
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.ID == cred.ID {
				return fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, cred.ID)
			}
		}
		before := maps.Clone(users)
		if prev, ok := users[name]; ok {
			m.log.Warn(ctx, "name re-registered, previous identity replaced", "name", name, "previous_id", prev.ID)
		}
		users[name] = cred
		if err := m.store.SaveAll(users); err != nil {
			return err
		}
		if err := m.switchTo(cred); err != nil {
			// The caller never sees cred, so it must not stay registered.
			if rbErr := m.store.SaveAll(before); rbErr != nil {
				m.log.Error(ctx, "register rollback failed", "name", name, "id", cred.ID, "err", rbErr)
				return errors.Join(err, rbErr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Credential{}, m.fail(ctx, "register", err, "name", name)
	}

	m.log.Info(ctx, "registered", "name", name, "id", cred.ID)
	return cred, nil
}

// Login makes the stored credential for name the current session.
func (m *Manager) Login(ctx context.Context, name string) (domain.Credential, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Credential{}, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
	}

	var cred domain.Credential
	err := m.locked(ctx, func() error {
		users, err := m.store.LoadAll()
		if err != nil {
			return err
		}
		found, ok := users[name]
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownUser, name)
		}
		kp, err := m.ids.Restore(found)
		if err != nil {
			return err
		}
		if m.verifyLogins {
			if err := m.ids.CheckAttestation(found, kp); err != nil {
				return err
			}
		}
		cred = found
		return m.switchTo(cred)
	})
	if err != nil {
		return domain.Credential{}, m.fail(ctx, "login", err, "name", name)
	}

	m.log.Info(ctx, "logged in", "name", name, "id", cred.ID)
	return cred, nil
}

// CurrentSession reads the store's currentUser slot.
func (m *Manager) CurrentSession(ctx context.Context) (domain.Credential, error) {
	var cred domain.Credential
	err := m.locked(ctx, func() error {
		found, ok, err := m.store.LoadCurrentSession()
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNoActiveSession
		}
		cred = found
		return nil
	})
	if err != nil {
		return domain.Credential{}, m.fail(ctx, "current session", err)
	}
	return cred, nil
}

// SetSession overwrites the current session with cred without any checks
// beyond those the store applies to records.
func (m *Manager) SetSession(ctx context.Context, cred domain.Credential) error {
	err := m.locked(ctx, func() error { return m.switchTo(cred) })
	if err != nil {
		return m.fail(ctx, "set session", err, "name", cred.Name)
	}
	m.log.Debug(ctx, "session set", "name", cred.Name, "id", cred.ID)
	return nil
}

// Logout clears the current session. Logging out while logged out is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.locked(ctx, func() error {
		return m.store.ClearCurrentSession()
	})
	if err != nil {
		return m.fail(ctx, "logout", err)
	}
	m.log.Info(ctx, "logged out")
	return nil
}

// Identity restores the key pair of the current session.
func (m *Manager) Identity(ctx context.Context) (*identity.KeyPair, error) {
	cred, err := m.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	kp, err := m.ids.Restore(cred)
	if err != nil {
		return nil, m.fail(ctx, "restore identity", err, "name", cred.Name)
	}
	return kp, nil
}

// generate runs key generation off the caller's goroutine so that a cancelled
// ctx is honored even when the entropy source blocks.
func (m *Manager) generate(ctx context.Context) (*identity.KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, abandoned(err)
	}
	type result struct {
		kp  *identity.KeyPair
		err error
	}
	done := make(chan result, 1)
	go func() {
		kp, err := m.ids.GenerateKeypair()
		done <- result{kp, err}
	}()
	select {
	case <-ctx.Done():
		return nil, abandoned(ctx.Err())
	case r := <-done:
		return r.kp, r.err
	}
}

// locked runs fn holding the store lock (when the store offers one) and the
// Manager's mutex.
func (m *Manager) locked(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return abandoned(err)
	}
	if l, ok := m.store.(domain.StoreLocker); ok {
		release, err := l.Acquire(ctx)
		if err != nil {
			return err
		}
		defer release()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn()
}

// switchTo persists cred as the current session. Callers hold m.mu.
func (m *Manager) switchTo(cred domain.Credential) error {
	return m.store.SaveCurrentSession(cred)
}

// fail logs err at a level matching its kind and returns it unchanged.
func (m *Manager) fail(ctx context.Context, op string, err error, args ...any) error {
	args = append(args, "op", op, "err", err)
	if domain.IsExpected(err) {
		m.log.Info(ctx, op+" refused", args...)
	} else {
		m.log.Error(ctx, op+" failed", args...)
	}
	return err
}

func abandoned(cause error) error {
	return fmt.Errorf("%w: %w", domain.ErrOperationAbandoned, cause)
}

// Compile-time assertion that Manager implements domain.SessionService.
var _ domain.SessionService = (*Manager)(nil)
