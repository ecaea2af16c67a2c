package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"sigil/internal/domain"
	"sigil/internal/logging"
	"sigil/internal/services/identity"
	"sigil/internal/services/session"
	"sigil/internal/store"
)

// BoltFile is the database file of the bolt backend inside Home.
const BoltFile = "sigil.db"

// Wire bundles the store, services and logger for the CLI.
type Wire struct {
	Config     Config
	Log        logging.Logger
	Store      domain.CredentialStore
	Identities *identity.Service
	Sessions   *session.Manager

	close func() error
}

// NewWire constructs the dependency graph from cfg. passphrase is only used
// when cfg.Seal is set. Logs are written to logOut.
func NewWire(cfg Config, passphrase string, logOut io.Writer) (*Wire, error) {
	cfg.Backend = strings.ToLower(cfg.Backend)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logging.NewTextLogger(logOut, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	w := &Wire{
		Config:     cfg,
		Log:        log,
		Identities: identity.New(),
		close:      func() error { return nil },
	}

	switch cfg.Backend {
	case BackendFile:
		var opts []store.FileOption
		if cfg.Seal {
			if err := identity.CheckPassphrase(passphrase); err != nil {
				return nil, err
			}
			opts = append(opts, store.WithPassphrase(passphrase))
		}
		w.Store = store.NewCredentialFileStore(cfg.Home, opts...)
	case BackendBolt:
		bs, err := store.OpenCredentialBoltStore(filepath.Join(cfg.Home, BoltFile), 0o600, nil)
		if err != nil {
			return nil, err
		}
		w.Store = bs
		w.close = bs.Close
	case BackendMemory:
		w.Store = store.NewCredentialMemoryStore()
	}

	w.Sessions = session.New(w.Store, w.Identities, log,
		session.WithAttestationCheck(cfg.VerifyOnLogin))
	log.Debug(context.Background(), "wired", "backend", cfg.Backend, "home", cfg.Home, "sealed", cfg.Seal)
	return w, nil
}

// Do runs op under the configured operation timeout, retrying transient
// storage failures within the retry budget.
func (w *Wire) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	if w.Config.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Config.OperationTimeout)
		defer cancel()
	}
	err := Retry(ctx, w.Config.RetryMaxElapsed, func() error { return op(ctx) },
		func(err error, wait time.Duration) {
			w.Log.Warn(ctx, "storage unavailable, retrying", "op", name, "wait", wait, "err", err)
		})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Close releases the store.
func (w *Wire) Close() error {
	return w.close()
}
