package store

import (
	"context"
	"fmt"

	"sigil/internal/domain"
)

// gate is a context-aware in-process mutex.
type gate chan struct{}

func newGate() gate { return make(gate, 1) }

func (g gate) enter(ctx context.Context) error {
	select {
	case g <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for store lock: %w", domain.ErrOperationAbandoned, ctx.Err())
	}
}

func (g gate) leave() { <-g }
