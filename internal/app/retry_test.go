package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sigil/internal/app"
	"sigil/internal/domain"
)

var errFlaky = fmt.Errorf("%w: busy", domain.ErrStorageUnavailable)

func TestRetry_RecoversFromTransientFailures(t *testing.T) {
	calls, notified := 0, 0
	err := app.Retry(context.Background(), 5*time.Second, func() error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	}, func(error, time.Duration) { notified++ })

	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, 2, notified)
}

func TestRetry_PermanentErrorsAreNotRetried(t *testing.T) {
	calls := 0
	err := app.Retry(context.Background(), 5*time.Second, func() error {
		calls++
		return fmt.Errorf("%w: bob", domain.ErrUnknownUser)
	}, nil)

	require.ErrorIs(t, err, domain.ErrUnknownUser)
	require.Equal(t, 1, calls)
}

func TestRetry_BudgetExhausted(t *testing.T) {
	calls := 0
	err := app.Retry(context.Background(), 80*time.Millisecond, func() error {
		calls++
		return errFlaky
	}, nil)

	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	require.Greater(t, calls, 1)
}

func TestRetry_ZeroBudgetRunsOnce(t *testing.T) {
	calls := 0
	err := app.Retry(context.Background(), 0, func() error {
		calls++
		return errFlaky
	}, nil)

	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	require.Equal(t, 1, calls)
}

func TestRetry_CancelledContextIsAbandoned(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := app.Retry(ctx, 5*time.Second, func() error {
		calls++
		return errFlaky
	}, nil)

	require.ErrorIs(t, err, domain.ErrOperationAbandoned)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
