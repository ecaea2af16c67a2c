package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"sigil/internal/domain"
)

const (
	retryInitialInterval = 25 * time.Millisecond
	retryMaxInterval     = 500 * time.Millisecond
)

// Retry runs op until it succeeds, fails with a non-retryable error, or
// maxElapsed passes. Only domain.IsRetryable errors are retried. notify, if
// non-nil, is called before each wait.
func Retry(ctx context.Context, maxElapsed time.Duration, op func() error, notify func(error, time.Duration)) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = maxElapsed
	if maxElapsed == 0 {
		b.MaxElapsedTime = time.Nanosecond
	}

	err := backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx), notify)

	if err != nil && ctx.Err() != nil && !errors.Is(err, domain.ErrOperationAbandoned) &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return fmt.Errorf("%w: %w", domain.ErrOperationAbandoned, err)
	}
	return err
}
