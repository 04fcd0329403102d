package contract

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Permanent marks an error that must not be retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Retry runs op until it succeeds, returns a Permanent error, the context is
// done, or maxRetries additional attempts have failed.
func Retry(ctx context.Context, maxRetries int, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 500 * time.Millisecond
	eb.MaxInterval = 10 * time.Second
	eb.MaxElapsedTime = 2 * time.Minute

	var b backoff.BackOff = eb
	if maxRetries >= 0 {
		b = backoff.WithMaxRetries(b, uint64(maxRetries))
	}
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
