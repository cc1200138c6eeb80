package config

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// LookupRetryInitialInterval is the wait before the first retry of an
	// online lookup
	LookupRetryInitialInterval = time.Millisecond * 500
	// LookupRetryMaxInterval is the maximum wait between two retries of an
	// online lookup
	LookupRetryMaxInterval = time.Second * 4
)

// NewLookupBackoff returns a new backoff for retrying online lookups, it stops
// after maxRetries retries or when ctx is canceled
func NewLookupBackoff(ctx context.Context, maxRetries uint64) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(LookupRetryInitialInterval),
		backoff.WithMaxInterval(LookupRetryMaxInterval),
		// the retry count and ctx bound us instead
		backoff.WithMaxElapsedTime(0),
	)

	return backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)
}
