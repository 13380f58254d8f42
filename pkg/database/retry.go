package database

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
)

// QueryDefaultRetries and QueryDefaultRetryDelayMs are the chunk-retry
// policy applied to every upsert.
const (
	QueryDefaultRetries     = 5
	QueryDefaultRetryDelayMs = 500
)

func pqErrorCode(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	return "", false
}

// withRetry runs fn, retrying up to QueryDefaultRetries times with a fixed
// QueryDefaultRetryDelayMs backoff whenever fn's error is transient.
// A persistent error (or exhausted retries) is returned immediately.
func withRetry(ctx context.Context, fn func() error) error {
	policy := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(QueryDefaultRetryDelayMs*time.Millisecond),
		QueryDefaultRetries,
	)

	operation := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}
