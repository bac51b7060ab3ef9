package store

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrLockContended is returned by tryLockFile callers wrapped in
// RetryWithBackoff when the pool lock is currently held by another
// process (spec §5's "acquire/release must be safe under concurrent
// invocations" requirement, implemented here via advisory flock retry
// rather than the teacher's SQLITE_BUSY retry).
var ErrLockContended = errors.New("pool lock contended")

// RetryWithBackoff wraps an operation with exponential backoff retry
// logic, retrying only on ErrLockContended. Any other error is returned
// immediately without retry, mirroring the teacher's retry.go shape
// adapted from SQLite contention to file-lock contention.
func RetryWithBackoff(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 25 * time.Millisecond
	b.MaxInterval = 1 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	b.RandomizationFactor = 0.2

	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		err := operation()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrLockContended) {
			return err // retried
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(b, ctx))
}
