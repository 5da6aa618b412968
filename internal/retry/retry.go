// Package retry implements the retry loop and transient-error classification
// behind the retrying adapter.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/spetersoncode/stash"
)

// retryAfterFromError extracts the RetryAfter duration from a CategorizedError.
// Returns 0 if the error doesn't implement CategorizedError or has no RetryAfter.
func retryAfterFromError(err error) time.Duration {
	var ce stash.CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}

// effectiveDelay returns the delay to use, honoring the medium's suggestion if larger.
func effectiveDelay(configuredDelay time.Duration, err error) time.Duration {
	serverDelay := retryAfterFromError(err)
	if serverDelay > configuredDelay {
		return serverDelay
	}
	return configuredDelay
}

// Do executes the given function with retry logic.
// It respects context cancellation during backoff waits.
// Returns the result on success, or the last error if all attempts fail.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	return DoWithEvents(ctx, cfg, nil, fn)
}

// DoWithEvents is like Do but reports each step to notify.
// Pass nil for notify to disable event reporting (equivalent to Do).
func DoWithEvents[T any](ctx context.Context, cfg Config, notify func(Event), fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		emit(notify, Event{
			Type:        EventAttemptStart,
			Attempt:     attempt + 1,
			MaxAttempts: maxAttempts,
		})

		result, err := fn()
		if err == nil {
			emit(notify, Event{
				Type:        EventSuccess,
				Attempt:     attempt + 1,
				MaxAttempts: maxAttempts,
			})
			return result, nil
		}

		lastErr = err
		retryable := IsTransient(err)

		emit(notify, Event{
			Type:        EventAttemptFailed,
			Attempt:     attempt + 1,
			MaxAttempts: maxAttempts,
			Error:       err,
			Retryable:   retryable,
		})

		if !retryable {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < maxAttempts-1 {
			delay := effectiveDelay(cfg.Delay(attempt), err)

			emit(notify, Event{
				Type:        EventRetrying,
				Attempt:     attempt + 1,
				MaxAttempts: maxAttempts,
				Delay:       delay,
			})

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	emit(notify, Event{
		Type:        EventExhausted,
		Attempt:     maxAttempts,
		MaxAttempts: maxAttempts,
		Error:       lastErr,
	})

	return zero, lastErr
}
