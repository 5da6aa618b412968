// Package retry configures how the retrying adapter backs off between
// attempts on transient storage errors.
package retry

import (
	"github.com/spetersoncode/stash/internal/retry"
)

// Config holds retry configuration parameters.
//
//   - MaxAttempts: maximum number of attempts; the initial call counts as attempt 1
//   - InitialDelay: base delay before the first retry
//   - MaxDelay: upper bound on any single delay
//   - Multiplier: exponential backoff multiplier
//   - Jitter: fraction of random spread applied to each delay
type Config = retry.Config

// Event reports a step of a retried operation.
type Event = retry.Event

// EventType identifies the kind of Event.
type EventType = retry.EventType

// Event types, in the order they can occur.
const (
	EventAttemptStart  = retry.EventAttemptStart
	EventAttemptFailed = retry.EventAttemptFailed
	EventRetrying      = retry.EventRetrying
	EventSuccess       = retry.EventSuccess
	EventExhausted     = retry.EventExhausted
)

// DefaultConfig returns the default configuration: 3 attempts, 50ms initial
// delay, 2s max delay, 2x multiplier and 10% jitter.
func DefaultConfig() Config {
	return retry.DefaultConfig()
}

// Disabled returns a configuration that makes a single attempt.
func Disabled() Config {
	return retry.Disabled()
}

// WithAttempts returns the default configuration with a different attempt count.
func WithAttempts(n int) Config {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = n
	return cfg
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return retry.IsTransient(err)
}
