// Package retrying wraps a stash adapter so transient storage errors are retried
// with exponential backoff.
//
// Only errors classified as transient are retried. Permanent errors, malformed
// content and context cancellation are returned on the first occurrence. The
// final error is the adapter's own, unchanged, unless ctx ends during a
// backoff wait, in which case ctx.Err() is returned.
package retrying

import (
	"context"

	"github.com/spetersoncode/stash"
	internalretry "github.com/spetersoncode/stash/internal/retry"
	"github.com/spetersoncode/stash/retry"
)

// Adapter retries the wrapped adapter's operations on transient errors.
type Adapter[T any] struct {
	next   stash.Adapter[T]
	cfg    retry.Config
	notify func(retry.Event)
}

// Option configures a retrying Adapter.
type Option[T any] func(*Adapter[T])

// WithNotify registers a callback receiving every retry event.
func WithNotify[T any](fn func(retry.Event)) Option[T] {
	return func(a *Adapter[T]) {
		a.notify = fn
	}
}

// Wrap returns an adapter that retries next according to cfg.
func Wrap[T any](next stash.Adapter[T], cfg retry.Config, opts ...Option[T]) *Adapter[T] {
	a := &Adapter[T]{next: next, cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Read retries next.Read.
func (a *Adapter[T]) Read(ctx context.Context) (*T, error) {
	return internalretry.DoWithEvents(ctx, a.cfg, a.notify, func() (*T, error) {
		return a.next.Read(ctx)
	})
}

// Write retries next.Write. Every attempt writes the same value.
func (a *Adapter[T]) Write(ctx context.Context, data *T) error {
	_, err := internalretry.DoWithEvents(ctx, a.cfg, a.notify, func() (struct{}, error) {
		return struct{}{}, a.next.Write(ctx, data)
	})
	return err
}

// Unwrap returns the wrapped adapter.
func (a *Adapter[T]) Unwrap() stash.Adapter[T] {
	return a.next
}

var _ stash.Adapter[struct{}] = (*Adapter[struct{}])(nil)
