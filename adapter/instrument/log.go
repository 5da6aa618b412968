package instrument

import (
	"context"
	"log/slog"
	"time"

	"github.com/spetersoncode/stash"
)

// Logged logs each Read and Write of the wrapped adapter.
// Successful calls are logged at debug level, failures at warn level.
type Logged[T any] struct {
	next stash.Adapter[T]
	log  *slog.Logger
}

// WithLogger wraps next so its calls are logged to logger. Extra args are
// attached to every record, in slog key/value form. A nil logger uses
// slog.Default().
func WithLogger[T any](next stash.Adapter[T], logger *slog.Logger, args ...any) *Logged[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if len(args) > 0 {
		logger = logger.With(args...)
	}
	return &Logged[T]{next: next, log: logger}
}

// Read delegates to the wrapped adapter.
func (l *Logged[T]) Read(ctx context.Context) (*T, error) {
	start := time.Now()
	data, err := l.next.Read(ctx)
	l.record(ctx, stash.OpRead, start, data != nil, err)
	return data, err
}

// Write delegates to the wrapped adapter.
func (l *Logged[T]) Write(ctx context.Context, data *T) error {
	start := time.Now()
	err := l.next.Write(ctx, data)
	l.record(ctx, stash.OpWrite, start, data != nil, err)
	return err
}

// Unwrap returns the wrapped adapter.
func (l *Logged[T]) Unwrap() stash.Adapter[T] {
	return l.next
}

func (l *Logged[T]) record(ctx context.Context, op stash.Op, start time.Time, present bool, err error) {
	log := l.log.With(
		"op", string(op),
		"duration", time.Since(start),
		"present", present,
	)
	if err != nil {
		log.WarnContext(ctx, "stash operation failed", "error", err)
		return
	}
	log.DebugContext(ctx, "stash operation completed")
}

var _ stash.Adapter[struct{}] = (*Logged[struct{}])(nil)
