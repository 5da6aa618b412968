package instrument

import (
	"context"
	"errors"

	"github.com/spetersoncode/stash"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/spetersoncode/stash"

// Traced records a span around each Read and Write of the wrapped adapter.
type Traced[T any] struct {
	next   stash.Adapter[T]
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

// WithTracer wraps next so its calls are traced with tracer. A nil tracer
// uses the global tracer provider. attrs are added to every span.
func WithTracer[T any](next stash.Adapter[T], tracer trace.Tracer, attrs ...attribute.KeyValue) *Traced[T] {
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	return &Traced[T]{next: next, tracer: tracer, attrs: attrs}
}

// Read delegates to the wrapped adapter inside a "stash.read" span.
func (t *Traced[T]) Read(ctx context.Context) (*T, error) {
	ctx, span := t.tracer.Start(ctx, "stash.read", trace.WithAttributes(t.attrs...))
	defer span.End()

	data, err := t.next.Read(ctx)
	span.SetAttributes(attribute.Bool("stash.present", data != nil))
	finish(span, err)
	return data, err
}

// Write delegates to the wrapped adapter inside a "stash.write" span.
func (t *Traced[T]) Write(ctx context.Context, data *T) error {
	ctx, span := t.tracer.Start(ctx, "stash.write", trace.WithAttributes(t.attrs...))
	defer span.End()

	span.SetAttributes(attribute.Bool("stash.present", data != nil))
	err := t.next.Write(ctx, data)
	finish(span, err)
	return err
}

// Unwrap returns the wrapped adapter.
func (t *Traced[T]) Unwrap() stash.Adapter[T] {
	return t.next
}

func finish(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	var ce stash.CategorizedError
	if errors.As(err, &ce) {
		span.SetAttributes(attribute.String("stash.error.category", string(ce.Category())))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

var _ stash.Adapter[struct{}] = (*Traced[struct{}])(nil)
