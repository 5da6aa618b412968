package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/spetersoncode/stash"
	"github.com/spetersoncode/stash/adapter/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type doc struct {
	Name string `json:"name"`
}

func failing(err error) stash.Adapter[doc] {
	return stash.AdapterFunc[doc]{
		ReadFunc:  func(context.Context) (*doc, error) { return nil, err },
		WriteFunc: func(context.Context, *doc) error { return err },
	}
}

func decodeRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestWithLogger_Success(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := stash.MustNew[doc](WithLogger[doc](memory.New[doc](), logger, "store", "users"))
	s.Set(doc{Name: "Alice"})
	require.NoError(t, s.Write(ctx))
	require.NoError(t, s.Read(ctx))
	assert.Equal(t, "Alice", s.Data().Name)

	records := decodeRecords(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "write", records[0]["op"])
	assert.Equal(t, "read", records[1]["op"])
	assert.Equal(t, "DEBUG", records[1]["level"])
	assert.Equal(t, true, records[1]["present"])
	assert.Equal(t, "users", records[1]["store"])
}

func TestWithLogger_Failure(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	want := stash.NewStorageError(stash.OpRead, "db.json", errors.New("permission denied"))

	_, err := WithLogger(failing(want), logger).Read(ctx)
	assert.Same(t, want, err)

	records := decodeRecords(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "WARN", records[0]["level"])
	assert.Contains(t, records[0]["error"], "permission denied")
}

func TestWithTracer_Spans(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	a := WithTracer[doc](memory.New[doc](), tp.Tracer("test"), attribute.String("stash.medium", "memory"))
	require.NoError(t, a.Write(ctx, &doc{Name: "Bob"}))
	got, err := a.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "stash.write", spans[0].Name())
	assert.Equal(t, "stash.read", spans[1].Name())
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
	assert.Contains(t, spans[1].Attributes(), attribute.String("stash.medium", "memory"))
	assert.Contains(t, spans[1].Attributes(), attribute.Bool("stash.present", true))
}

func TestWithTracer_Error(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	want := stash.NewTransientStorageError(stash.OpWrite, "db", errors.New("locked"))
	err := WithTracer(failing(want), tp.Tracer("test")).Write(ctx, &doc{})
	assert.Same(t, want, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("stash.error.category", "transient"))
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestUnwrap(t *testing.T) {
	inner := memory.New[doc]()
	assert.Same(t, inner, WithLogger[doc](inner, nil).Unwrap())
	assert.Same(t, inner, WithTracer[doc](inner, nil).Unwrap())
}
