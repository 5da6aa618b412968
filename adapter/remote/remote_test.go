package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spetersoncode/stash"
	"github.com/spetersoncode/stash/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Posts []string `json:"posts" yaml:"posts"`
}

// resource is a minimal in-memory HTTP document.
type resource struct {
	mu          sync.Mutex
	body        []byte
	contentType string
	requestIDs  []string
	header      http.Header
}

func (r *resource) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requestIDs = append(r.requestIDs, req.Header.Get(RequestIDHeader))
	r.header = req.Header.Clone()

	switch req.Method {
	case http.MethodGet:
		if r.body == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(r.body)
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		r.body = body
		r.contentType = req.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if r.body == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		r.body = nil
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (r *resource) stored() (body []byte, contentType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body, r.contentType
}

func TestAdapter_ReadMissing(t *testing.T) {
	srv := httptest.NewServer(&resource{})
	defer srv.Close()

	got, err := New[doc](srv.URL).Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAdapter_WriteThenRead(t *testing.T) {
	res := &resource{}
	srv := httptest.NewServer(res)
	defer srv.Close()

	ctx := context.Background()
	a := New[doc](srv.URL)

	require.NoError(t, a.Write(ctx, &doc{Posts: []string{"hello"}}))
	body, contentType := res.stored()
	assert.Equal(t, `{"posts":["hello"]}`+"\n", string(body))
	assert.Equal(t, "application/json", contentType)

	got, err := a.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"hello"}, got.Posts)
}

func TestAdapter_WriteNilDeletes(t *testing.T) {
	res := &resource{}
	srv := httptest.NewServer(res)
	defer srv.Close()

	ctx := context.Background()
	a := New[doc](srv.URL)

	require.NoError(t, a.Write(ctx, &doc{Posts: []string{"x"}}))
	require.NoError(t, a.Write(ctx, nil))
	body, _ := res.stored()
	assert.Nil(t, body)

	got, err := a.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an already missing resource is not an error
	require.NoError(t, a.Write(ctx, nil))
}

func TestAdapter_EmptyBodyIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	got, err := New[doc](srv.URL).Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAdapter_YAMLCodec(t *testing.T) {
	res := &resource{}
	srv := httptest.NewServer(res)
	defer srv.Close()

	ctx := context.Background()
	a := New[doc](srv.URL, WithCodec(codec.YAML{}))

	require.NoError(t, a.Write(ctx, &doc{Posts: []string{"a", "b"}}))
	body, contentType := res.stored()
	assert.Equal(t, "application/yaml", contentType)
	assert.Contains(t, string(body), "posts:")

	got, err := a.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Posts)
}

func TestAdapter_Headers(t *testing.T) {
	res := &resource{}
	srv := httptest.NewServer(res)
	defer srv.Close()

	ctx := context.Background()
	a := New[doc](srv.URL, WithHeader("Authorization", "Bearer secret"))

	_, err := a.Read(ctx)
	require.NoError(t, err)
	_, err = a.Read(ctx)
	require.NoError(t, err)

	res.mu.Lock()
	defer res.mu.Unlock()
	assert.Equal(t, "Bearer secret", res.header.Get("Authorization"))
	require.Len(t, res.requestIDs, 2)
	for _, id := range res.requestIDs {
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "request id %q", id)
	}
	assert.NotEqual(t, res.requestIDs[0], res.requestIDs[1])
}

func TestAdapter_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{nope"))
	}))
	defer srv.Close()

	got, err := New[doc](srv.URL).Read(context.Background())
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, stash.ErrMalformed)

	var storageErr *stash.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, stash.OpRead, storageErr.Op)
	assert.Equal(t, srv.URL, storageErr.Location)
	assert.False(t, storageErr.Retryable())
}

func TestAdapter_StatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		transient  bool
		delay      time.Duration
	}{
		{name: "service unavailable", status: http.StatusServiceUnavailable, retryAfter: "2", transient: true, delay: 2 * time.Second},
		{name: "rate limited", status: http.StatusTooManyRequests, transient: true},
		{name: "internal error", status: http.StatusInternalServerError, transient: true},
		{name: "forbidden", status: http.StatusForbidden, transient: false},
		{name: "bad request", status: http.StatusBadRequest, transient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("boom"))
			}))
			defer srv.Close()

			a := New[doc](srv.URL)

			_, err := a.Read(context.Background())
			var readErr *stash.StorageError
			require.ErrorAs(t, err, &readErr)
			assert.Equal(t, stash.OpRead, readErr.Op)
			assert.Equal(t, tt.transient, readErr.Retryable())
			assert.Equal(t, tt.delay, readErr.RetryAfter())
			assert.Contains(t, readErr.Error(), "boom")

			err = a.Write(context.Background(), &doc{})
			var writeErr *stash.StorageError
			require.ErrorAs(t, err, &writeErr)
			assert.Equal(t, stash.OpWrite, writeErr.Op)
			assert.Equal(t, tt.transient, writeErr.Retryable())
		})
	}
}

func TestAdapter_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New[doc](url).Read(context.Background())
	var storageErr *stash.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.True(t, storageErr.Retryable())
}

func TestAdapter_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(&resource{})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New[doc](srv.URL).Read(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	var storageErr *stash.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.False(t, storageErr.Retryable())
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-5"))
	assert.Equal(t, 3*time.Second, parseRetryAfter(" 3 "))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	d := parseRetryAfter(future)
	assert.Greater(t, d, 58*time.Minute)
	assert.LessOrEqual(t, d, time.Hour)
}
