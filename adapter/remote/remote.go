// Package remote provides a stash adapter backed by a single HTTP resource.
//
// Read issues GET, Write issues PUT with the encoded value, and writing an
// absent value issues DELETE. A 404 or 204 response, or an empty body, reads
// as absent.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spetersoncode/stash"
	"github.com/spetersoncode/stash/codec"
	"github.com/spetersoncode/stash/internal/retry"
)

// RequestIDHeader carries a fresh identifier on every request.
const RequestIDHeader = "X-Request-Id"

// maxErrorBody bounds how much of an error response is quoted in errors.
const maxErrorBody = 512

// Adapter stores a value of type T at a URL.
type Adapter[T any] struct {
	url    string
	client *http.Client
	codec  codec.Codec
	header http.Header
}

// Option configures an Adapter.
type Option func(*options)

type options struct {
	client *http.Client
	codec  codec.Codec
	header http.Header
}

// WithHTTPClient sets the HTTP client (default: a client with a 30s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithCodec sets the body serialization format (default compact JSON).
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithHeader adds a header sent with every request, e.g. Authorization.
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.header.Add(key, value)
	}
}

// New creates an adapter for the resource at url.
func New[T any](url string, opts ...Option) *Adapter[T] {
	o := &options{
		client: &http.Client{Timeout: 30 * time.Second},
		codec:  codec.JSON{},
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Adapter[T]{
		url:    url,
		client: o.client,
		codec:  o.codec,
		header: o.header,
	}
}

// URL returns the resource location.
func (a *Adapter[T]) URL() string {
	return a.url
}

// Read fetches and decodes the resource.
func (a *Adapter[T]) Read(ctx context.Context) (*T, error) {
	resp, err := a.do(ctx, stash.OpRead, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, a.statusError(stash.OpRead, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, a.transportError(stash.OpRead, err)
	}
	data, err := codec.Decode[T](a.codec, body)
	if err != nil {
		return nil, stash.NewMalformedError(a.url, err)
	}
	return data, nil
}

// Write replaces the resource with the encoded value, or deletes it when
// data is nil.
func (a *Adapter[T]) Write(ctx context.Context, data *T) error {
	method := http.MethodPut
	var body []byte
	if data == nil {
		method = http.MethodDelete
	} else {
		raw, err := codec.Encode(a.codec, data)
		if err != nil {
			return stash.NewStorageError(stash.OpWrite, a.url, err)
		}
		body = raw
	}

	resp, err := a.do(ctx, stash.OpWrite, method, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if method == http.MethodDelete && resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return a.statusError(stash.OpWrite, resp)
	}
	return nil
}

func (a *Adapter[T]) do(ctx context.Context, op stash.Op, method string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.url, reader)
	if err != nil {
		return nil, stash.NewStorageError(op, a.url, err)
	}
	for key, values := range a.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set(RequestIDHeader, uuid.New().String())
	req.Header.Set("Accept", contentType(a.codec))
	if body != nil {
		req.Header.Set("Content-Type", contentType(a.codec))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, a.transportError(op, err)
	}
	return resp, nil
}

func (a *Adapter[T]) transportError(op stash.Op, err error) *stash.StorageError {
	if retry.IsTransient(err) {
		return stash.NewTransientStorageError(op, a.url, err)
	}
	return stash.NewStorageError(op, a.url, err)
}

// statusError converts a non-2xx response. Rate limits and server errors
// are transient; everything else is permanent.
func (a *Adapter[T]) statusError(op stash.Op, resp *http.Response) *stash.StorageError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))

	if !isTransientStatusCode(resp.StatusCode) {
		return stash.NewStorageError(op, a.url, err)
	}
	storageErr := stash.NewTransientStorageError(op, a.url, err)
	storageErr.RetryDelay = parseRetryAfter(resp.Header.Get("Retry-After"))
	return storageErr
}

// isTransientStatusCode checks if an HTTP status code indicates a transient error.
func isTransientStatusCode(code int) bool {
	// 429 = Rate Limited
	if code == http.StatusTooManyRequests {
		return true
	}
	// 5xx = Server Errors
	return code >= 500 && code < 600
}

// parseRetryAfter reads a Retry-After header in either seconds or HTTP-date form.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func contentType(c codec.Codec) string {
	switch c.Name() {
	case "yaml":
		return "application/yaml"
	case "json":
		return "application/json"
	}
	return "application/octet-stream"
}

var _ stash.Adapter[struct{}] = (*Adapter[struct{}])(nil)
