package stash

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingAdapter is returned by New when no adapter is supplied.
var ErrMissingAdapter = errors.New("stash: missing adapter")

// ErrMalformed is wrapped by read errors whose stored content could not be decoded.
var ErrMalformed = errors.New("malformed content")

// Op names the adapter operation that failed.
type Op string

const (
	// OpRead identifies Adapter.Read.
	OpRead Op = "read"

	// OpWrite identifies Adapter.Write.
	OpWrite Op = "write"
)

// ErrorCategory classifies errors by how they should be handled.
type ErrorCategory string

const (
	// ErrorTransient indicates the failure is temporary and the operation can be retried.
	// Examples: a locked database, a 503 from a remote medium, a network timeout.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent indicates the failure is not recoverable through retry.
	// Examples: permission denied, invalid path, malformed content.
	ErrorPermanent ErrorCategory = "permanent"
)

// CategorizedError is an error that reports how it should be handled.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool          // convenience: returns true if Category == ErrorTransient
	RetryAfter() time.Duration // suggested retry delay from the medium, 0 if not available
}

// StorageError is returned by adapters when the medium cannot be read or written.
type StorageError struct {
	Op       Op
	Location string // file path, document name or URL
	Cat      ErrorCategory
	Err      error // underlying error

	// RetryDelay is a delay suggested by the medium (e.g. an HTTP Retry-After header).
	RetryDelay time.Duration
}

// Error returns the error message.
func (e *StorageError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("stash: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("stash: %s %s: %v", e.Op, e.Location, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Category returns the error category. An unset category is permanent.
func (e *StorageError) Category() ErrorCategory {
	if e.Cat == "" {
		return ErrorPermanent
	}
	return e.Cat
}

// Retryable returns true if the error is transient.
func (e *StorageError) Retryable() bool {
	return e.Category() == ErrorTransient
}

// RetryAfter returns the suggested retry delay, or 0 if not available.
func (e *StorageError) RetryAfter() time.Duration {
	return e.RetryDelay
}

// NewStorageError creates a permanent storage error.
func NewStorageError(op Op, location string, err error) *StorageError {
	return &StorageError{
		Op:       op,
		Location: location,
		Cat:      ErrorPermanent,
		Err:      err,
	}
}

// NewTransientStorageError creates a storage error that can be retried.
func NewTransientStorageError(op Op, location string, err error) *StorageError {
	return &StorageError{
		Op:       op,
		Location: location,
		Cat:      ErrorTransient,
		Err:      err,
	}
}

// NewMalformedError creates a read error for content that failed to decode.
func NewMalformedError(location string, err error) *StorageError {
	return NewStorageError(OpRead, location, fmt.Errorf("%w: %w", ErrMalformed, err))
}

var _ CategorizedError = (*StorageError)(nil)
