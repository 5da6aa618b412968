package retry

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/spetersoncode/stash"
)

// IsTransient determines if an error is transient and should be retried.
// It first checks if the error implements stash.CategorizedError for explicit
// categorization. If not, it falls back to heuristic detection:
// - Network timeouts
// - Connection resets and refusals
// - Temporary DNS failures
// - Busy or locked resources
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Cancellation is the caller's decision, never retried
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ce stash.CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == stash.ErrorTransient
	}

	return isTransientNetworkError(err)
}

// isTransientNetworkError checks for network-level and OS-level transient errors.
func isTransientNetworkError(err error) bool {
	// Check for timeout errors
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Check for URL errors (wrapping network errors)
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && isTransientNetworkError(urlErr.Err) {
			return true
		}
	}

	// Check for DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary()
	}

	// Check for syscall errors (connection reset, busy files, etc.)
	var syscallErr syscall.Errno
	if errors.As(err, &syscallErr) {
		switch syscallErr {
		case syscall.ECONNRESET,
			syscall.ECONNREFUSED,
			syscall.ETIMEDOUT,
			syscall.EAGAIN,
			syscall.EBUSY:
			return true
		}
	}

	// Check for common error message patterns (fallback)
	errMsg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset",
		"connection refused",
		"timeout",
		"temporary failure",
		"service unavailable",
		"too many requests",
		"database is locked",
		"resource busy",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}
