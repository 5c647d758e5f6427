package giterror

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RateLimitError is produced by the HTTP transport when GitHub answers
// with an explicit rate-limit response. Reset carries the server's hint
// for when the limit clears; zero means no hint was present.
type RateLimitError struct {
	Reset time.Time
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return "github rate limit exceeded"
	}
	return fmt.Sprintf("github rate limit exceeded, resets at %s", e.Reset.UTC().Format(time.RFC3339))
}

// ResetHint extracts the rate-limit reset time from an error chain.
// Returns false when the error is not a rate limit or carried no hint.
func ResetHint(err error) (time.Time, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) && !rl.Reset.IsZero() {
		return rl.Reset, true
	}
	return time.Time{}, false
}

// Inspector analyzes GitHub API errors so callers can decide whether to
// retry, abort, or surface a configuration problem.
type Inspector struct{}

// NewInspector creates a new Inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// IsAuthError reports whether the error represents an authentication or
// authorization failure. A 403 that is actually a rate limit is excluded;
// check IsRateLimitError first when both could apply.
func (i *Inspector) IsAuthError(err error) bool {
	if err == nil || i.IsRateLimitError(err) {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "bad credentials") ||
		strings.Contains(errStr, "authentication")
}

// IsNotFoundError reports whether the error means the organization does
// not exist or is not visible to the token.
func (i *Inspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "could not resolve to an organization")
}

// IsRateLimitError reports whether the error is a rate limit response.
func (i *Inspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "secondary limit")
}

// IsTransientError reports whether the error is a network or server-side
// failure expected to resolve on retry.
func (i *Inspector) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "unexpected eof") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// IsRetryable reports whether the error should go through the backoff
// schedule: rate limits and transient failures retry, everything else
// surfaces immediately.
func (i *Inspector) IsRetryable(err error) bool {
	return i.IsRateLimitError(err) || i.IsTransientError(err)
}
