package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// StatusError reports a non-2xx HTTP response from the provider.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// DelayHint surfaces the server's Retry-After header to the retry policy.
func (e *StatusError) DelayHint() time.Duration {
	return e.RetryAfter
}

// EmptyContentError reports a well-formed completion that carried no usable text.
// Callers treat this as a soft failure rather than a transport problem.
type EmptyContentError struct {
	Model        string
	FinishReason string
	Refusal      string
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf(
		"llm request: empty content from %s (finish_reason=%q, refusal=%q)",
		e.Model,
		e.FinishReason,
		e.Refusal,
	)
}

// IsEmptyContent reports whether err represents an empty model response.
func IsEmptyContent(err error) bool {
	var empty *EmptyContentError
	return errors.As(err, &empty)
}

// IsRetryable classifies provider errors for the retry policy. Timeouts,
// rate limits, and server-side failures are retryable; everything else,
// including empty responses and auth failures, is not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if IsEmptyContent(err) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == 408,
			statusErr.StatusCode == 429,
			statusErr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// url.Error often wraps net.Error types, but keep a conservative
		// retry for transport-level failures anyway.
		return true
	}

	return false
}
