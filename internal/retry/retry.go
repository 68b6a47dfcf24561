package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second
	defaultMultiplier  = 2.0
	defaultMaxDelay    = 30 * time.Second
)

// Policy describes a bounded retry loop with exponential backoff.
//
// Retryable decides whether a failure is worth another attempt; when nil,
// every error except context cancellation is retried. DelayHint errors can
// override the computed backoff (used for HTTP Retry-After).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	Retryable   func(error) bool

	// Sleeper overrides how delays are performed (useful for tests).
	Sleeper func(time.Duration)
}

// DelayHinter lets errors carry a server-suggested retry delay.
type DelayHinter interface {
	DelayHint() time.Duration
}

// Default returns the repository default retry policy.
func Default() Policy {
	return Policy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
		Multiplier:  defaultMultiplier,
		MaxDelay:    defaultMaxDelay,
	}
}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// delay computes the backoff before the next attempt. attempt is 1-based:
// attempt 1 -> base, attempt 2 -> base*multiplier, and so on, capped at MaxDelay.
func (p Policy) delay(attempt int, err error) time.Duration {
	var hinter DelayHinter
	if errors.As(err, &hinter) {
		if hint := hinter.DelayHint(); hint > 0 {
			return p.cap(hint)
		}
	}

	base := p.BaseDelay
	if base < 0 {
		base = 0
	} else if base == 0 {
		base = defaultBaseDelay
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	delay := base
	for i := 1; i < attempt; i++ {
		next := time.Duration(float64(delay) * multiplier)
		if next <= delay && multiplier > 1 {
			// overflow guard
			return p.cap(p.maxDelay())
		}
		delay = next
		if delay >= p.maxDelay() {
			break
		}
	}
	return p.cap(delay)
}

func (p Policy) maxDelay() time.Duration {
	if p.MaxDelay > 0 {
		return p.MaxDelay
	}
	return defaultMaxDelay
}

func (p Policy) cap(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if max := p.maxDelay(); delay > max {
		return max
	}
	return delay
}

// Do runs fn under the policy, returning its value on the first success.
// Non-retryable errors propagate immediately; once attempts are exhausted
// the last error is returned wrapped with the operation name.
func Do[T any](ctx context.Context, policy Policy, logger *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if ctx == nil {
		return zero, errors.New("retry: nil context")
	}

	attempts := policy.attempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if !policy.retryable(err) {
			// Cancellation is the caller's doing, not a failure worth a log.
			if logger != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				logger.Error("non-retryable error",
					slog.String("op", op),
					slog.Int("attempt", attempt),
					slog.Any("error", err),
				)
			}
			return zero, err
		}
		if attempt >= attempts {
			break
		}

		delay := policy.delay(attempt, err)
		if logger != nil {
			logger.Warn("attempt failed, retrying",
				slog.String("op", op),
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", attempts),
				slog.Duration("delay", delay),
				slog.Any("error", err),
			)
		}
		if err := sleep(ctx, policy, delay); err != nil {
			return zero, err
		}
	}

	if logger != nil {
		logger.Error("attempts exhausted",
			slog.String("op", op),
			slog.Int("attempts", attempts),
			slog.Any("error", lastErr),
		)
	}
	return zero, fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func sleep(ctx context.Context, policy Policy, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if policy.Sleeper != nil {
		policy.Sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
