package store

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"retroboard/metrics"
	"retroboard/models"
)

// RetryConfig controls the backoff wrapper around remote store calls.
// Waits grow as BaseDelay * 2^(attempt-1); Jitter adds up to that fraction
// of the computed wait on top, so parallel retries do not line up.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      float64
}

var (
	// ReadRetry covers the regular read and write paths.
	ReadRetry = RetryConfig{MaxAttempts: 3, BaseDelay: 300 * time.Millisecond}

	// AdminRetry covers category mutations, which all contend on the one
	// settings document.
	AdminRetry = RetryConfig{MaxAttempts: 5, BaseDelay: 500 * time.Millisecond, Jitter: 0.25}
)

// Budget sums the worst-case waits between attempts, jitter included.
// Callers size request deadlines above it so the final attempt is never
// cut off by the surrounding context.
func (c RetryConfig) Budget() time.Duration {
	var total time.Duration
	for attempt := 1; attempt < c.MaxAttempts; attempt++ {
		delay := c.BaseDelay << (attempt - 1)
		delay += time.Duration(c.Jitter * float64(delay))
		total += delay
	}
	return total
}

// WithRetry runs op up to cfg.MaxAttempts times.
//
// Not-found and conflict errors pass through untouched on the first
// attempt so repositories can translate them. A missing-index error is a
// deployment problem, not a transient fault: it is returned immediately as
// a config error without burning the retry budget. Everything else —
// including quota exhaustion — is retried until the ceiling, after which
// transient failures surface as a generic "try again later".
func WithRetry[T any](ctx context.Context, cfg RetryConfig, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		// Application errors surfacing through op are final; only raw
		// driver errors are candidates for another attempt.
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return zero, err
		}

		kind := Classify(err)
		switch kind {
		case KindConfig:
			return zero, models.NewConfigError(
				"query requires a database index that is not configured", err)
		case KindNotFound, KindConflict:
			return zero, err
		}

		if attempt == cfg.MaxAttempts {
			break
		}
		metrics.RetryAttempts.Inc()

		delay := cfg.BaseDelay << (attempt - 1)
		if cfg.Jitter > 0 {
			delay += time.Duration(rand.Float64() * cfg.Jitter * float64(delay))
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	if k := Classify(lastErr); k == KindTransient || k == KindExhausted {
		return zero, models.NewUnavailableError(lastErr)
	}
	return zero, lastErr
}
