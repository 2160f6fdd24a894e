package hmrc

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior with exponential backoff.
type RetryConfig struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	BackoffFactor  float64
	JitterFraction float64 // 0.0 to 1.0, fraction of delay to randomize
}

// DefaultRetryConfig suits the authority's throttling and transient 5xx responses.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialDelay:   500 * time.Millisecond,
	MaxDelay:       8 * time.Second,
	BackoffFactor:  2.0,
	JitterFraction: 0.2,
}

// ShouldRetry decides whether err permits another attempt.
// An error response classified retryable means the authority did not apply the request, so any
// method may be resent. A transport error leaves the outcome unknown, so only idempotent calls
// are resent.
func ShouldRetry(err error, idempotent bool) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return idempotent
	}
	return false
}

// WithRetry executes fn with exponential backoff + jitter.
// It stops when ShouldRetry refuses, the context is cancelled, or max retries are exhausted.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, idempotent bool, fn func(ctx context.Context) (T, error)) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !ShouldRetry(err, idempotent) || attempt >= cfg.MaxRetries {
			break
		}

		delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))
		if delay > float64(cfg.MaxDelay) {
			delay = float64(cfg.MaxDelay)
		}
		if cfg.JitterFraction > 0 {
			delay += delay * cfg.JitterFraction * (rand.Float64()*2 - 1)
			if delay < 0 {
				delay = float64(cfg.InitialDelay)
			}
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(delay)):
		}
	}

	return zero, lastErr
}
