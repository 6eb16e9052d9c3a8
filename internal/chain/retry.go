// Package chain holds the transport helpers shared by the Solana client:
// bounded retry for read-only RPC calls, a per-endpoint throttle and a
// confirmation poller.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// Sentinel errors for retry logic.
var (
	ErrRetryable = &dropperr.DropError{
		Code:     "RETRYABLE_ERROR",
		Message:  "retryable error",
		ExitCode: dropperr.ExitGeneral,
	}

	ErrRateLimited = &dropperr.DropError{
		Code:     "RATE_LIMITED",
		Message:  "rpc node rate limited the request",
		ExitCode: dropperr.ExitGeneral,
	}
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Maximum number of attempts (including initial)
	BaseDelay   time.Duration // Initial delay between retries
	MaxDelay    time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns the retry configuration used for RPC reads.
// 4 attempts total with delays of roughly 250ms, 500ms, 1s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// Retry runs a read-only operation with the default configuration.
// Never use it around transaction submission: a resend can double-spend.
func Retry[T any](ctx context.Context, operation func(context.Context) (T, error)) (T, error) {
	return RetryWithConfig(ctx, DefaultRetryConfig(), operation)
}

// RetryWithConfig runs operation until it succeeds, fails with a
// non-retryable error, exhausts cfg.MaxAttempts or ctx ends.
func RetryWithConfig[T any](ctx context.Context, cfg RetryConfig, operation func(context.Context) (T, error)) (T, error) {
	var result T
	var err error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}

		result, err = operation(ctx)
		if err == nil {
			return result, nil
		}

		if !IsRetryable(err) {
			return result, err
		}

		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(calculateDelay(attempt, cfg.BaseDelay, cfg.MaxDelay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}

	return result, fmt.Errorf("rpc call failed after %d attempts: %w", attempts, err)
}

// calculateDelay returns the backoff for attempt with jitter in [delay/2, delay).
func calculateDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := baseDelay << attempt
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + rand.N(half) //nolint:gosec // G404: jitter does not need crypto randomness
}

// transientMarkers are fragments of transport and node errors that clear up on their own.
var transientMarkers = []string{
	"429",
	"too many requests",
	"502",
	"503",
	"504",
	"connection reset",
	"connection refused",
	"unexpected eof",
	"node is behind",
	"i/o timeout",
}

// IsRetryable reports whether err should trigger another attempt.
// Context cancellation and deadline errors are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRetryable) || errors.Is(err, ErrRateLimited) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// WrapRetryable marks err as retryable.
func WrapRetryable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRetryable, err)
}
