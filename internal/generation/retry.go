package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// DefaultMaxRetryDelay caps a single backoff wait.
	DefaultMaxRetryDelay = 30 * time.Second

	retryJitterPercent = 50
)

// Retrying is a Generator that retries failures wrapping ErrTransientFailure
// with exponential backoff and jitter. Other failures are returned at once.
type Retrying struct {
	next       Generator
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *slog.Logger
}

// NewRetrying wraps next. A maxRetries of zero disables retrying; a
// non-positive baseDelay is raised to one millisecond.
func NewRetrying(next Generator, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Retrying {
	if maxRetries < 0 {
		logger.Warn("invalid max retries value, using 0", "max_retries", maxRetries)
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = time.Millisecond
	}
	return &Retrying{
		next:       next,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   DefaultMaxRetryDelay,
		logger:     logger.With("component", "retrying_generator"),
	}
}

// Generate calls the wrapped Generator until it succeeds, fails permanently,
// runs out of retries or ctx is done.
func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	b := retry.NewExponential(r.baseDelay)
	b = retry.WithJitterPercent(retryJitterPercent, b)
	b = retry.WithCappedDuration(r.maxDelay, b)
	b = retry.WithMaxRetries(uint64(r.maxRetries), b)

	var (
		reply   string
		attempt int
	)
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		out, err := r.next.Generate(ctx, prompt)
		if err == nil {
			reply = out
			return nil
		}

		if !errors.Is(err, ErrTransientFailure) {
			return err
		}

		r.logger.WarnContext(ctx, "transient generation failure",
			"attempt", attempt,
			"max_attempts", r.maxRetries+1,
			"error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		if errors.Is(err, ErrTransientFailure) && attempt > 1 {
			return "", fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}
		return "", err
	}

	if attempt > 1 {
		r.logger.InfoContext(ctx, "generation succeeded after retry", "attempt", attempt)
	}
	return reply, nil
}
