package generation

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited is a Generator that spaces calls to stay under a per-minute quota.
type RateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a limiter allowing perMinute calls per minute.
// A non-positive perMinute returns next unchanged.
func NewRateLimited(next Generator, perMinute int) Generator {
	if perMinute <= 0 {
		return next
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

// Generate waits for the limiter, then calls the wrapped Generator.
func (r *RateLimited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return r.next.Generate(ctx, prompt)
}
