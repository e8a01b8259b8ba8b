package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	base    Generator
	limiter *rate.Limiter
}

// RateLimited paces calls to base at perMinute with the given burst.
// A non-positive perMinute returns base unchanged.
func RateLimited(base Generator, perMinute float64, burst int) Generator {
	if base == nil || perMinute <= 0 {
		return base
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimited{
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(perMinute/60.0), burst),
	}
}

func (r *rateLimited) Generate(ctx context.Context, prompt string) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("llm rate limit wait: %w", err)
	}
	return r.base.Generate(ctx, prompt)
}
