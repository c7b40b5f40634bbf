package fetch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"joblens/internal/config"
)

// RateLimiter throttles outbound requests per backend so that parallel
// workers hitting the same upstream share one budget.
type RateLimiter struct {
	cfg      *config.Config
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

// NewRateLimiter creates a rate limiter using the configured requests
// per minute budget.
func NewRateLimiter(cfg *config.Config) *RateLimiter {
	return &RateLimiter{
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the backend may issue its next request, or until the
// context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context, backend string) error {
	return rl.limiterFor(backend).Wait(ctx)
}

func (rl *RateLimiter) limiterFor(backend string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if lim, ok := rl.limiters[backend]; ok {
		return lim
	}

	perMinute := rl.cfg.Fetch.RateLimit
	if perMinute <= 0 {
		perMinute = 30
	}
	lim := rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
	rl.limiters[backend] = lim
	return lim
}
