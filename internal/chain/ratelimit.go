package chain

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles RPC traffic per endpoint host with a token bucket.
// Public RPC nodes answer bursts with 429s, so every request goes through Wait.
type RateLimiter struct {
	limiters   map[string]*rate.Limiter
	mu         sync.RWMutex
	rateLimit  rate.Limit
	burstLimit int
}

// NewRateLimiter creates a limiter allowing ratePerSecond requests with burst.
// A non-positive rate disables throttling.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(ratePerSecond)
	if ratePerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		rateLimit:  limit,
		burstLimit: burst,
	}
}

// DefaultRateLimiter allows 5 requests per second with a burst of 10,
// inside the public mainnet-beta limits.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// Unlimited returns a limiter that never blocks.
func Unlimited() *RateLimiter {
	return NewRateLimiter(0, 1)
}

// Allow reports whether a request to endpoint may proceed right now.
func (r *RateLimiter) Allow(endpoint string) bool {
	return r.getLimiter(endpoint).Allow()
}

// Wait blocks until a request to endpoint is allowed or ctx ends.
// A wait that would outlast the ctx deadline fails with context.DeadlineExceeded.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	if err := r.getLimiter(endpoint).Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if _, ok := ctx.Deadline(); ok {
			return context.DeadlineExceeded
		}
		return err
	}
	return nil
}

// EndpointKey reduces an RPC URL to the host it is throttled under.
// API keys in the path or query share one bucket per host.
func EndpointKey(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(endpoint))
	}
	return strings.ToLower(u.Host)
}

func (r *RateLimiter) getLimiter(endpoint string) *rate.Limiter {
	key := EndpointKey(endpoint)

	r.mu.RLock()
	limiter, exists := r.limiters[key]
	r.mu.RUnlock()

	if exists {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter, exists = r.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(r.rateLimit, r.burstLimit)
	r.limiters[key] = limiter
	return limiter
}
