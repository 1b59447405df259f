package security

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/dishgen/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter hands out a token bucket per client key, typically the
// client IP. Idle buckets are evicted by Run.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	logger   *zap.Logger
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing RequestsPerMin per key with
// BurstSize headroom
func NewRateLimiter(cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	burst := cfg.BurstSize
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		burst:    burst,
		idleTTL:  3 * time.Minute,
		logger:   logger.Named("rate-limiter"),
	}
}

// Allow reports whether a request from key may proceed now
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	v, ok := r.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.visitors[key] = v
	}
	v.lastSeen = time.Now()
	r.mu.Unlock()

	return v.limiter.Allow()
}

// Run evicts idle visitors until ctx is cancelled
func (r *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.evictIdle(time.Now()); n > 0 {
				r.logger.Debug("Evicted idle rate limit buckets", zap.Int("count", n))
			}
		}
	}
}

func (r *RateLimiter) evictIdle(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, v := range r.visitors {
		if now.Sub(v.lastSeen) > r.idleTTL {
			delete(r.visitors, key)
			evicted++
		}
	}
	return evicted
}
