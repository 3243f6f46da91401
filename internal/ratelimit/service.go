package ratelimit

import (
	"adledger-server/internal/clients/redis"
	"adledger-server/internal/config"
	"adledger-server/internal/observability"
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxLocalClients = 10000

// RateLimitResult represents the result of a rate limit check
type RateLimitResult struct {
	Allowed      bool      `json:"allowed"`
	Limit        int       `json:"limit"`
	Remaining    int       `json:"remaining"`
	ResetAt      time.Time `json:"reset_at"`
	RetryAfterMs int       `json:"retry_after_ms,omitempty"`
}

// Service throttles public API requests per client key
type Service struct {
	redis  *redis.Client
	logger *observability.Logger

	limit rate.Limit
	burst int
	// window is how long burst requests take to drain at the sustained rate
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewService creates a new rate limiting service. A nil or disabled Redis
// client keeps all state in process.
func NewService(redis *redis.Client, cfg config.RateLimitConfig, logger *observability.Logger) *Service {
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(math.Ceil(cfg.RequestsPerSecond))
	}
	if burst <= 0 {
		burst = 1
	}
	window := time.Second
	if cfg.RequestsPerSecond > 0 {
		window = time.Duration(float64(burst) / cfg.RequestsPerSecond * float64(time.Second))
	}
	return &Service{
		redis:    redis,
		logger:   logger,
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    burst,
		window:   window,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

// CheckRateLimit records one request for key.
// Uses Redis for distributed limiting, falls back to an in-process token bucket
func (s *Service) CheckRateLimit(ctx context.Context, key string) (RateLimitResult, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "client_key", Value: key},
	)

	if s.redis.IsEnabled() {
		result, err := s.checkRateLimitRedis(ctx, key)
		if err != nil {
			s.logger.WarnWithError(ctx, "Redis rate limit check failed, falling back to in-process limiter", err)
			return s.checkRateLimitLocal(key), nil
		}
		return result, nil
	}

	return s.checkRateLimitLocal(key), nil
}

// checkRateLimitRedis allows burst requests per sliding window
func (s *Service) checkRateLimitRedis(ctx context.Context, key string) (RateLimitResult, error) {
	now := s.now()
	hit, err := s.redis.SlidingWindowHit(ctx, "rl:"+key, s.burst, s.window, now)
	if err != nil {
		return RateLimitResult{}, err
	}

	resetAt := hit.Oldest.Add(s.window)
	result := RateLimitResult{
		Allowed:   hit.Allowed,
		Limit:     s.burst,
		Remaining: max(s.burst-int(hit.Count), 0),
		ResetAt:   resetAt,
	}
	if !hit.Allowed {
		result.RetryAfterMs = max(int(resetAt.Sub(now).Milliseconds()), 1)
	}
	return result, nil
}

// checkRateLimitLocal uses a token bucket per key
func (s *Service) checkRateLimitLocal(key string) RateLimitResult {
	now := s.now()
	limiter := s.getLimiter(key)

	reservation := limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
		return RateLimitResult{
			Allowed:      false,
			Limit:        s.burst,
			Remaining:    0,
			ResetAt:      now.Add(delay),
			RetryAfterMs: max(int(delay.Milliseconds()), 1),
		}
	}

	remaining := int(limiter.TokensAt(now))
	return RateLimitResult{
		Allowed:   true,
		Limit:     s.burst,
		Remaining: max(remaining, 0),
		ResetAt:   now.Add(s.window),
	}
}

func (s *Service) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = limiter
	}
	return limiter
}

// Cleanup drops every in-process limiter once the map grows past its cap
func (s *Service) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.limiters) > maxLocalClients {
		s.limiters = make(map[string]*rate.Limiter)
	}
}

// StartCleanup runs Cleanup every interval until ctx is done
func (s *Service) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}
