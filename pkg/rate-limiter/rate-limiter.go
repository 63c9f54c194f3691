package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "cards:ratelimit:"

// RateLimiter keeps one token bucket per client IP in memory and mirrors the
// remaining burst to Redis so a restarted instance does not hand out a fresh
// bucket to a client that just exhausted it.
type RateLimiter struct {
	client   redis.Cmdable
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	ttl      time.Duration
}

func NewRateLimiter(client redis.Cmdable, rps float64, burst int, ttl time.Duration) *RateLimiter {
	if client == nil {
		zap.L().Error("Redis client passed to NewRateLimiter is nil")
		panic("Redis client passed to NewRateLimiter is nil")
	}

	if ttl <= 0 {
		ttl = 5 * time.Minute
		zap.L().Warn("Invalid TTL provided to NewRateLimiter, defaulting", zap.Duration("default_ttl", ttl))
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		client:   client,
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
	}
}

func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[key]; exists {
		return limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	remaining, err := rl.client.Get(ctx, keyPrefix+key).Int()
	switch {
	case err == nil && remaining >= 0 && remaining < rl.burst:
		// Drain what the previous bucket had already spent.
		limiter.AllowN(time.Now(), rl.burst-remaining)
		zap.L().Debug("Initializing limiter from Redis state",
			zap.String("key", key),
			zap.Int("remaining", remaining),
		)
	case err != nil && !errors.Is(err, redis.Nil):
		zap.L().Error("Error getting rate limit state from Redis", zap.String("key", key), zap.Error(err))
	}

	rl.limiters[key] = limiter

	time.AfterFunc(rl.ttl, func() {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		zap.L().Debug("Removing limiter from memory due to TTL", zap.String("key", key))
		delete(rl.limiters, key)
	})

	return limiter
}

func (rl *RateLimiter) persist(key string, lim *rate.Limiter) {
	remaining := int(lim.Tokens())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := rl.client.Set(ctx, keyPrefix+key, remaining, rl.ttl).Err(); err != nil {
			zap.L().Error("Error setting rate limit state to Redis", zap.String("key", key), zap.Error(err))
		}
	}()
}

func (rl *RateLimiter) RateLimitMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()

		if key == "" {
			zap.L().Warn("Rate limiter cannot determine client IP address")
			return fiber.NewError(fiber.StatusForbidden, "Access Forbidden: Cannot identify client.")
		}

		limiter := rl.GetLimiter(key)
		allowed := limiter.Allow()
		rl.persist(key, limiter)

		if !allowed {
			zap.L().Warn("Rate limit exceeded", zap.String("ip", key))
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		}

		return c.Next()
	}
}
