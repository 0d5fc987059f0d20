package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// counter is the part of the redis client the limiter uses
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

type RateLimiter struct {
	redisClient counter
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{redisClient: client}
}

// Limit allows limit requests per client IP per window. When redis is
// unreachable requests pass.
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl == nil || rl.redisClient == nil || limit <= 0 {
			return c.Next()
		}
		ctx := c.UserContext()
		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, c.IP())

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			return c.Next()
		}

		// First hit in the window starts the clock
		if count == 1 {
			rl.redisClient.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			ttl, _ := rl.redisClient.TTL(ctx, key).Result()
			seconds := int(math.Ceil(ttl.Seconds()))
			if seconds < 1 {
				seconds = int(window.Seconds())
			}
			c.Set(fiber.HeaderRetryAfter, fmt.Sprint(seconds))
			return JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many requests. Please try again later.", fiber.Map{
				"retry_after": seconds,
			})
		}
		return c.Next()
	}
}
