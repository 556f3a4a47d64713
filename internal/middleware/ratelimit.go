package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/organivo/organivo/internal/types"
	"github.com/redis/go-redis/v9"
)

// RateLimiter implements sliding-window limiting over Redis sorted sets.
// It guards the public auth endpoints against brute forcing; the rest of
// the API is left alone.
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current = redis.call('ZCARD', key)

	if current < limit then
		local counter = redis.call('INCR', key .. ':counter')
		redis.call('ZADD', key, now, now .. ':' .. counter)
		redis.call('PEXPIRE', key, window_ms)
		redis.call('PEXPIRE', key .. ':counter', window_ms)
		return 1
	end

	return 0
`)

// Allow reports whether another request under key fits in the window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixMilli()
	windowStart := now - rl.window.Milliseconds()
	redisKey := rl.prefix + key

	allowed, err := slidingWindowScript.Run(ctx, rl.client,
		[]string{redisKey},
		now, windowStart, rl.limit, rl.window.Milliseconds(),
	).Int()

	if err != nil {
		return false, fmt.Errorf("rate limit check for %s: %w", key, err)
	}

	return allowed == 1, nil
}

// RateLimit applies the limiter per client IP. Redis errors fail open so a
// broken limiter never locks out legitimate logins.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		allowed, err := rl.Allow(ctx.Request.Context(), ctx.ClientIP())

		if err != nil {
			log.Printf("Rate limiter unavailable: %v", err)
			ctx.Next()
			return
		}

		if !allowed {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, types.APIResponse{
				Success: false,
				Message: "Too many requests, please try again later",
			})
			return
		}

		ctx.Next()
	}
}
