package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// tokenBucket refills at rate tokens per second up to capacity and
// returns {allowed, remaining, retry_after_seconds}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'updated_at')
local tokens = tonumber(bucket[1])
local updated_at = tonumber(bucket[2])

if tokens == nil or updated_at == nil then
    tokens = capacity
    updated_at = now
end

local elapsed = math.max(0, now - updated_at)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
local retry_after = 0

if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
else
    retry_after = (requested - tokens) / rate
end

redis.call('HMSET', key, 'tokens', tokens, 'updated_at', now)
redis.call('EXPIRE', key, 3600)

return {allowed, math.floor(tokens), math.ceil(retry_after)}
`)

// RateLimit throttles per client IP with a Redis token bucket of capacity
// 2*qps. Redis failures let the request through.
func RateLimit(client *redis.Client, qps int, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		if client == nil || qps <= 0 {
			c.Next()
			return
		}
		capacity := 2 * qps
		now := float64(time.Now().UnixNano()) / 1e9
		key := "rate_limit:" + c.ClientIP()

		res, err := tokenBucket.Run(c.Request.Context(), client, []string{key}, capacity, qps, now, 1).Int64Slice()
		if err != nil || len(res) < 3 {
			logger.WarnContext(c.Request.Context(), "rate limit unavailable", "err", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(capacity))
		if res[0] == 0 {
			c.Header("Retry-After", strconv.FormatInt(res[2], 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later"})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
		c.Next()
	}
}
