package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// limiterKey prefers the authenticated operator over the client address.
func limiterKey(c *gin.Context) string {
	if id := c.GetString("oid"); id != "" {
		return "op:" + id
	}
	return "ip:" + c.ClientIP()
}

// RateLimit is an in-process token bucket allowing burst requests and refilling
// at limit per window.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return newMemoryLimiter(limit, window).handle
}

type bucket struct {
	tokens float64
	last   time.Time
}

// memoryLimiter drops buckets idle for longer than window; such a bucket would
// have refilled completely anyway.
type memoryLimiter struct {
	limit     int
	window    time.Duration
	refill    float64
	now       func() time.Time
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newMemoryLimiter(limit int, window time.Duration) *memoryLimiter {
	return &memoryLimiter{
		limit:   limit,
		window:  window,
		refill:  float64(limit) / window.Seconds(),
		now:     time.Now,
		buckets: map[string]*bucket{},
	}
}

func (l *memoryLimiter) allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastSweep) >= l.window {
		for k, b := range l.buckets {
			if now.Sub(b.last) > l.window {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}
	b := l.buckets[key]
	if b == nil {
		b = &bucket{tokens: float64(l.limit), last: now}
		l.buckets[key] = b
	}
	b.tokens = minFloat(float64(l.limit), b.tokens+now.Sub(b.last).Seconds()*l.refill)
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *memoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *memoryLimiter) handle(c *gin.Context) {
	if !l.allow(limiterKey(c)) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
		return
	}
	c.Next()
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

const slidingWindowLua = `
local key = KEYS[1]
local window = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local current = redis.call('ZCARD', key)
if current < limit then
  redis.call('ZADD', key, now, member)
  redis.call('PEXPIRE', key, window)
  return {1, limit - current - 1}
end
return {0, 0}`

// RedisRateLimit is a sliding-window limiter shared by every API instance. When
// Redis cannot answer the in-process limiter decides instead.
func RedisRateLimit(client *redis.Client, prefix string, limit int, window time.Duration) gin.HandlerFunc {
	fallback := RateLimit(limit, window)
	var seq uint64
	var mu sync.Mutex
	return func(c *gin.Context) {
		if client == nil {
			fallback(c)
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 200*time.Millisecond)
		defer cancel()

		now := time.Now().UnixMilli()
		mu.Lock()
		seq++
		member := fmt.Sprintf("%d-%d", now, seq)
		mu.Unlock()

		key := fmt.Sprintf("rate_limit:%s:%s", prefix, limiterKey(c))
		res, err := client.Eval(ctx, slidingWindowLua, []string{key}, window.Milliseconds(), limit, now, member).Int64Slice()
		if err != nil || len(res) < 2 {
			fallback(c)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
		if res[0] == 0 {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}
		c.Next()
	}
}
