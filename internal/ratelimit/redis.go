package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lua script for an atomic fixed-window check
const windowLuaScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])

local current = tonumber(redis.call("GET", key) or "0")
if current + 1 > limit then
    return {0, current}
end

local newVal = redis.call("INCRBY", key, 1)
if newVal == 1 then
    redis.call("EXPIRE", key, ttl)
end
return {1, newVal}
`

// RedisLimiter shares windows across every instance using the same Redis.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(windowLuaScript),
		limit:  limit,
		window: window,
		prefix: "ratelimit:http",
		now:    time.Now,
	}
}

// NewRedisLimiterFromURL connects to Redis and verifies the connection.
func NewRedisLimiterFromURL(ctx context.Context, redisURL string, limit int, window time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	log.Printf("[RateLimiter] Connected to Redis at %s", opts.Addr)
	return NewRedisLimiter(client, limit, window), nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowSecs := int64(l.window / time.Second)
	if windowSecs < 1 {
		windowSecs = 1
	}
	bucket := l.now().Unix() / windowSecs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	result, err := l.script.Run(ctx, l.client, []string{redisKey}, l.limit, windowSecs).Slice()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}
	allowed, ok := result[0].(int64)
	if !ok {
		return false, fmt.Errorf("rate limit check: unexpected reply %v", result)
	}
	return allowed == 1, nil
}

// Close releases the Redis client.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
