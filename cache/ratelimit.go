package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const RateLimitRedisKey = "rate_limit"

// RateLimiter counts requests per client in fixed one-minute windows backed
// by redis, so the limit holds across process restarts and replicas. Window
// keys expire on their own; no cleanup task is needed.
type RateLimiter struct {
	redisClient *redis.Client
	maxRequests int
	window      time.Duration
}

func NewRateLimiter(redisConnection *redis.Client, maxRequests int) *RateLimiter {
	return &RateLimiter{
		redisClient: redisConnection,
		maxRequests: maxRequests,
		window:      time.Minute,
	}
}

// Allow reports whether the client identified by clientID may proceed. On a
// redis failure the request is allowed; throttling is best-effort.
func (l *RateLimiter) Allow(ctx context.Context, clientID string) bool {
	if l.maxRequests <= 0 {
		return true
	}

	windowStart := time.Now().Truncate(l.window).Unix()
	key := fmt.Sprintf("%s:%s:%d", RateLimitRedisKey, clientID, windowStart)

	count, err := l.redisClient.Incr(ctx, key).Result()
	if err != nil {
		log.Warningf("Error updating rate limit counter: %v", err)
		return true
	}
	if count == 1 {
		l.redisClient.Expire(ctx, key, 2*l.window)
	}
	return count <= int64(l.maxRequests)
}
