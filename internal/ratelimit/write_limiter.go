package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/transnet/rms/internal/config"
)

const keyWriteActor = "rms:write:%s:%s"

// WriteLimiter throttles mutating requests per actor and endpoint. A nil
// limiter allows everything; the server treats it as disabled.
type WriteLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewWriteLimiter(cfg config.Config) (*WriteLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.WriteRate <= 0 || limitCfg.WriteBurst <= 0 {
		return nil, errors.New("write rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &WriteLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.WriteRate,
		burst:  limitCfg.WriteBurst,
	}, nil
}

func (l *WriteLimiter) Allow(ctx context.Context, actor, endpoint string) (*RateLimitResult, error) {
	if l == nil {
		return &RateLimitResult{Allowed: true}, nil
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = "anonymous"
	}
	key := fmt.Sprintf(keyWriteActor, actor, endpoint)
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}
