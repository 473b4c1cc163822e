package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/coopfoods/ajomart/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// LoginLimiter throttles PIN login attempts per client IP. A nil limiter
// (redis disabled) allows everything; brute-force protection then falls to
// the deployment edge.
type LoginLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewLoginLimiter(cfg config.Config) (*LoginLimiter, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("redis addr is required when redis is enabled")
	}
	if cfg.LoginRateLimit.Rate <= 0 || cfg.LoginRateLimit.Burst <= 0 {
		return nil, errors.New("login rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return &LoginLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.LoginRateLimit.Rate,
		burst:  cfg.LoginRateLimit.Burst,
	}, nil
}

// Allow reports whether one more login attempt from this client may
// proceed. Limiter errors fail open: a redis outage must not lock every
// member out.
func (l *LoginLimiter) Allow(ctx context.Context, clientIP string) (bool, time.Duration) {
	if l == nil || l.bucket == nil {
		return true, 0
	}

	result, err := l.bucket.Allow(ctx, "login:"+clientIP, l.rate, l.burst)
	if err != nil {
		return true, 0
	}
	return result.Allowed, result.RetryAfter
}

var Module = fx.Module("ratelimit",
	fx.Provide(NewLoginLimiter),
)
