package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	EnableEmailThrottle bool
	EnableIPThrottle    bool
	MaxAttempts         int
	Window              time.Duration
	KeyPrefix           string
}

// Limiter enforces per-email and per-IP login throttles using Redis
// counters. A nil *Limiter is valid and performs no throttling.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
// Returns nil when both throttles are disabled.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if !cfg.EnableEmailThrottle && !cfg.EnableIPThrottle {
		return nil
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ak"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckLogin reports whether the email+IP pair is within the login
// attempt budget. Returns [ErrRateLimited] when a counter is exhausted.
func (l *Limiter) CheckLogin(ctx context.Context, email, ip string) error {
	if l == nil {
		return nil
	}

	if l.config.EnableEmailThrottle && email != "" {
		if err := l.checkCounter(ctx, loginEmailKey(l.config.KeyPrefix, email)); err != nil {
			return err
		}
	}

	if l.config.EnableIPThrottle && ip != "" {
		if err := l.checkCounter(ctx, loginIPKey(l.config.KeyPrefix, ip)); err != nil {
			return err
		}
	}

	return nil
}

// IncrementLogin records a failed login attempt for the email+IP pair.
func (l *Limiter) IncrementLogin(ctx context.Context, email, ip string) error {
	if l == nil {
		return nil
	}

	if l.config.EnableEmailThrottle && email != "" {
		count, err := l.incrementWithTTL(ctx, loginEmailKey(l.config.KeyPrefix, email), l.config.Window)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxAttempts) {
			return ErrRateLimited
		}
	}

	if l.config.EnableIPThrottle && ip != "" {
		count, err := l.incrementWithTTL(ctx, loginIPKey(l.config.KeyPrefix, ip), l.config.Window)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxAttempts) {
			return ErrRateLimited
		}
	}

	return nil
}

// ResetLogin clears the failed-login counters for the email+IP pair.
// Called after successful login.
func (l *Limiter) ResetLogin(ctx context.Context, email, ip string) error {
	if l == nil {
		return nil
	}

	var keys []string
	if l.config.EnableEmailThrottle && email != "" {
		keys = append(keys, loginEmailKey(l.config.KeyPrefix, email))
	}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, loginIPKey(l.config.KeyPrefix, ip))
	}
	if len(keys) == 0 {
		return nil
	}

	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// LoginAttempts returns the current attempt counter for an email.
// Missing keys return zero and do not reveal account existence.
func (l *Limiter) LoginAttempts(ctx context.Context, email string) (int, error) {
	if l == nil || !l.config.EnableEmailThrottle {
		return 0, nil
	}

	count, err := l.redis.Get(ctx, loginEmailKey(l.config.KeyPrefix, email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count > int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}

	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
