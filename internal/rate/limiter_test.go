package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, cfg), mr
}

func TestNewReturnsNilWhenDisabled(t *testing.T) {
	if l := New(nil, Config{}); l != nil {
		t.Fatal("expected nil limiter when both throttles are disabled")
	}

	var l *Limiter
	ctx := context.Background()
	if err := l.CheckLogin(ctx, "a@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("nil limiter CheckLogin failed: %v", err)
	}
	if err := l.IncrementLogin(ctx, "a@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("nil limiter IncrementLogin failed: %v", err)
	}
	if err := l.ResetLogin(ctx, "a@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("nil limiter ResetLogin failed: %v", err)
	}
}

func TestEmailThrottleTripsAfterBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{
		EnableEmailThrottle: true,
		MaxAttempts:         3,
		Window:              time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.IncrementLogin(ctx, "a@example.com", ""); err != nil {
			t.Fatalf("increment %d failed: %v", i+1, err)
		}
		if err := limiter.CheckLogin(ctx, "a@example.com", ""); err != nil {
			t.Fatalf("check after increment %d failed: %v", i+1, err)
		}
	}

	if err := limiter.IncrementLogin(ctx, "a@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on attempt 4, got %v", err)
	}
	if err := limiter.CheckLogin(ctx, "a@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited from CheckLogin, got %v", err)
	}

	// A different email is unaffected.
	if err := limiter.CheckLogin(ctx, "b@example.com", ""); err != nil {
		t.Fatalf("unrelated email should not be throttled: %v", err)
	}
}

func TestIPThrottleSpansEmails(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{
		EnableIPThrottle: true,
		MaxAttempts:      2,
		Window:           time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := limiter.IncrementLogin(ctx, "a@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("increment %d failed: %v", i+1, err)
		}
	}

	// Third attempt from the same IP trips even with a fresh email.
	if err := limiter.IncrementLogin(ctx, "c@example.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited for rotating emails on one IP, got %v", err)
	}
	if err := limiter.CheckLogin(ctx, "d@example.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited from CheckLogin, got %v", err)
	}
}

func TestWindowExpiryResetsCounter(t *testing.T) {
	limiter, mr := newTestLimiter(t, Config{
		EnableEmailThrottle: true,
		MaxAttempts:         1,
		Window:              time.Minute,
	})
	ctx := context.Background()

	if err := limiter.IncrementLogin(ctx, "a@example.com", ""); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if err := limiter.IncrementLogin(ctx, "a@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	mr.FastForward(61 * time.Second)

	if err := limiter.CheckLogin(ctx, "a@example.com", ""); err != nil {
		t.Fatalf("expected fresh window after expiry, got %v", err)
	}
	if err := limiter.IncrementLogin(ctx, "a@example.com", ""); err != nil {
		t.Fatalf("increment in fresh window failed: %v", err)
	}
}

func TestResetLoginClearsCounters(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{
		EnableEmailThrottle: true,
		EnableIPThrottle:    true,
		MaxAttempts:         1,
		Window:              time.Minute,
	})
	ctx := context.Background()

	if err := limiter.IncrementLogin(ctx, "a@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if err := limiter.ResetLogin(ctx, "a@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	attempts, err := limiter.LoginAttempts(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("LoginAttempts failed: %v", err)
	}
	if attempts != 0 {
		t.Fatalf("expected 0 attempts after reset, got %d", attempts)
	}
}

func TestRedisOutageIsDistinct(t *testing.T) {
	limiter, mr := newTestLimiter(t, Config{
		EnableEmailThrottle: true,
		MaxAttempts:         3,
		Window:              time.Minute,
	})
	ctx := context.Background()

	mr.Close()

	if err := limiter.CheckLogin(ctx, "a@example.com", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if err := limiter.IncrementLogin(ctx, "a@example.com", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
