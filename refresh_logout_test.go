package authkern

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	f := newKernelFixture(t, testConfig())
	pair := mustLogin(t, f)
	ctx := context.Background()

	// Advance so the new token's iat differs from the original's.
	f.clock.Advance(time.Minute)

	access, err := f.kernel.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if access == "" || access == pair.AccessToken {
		t.Fatal("expected a fresh access token")
	}

	if _, err := f.kernel.Authorize(ctx, access, "tenant-1"); err != nil {
		t.Fatalf("Authorize with refreshed token failed: %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newKernelFixture(t, testConfig())
	pair := mustLogin(t, f)

	// An access token replayed against Refresh is a use-claim mismatch.
	_, err := f.kernel.Refresh(context.Background(), pair.AccessToken)
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestRefreshDeniedWhileLocked(t *testing.T) {
	f := newKernelFixture(t, testConfig())
	pair := mustLogin(t, f)
	ctx := context.Background()

	// Lock the account after the refresh token was issued.
	for i := 0; i < f.kernel.config.Lockout.Threshold; i++ {
		f.kernel.Login(ctx, testEmail, "wrongpassword")
	}

	_, err := f.kernel.Refresh(ctx, pair.RefreshToken)
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}

func TestRefreshExpired(t *testing.T) {
	f := newKernelFixture(t, testConfig())
	pair := mustLogin(t, f)

	f.clock.Advance(f.kernel.config.Token.RefreshTTL + time.Second)
	_, err := f.kernel.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestLogoutThenAuthorizeReturnsRevoked(t *testing.T) {
	f := newKernelFixture(t, testConfig())
	pair := mustLogin(t, f)
	ctx := context.Background()

	if err := f.kernel.Logout(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := f.kernel.Authorize(ctx, pair.AccessToken, "tenant-1"); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked for access token, got %v", err)
	}
	if _, err := f.kernel.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked for refresh token, got %v", err)
	}

	event := f.sink.waitFor(t, "logout")
	if event.AccountID != "acc-1" || !event.Success {
		t.Fatalf("unexpected logout event: %+v", event)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newKernelFixture(t, testConfig())
	pair := mustLogin(t, f)
	ctx := context.Background()

	if err := f.kernel.Logout(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		t.Fatalf("first Logout failed: %v", err)
	}
	if err := f.kernel.Logout(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		t.Fatalf("repeated Logout failed: %v", err)
	}
}

func TestLogoutWithSingleToken(t *testing.T) {
	f := newKernelFixture(t, testConfig())
	pair := mustLogin(t, f)
	ctx := context.Background()

	// Revoking only the refresh token leaves the access token usable.
	if err := f.kernel.Logout(ctx, "", pair.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := f.kernel.Authorize(ctx, pair.AccessToken, "tenant-1"); err != nil {
		t.Fatalf("access token should still authorize: %v", err)
	}
	if _, err := f.kernel.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestLogoutMalformedToken(t *testing.T) {
	f := newKernelFixture(t, testConfig())

	// A token without a readable expiry claim leaves no TTL to bound a
	// blacklist entry with.
	err := f.kernel.Logout(context.Background(), "garbage", "")
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestAuthorizeFailsClosedOnStoreOutage(t *testing.T) {
	f := newKernelFixture(t, testConfig())
	pair := mustLogin(t, f)

	f.redis.Close()

	_, err := f.kernel.Authorize(context.Background(), pair.AccessToken, "tenant-1")
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestAuthorizeFailOpenWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Revocation.FailOpen = true
	f := newKernelFixture(t, cfg)
	pair := mustLogin(t, f)

	f.redis.Close()

	res, err := f.kernel.Authorize(context.Background(), pair.AccessToken, "tenant-1")
	if err != nil {
		t.Fatalf("fail-open Authorize failed: %v", err)
	}
	if res.Role != RoleOperator {
		t.Fatalf("unexpected role: %s", res.Role)
	}
}

func TestRevocationEntryExpiresWithToken(t *testing.T) {
	f := newKernelFixture(t, testConfig())
	pair := mustLogin(t, f)
	ctx := context.Background()

	if err := f.kernel.Logout(ctx, pair.AccessToken, ""); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// The blacklist entry's TTL matches the token's remaining lifetime:
	// once miniredis passes that point the key self-expires. The token
	// itself is by then expired anyway.
	f.redis.FastForward(f.kernel.config.Token.AccessTTL + time.Minute)
	if got := len(f.redis.Keys()); got != 0 {
		t.Fatalf("expected revocation entries to self-expire, %d keys remain", got)
	}
}
