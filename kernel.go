package authkern

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/kernworks/authkern/internal/rate"
	"github.com/kernworks/authkern/jwt"
	"github.com/kernworks/authkern/password"
	"github.com/kernworks/authkern/revocation"
)

// Kernel defines a public type used by authkern APIs.
//
// Kernel instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Kernel struct {
	config      Config
	accounts    AccountRepository
	roles       RoleRepository
	revocations *revocation.Store
	rateLimiter *rate.Limiter
	hasher      password.Hasher
	policy      *password.Policy
	codec       *jwt.Codec
	audit       *auditDispatcher
	metrics     *Metrics
	decoyHash   string
	now         func() time.Time
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k *Kernel) Close() {
	if k == nil {
		return
	}
	if k.audit != nil {
		k.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k *Kernel) AuditDropped() uint64 {
	if k == nil || k.audit == nil {
		return 0
	}
	return k.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k *Kernel) MetricsSnapshot() MetricsSnapshot {
	if k == nil || k.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return k.metrics.Snapshot()
}

func (k *Kernel) metricInc(id MetricID) {
	if k == nil || k.metrics == nil {
		return
	}
	k.metrics.Inc(id)
}

// Login verifies an email and password and returns a fresh access and
// refresh token pair.
//
// Unknown emails and wrong passwords both return [ErrInvalidCredentials];
// nothing in the response distinguishes the two cases. A locked account
// returns [ErrAccountLocked] before any credential work. The failure that
// crosses the lockout threshold still reports [ErrInvalidCredentials];
// only attempts after the lock engages see [ErrAccountLocked].
func (k *Kernel) Login(ctx context.Context, email, plaintext string) (TokenPair, error) {
	if k == nil {
		return TokenPair{}, ErrKernelNotReady
	}

	email = normalizeEmail(email)
	if email == "" || plaintext == "" {
		k.metricInc(MetricLoginFailure)
		return TokenPair{}, ErrInvalidCredentials
	}

	ip := clientIPFromContext(ctx)
	if err := k.rateLimiter.CheckLogin(ctx, email, ip); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			k.metricInc(MetricLoginRateLimited)
			k.emitAudit(ctx, auditEventLoginRateLimited, false, "", "", ErrRateLimited, nil)
			return TokenPair{}, ErrRateLimited
		}
		return TokenPair{}, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	account, err := k.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// Unknown identifiers burn a verification so their latency
			// matches a wrong password.
			k.burnVerify(plaintext)
			k.recordThrottleFailure(ctx, email, ip)
			k.metricInc(MetricLoginFailure)
			k.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrInvalidCredentials, nil)
			return TokenPair{}, ErrInvalidCredentials
		}
		k.metricInc(MetricLoginFailure)
		return TokenPair{}, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	now := k.now().UTC()
	if lockActive(account, now) {
		k.metricInc(MetricLoginFailure)
		k.emitAudit(ctx, auditEventLoginFailure, false, account.ID, account.DefaultTenantID, ErrAccountLocked, nil)
		return TokenPair{}, ErrAccountLocked
	}

	match, err := password.Verify(plaintext, account.PasswordHash)
	if err != nil {
		k.metricInc(MetricLoginFailure)
		return TokenPair{}, fmt.Errorf("%w: stored credential unreadable: %v", ErrDependencyUnavailable, err)
	}
	if !match {
		attempts, err := k.recordLoginFailure(ctx, account)
		if err != nil {
			k.metricInc(MetricLoginFailure)
			return TokenPair{}, err
		}
		k.recordThrottleFailure(ctx, email, ip)
		k.metricInc(MetricLoginFailure)
		k.emitAudit(ctx, auditEventLoginFailure, false, account.ID, account.DefaultTenantID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"failed_attempts": strconv.Itoa(attempts)}
		})
		return TokenPair{}, ErrInvalidCredentials
	}

	if passwordExpired(account, now) {
		if err := k.clearLockout(ctx, account); err != nil {
			return TokenPair{}, err
		}
		k.metricInc(MetricLoginFailure)
		k.emitAudit(ctx, auditEventLoginFailure, false, account.ID, account.DefaultTenantID, ErrPasswordExpired, nil)
		return TokenPair{}, ErrPasswordExpired
	}

	if err := k.clearLockout(ctx, account); err != nil {
		return TokenPair{}, err
	}
	if err := k.rateLimiter.ResetLogin(ctx, email, ip); err != nil {
		log.Printf("authkern: login throttle reset failed: %v", err)
	}

	identity := jwt.Identity{
		Subject:  account.ID,
		Email:    account.Email,
		TenantID: account.DefaultTenantID,
	}
	access, err := k.codec.IssueAccess(identity)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	refresh, err := k.codec.IssueRefresh(identity)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	k.metricInc(MetricLoginSuccess)
	k.metricInc(MetricTokenIssued)
	k.metricInc(MetricTokenIssued)
	k.emitAudit(ctx, auditEventLoginSuccess, true, account.ID, account.DefaultTenantID, nil, func() map[string]string {
		if k.hasher.NeedsUpgrade(account.PasswordHash) {
			return map[string]string{"hash_needs_upgrade": "true"}
		}
		return nil
	})

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh verifies a refresh token and issues a new access token. The
// account is re-read so a lock placed after the refresh token was issued
// still denies the exchange. Refresh does not rotate the refresh token.
func (k *Kernel) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if k == nil {
		return "", ErrKernelNotReady
	}

	claims, err := k.codec.VerifyRefresh(refreshToken)
	if err != nil {
		k.metricInc(MetricRefreshFailure)
		return "", mapTokenError(err)
	}

	revoked, err := k.isRevoked(ctx, refreshToken)
	if err != nil {
		k.metricInc(MetricRefreshFailure)
		return "", err
	}
	if revoked {
		k.metricInc(MetricRefreshFailure)
		return "", ErrTokenRevoked
	}

	account, err := k.accounts.FindByID(ctx, claims.Subject)
	if err != nil {
		k.metricInc(MetricRefreshFailure)
		if errors.Is(err, ErrAccountNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	if lockActive(account, k.now().UTC()) {
		k.metricInc(MetricRefreshFailure)
		return "", ErrAccountLocked
	}

	access, err := k.codec.IssueAccess(jwt.Identity{
		Subject:  account.ID,
		Email:    account.Email,
		TenantID: account.DefaultTenantID,
	})
	if err != nil {
		k.metricInc(MetricRefreshFailure)
		return "", fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	k.metricInc(MetricRefreshSuccess)
	k.metricInc(MetricTokenIssued)
	return access, nil
}

// Logout revokes the presented access and refresh tokens. Empty token
// slots are skipped and repeating a logout is not an error; both
// properties make the operation safe to retry. Revocation of the second
// token is still attempted when the first fails.
func (k *Kernel) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if k == nil {
		return ErrKernelNotReady
	}

	var accountID, tenantID string
	if accessToken != "" {
		if claims, err := k.codec.VerifyAccess(accessToken); err == nil {
			accountID = claims.Subject
			tenantID = claims.TenantID
		}
	}

	tokens := []struct {
		use   string
		value string
	}{
		{jwt.TokenUseAccess, accessToken},
		{jwt.TokenUseRefresh, refreshToken},
	}

	var firstErr error
	for _, tok := range tokens {
		if tok.value == "" {
			continue
		}
		if err := k.revocations.Revoke(ctx, tok.value); err != nil {
			if firstErr == nil {
				firstErr = mapRevocationError(err)
			}
			continue
		}
		k.metricInc(MetricTokenRevoked)
		use := tok.use
		k.emitAudit(ctx, auditEventTokenRevoked, true, accountID, tenantID, nil, func() map[string]string {
			return map[string]string{"token_use": use}
		})
	}
	if firstErr != nil {
		return firstErr
	}

	k.metricInc(MetricLogout)
	k.emitAudit(ctx, auditEventLogout, true, accountID, tenantID, nil, nil)
	return nil
}

// Authorize is the hot path. It verifies the access token, checks the
// revocation blacklist, and resolves the caller's role for tenantID from
// storage. An empty tenantID falls back to the token's tenant claim,
// then to the context hint. The role is never read from the token.
func (k *Kernel) Authorize(ctx context.Context, accessToken, tenantID string) (*AuthResult, error) {
	if k == nil {
		return nil, ErrKernelNotReady
	}
	if k.metrics.LatencyEnabled() {
		defer func(start time.Time) {
			k.metrics.Observe(MetricAuthorizeLatency, time.Since(start))
		}(time.Now())
	}

	claims, err := k.codec.VerifyAccess(accessToken)
	if err != nil {
		k.metricInc(MetricAuthorizeDenied)
		return nil, mapTokenError(err)
	}

	revoked, err := k.isRevoked(ctx, accessToken)
	if err != nil {
		k.metricInc(MetricAuthorizeDenied)
		return nil, err
	}
	if revoked {
		k.metricInc(MetricAuthorizeDenied)
		return nil, ErrTokenRevoked
	}

	tenant := tenantID
	if tenant == "" {
		tenant = claims.TenantID
	}
	if tenant == "" {
		tenant = tenantIDFromContext(ctx)
	}

	role, err := k.roles.FindRole(ctx, claims.Subject, tenant)
	if err != nil {
		k.metricInc(MetricAuthorizeDenied)
		if errors.Is(err, ErrNoRoleAssigned) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	k.metricInc(MetricAuthorizeSuccess)
	return &AuthResult{
		AccountID: claims.Subject,
		TenantID:  tenant,
		Role:      role,
	}, nil
}

// isRevoked consults the blacklist and applies the configured
// availability policy: fail-closed surfaces store outages as
// [ErrDependencyUnavailable], fail-open logs and treats the token as
// live.
func (k *Kernel) isRevoked(ctx context.Context, token string) (bool, error) {
	revoked, err := k.revocations.IsRevoked(ctx, token)
	if err != nil {
		if k.config.Revocation.FailOpen {
			log.Printf("authkern: revocation check failed, failing open: %v", err)
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	return revoked, nil
}

// burnVerify runs a full verification against a throwaway hash so code
// paths that never load a real account still pay the hashing cost.
func (k *Kernel) burnVerify(plaintext string) {
	if k.decoyHash == "" {
		return
	}
	_, _ = password.Verify(plaintext, k.decoyHash)
}

func (k *Kernel) recordThrottleFailure(ctx context.Context, email, ip string) {
	if err := k.rateLimiter.IncrementLogin(ctx, email, ip); err != nil && !errors.Is(err, rate.ErrRateLimited) {
		log.Printf("authkern: login throttle increment failed: %v", err)
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignature):
		return ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return ErrTokenMalformed
	}
}

func mapRevocationError(err error) error {
	switch {
	case errors.Is(err, revocation.ErrUnreadableToken):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, revocation.ErrStoreUnavailable):
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
