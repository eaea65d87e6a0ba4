package authkern

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// lockActive reports whether account is under an active lock at now.
// An elapsed LockedUntil means the lock has expired; the failure counter
// is deliberately NOT reset on expiry, so the next wrong password
// re-locks immediately.
func lockActive(account Account, now time.Time) bool {
	return account.LockedUntil != nil && now.Before(*account.LockedUntil)
}

func passwordExpired(account Account, now time.Time) bool {
	return account.PasswordExpiresAt != nil && !now.Before(*account.PasswordExpiresAt)
}

// recordLoginFailure advances the failure counter and, at the threshold,
// engages the lock. Counter and lock timestamp are persisted in one
// repository call. Returns the new counter value.
func (k *Kernel) recordLoginFailure(ctx context.Context, account Account) (int, error) {
	attempts := account.FailedAttempts + 1

	var lockedUntil *time.Time
	if attempts >= k.config.Lockout.Threshold {
		until := k.now().UTC().Add(k.config.Lockout.Duration)
		lockedUntil = &until
	}

	if err := k.accounts.UpdateLockoutState(ctx, account.ID, attempts, lockedUntil); err != nil {
		return attempts, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	if lockedUntil != nil {
		k.metricInc(MetricAccountLocked)
		until := *lockedUntil
		k.emitAudit(ctx, auditEventAccountLocked, false, account.ID, account.DefaultTenantID, ErrAccountLocked, func() map[string]string {
			return map[string]string{
				"failed_attempts": strconv.Itoa(attempts),
				"locked_until":    until.Format(time.RFC3339),
			}
		})
	}

	return attempts, nil
}

// clearLockout resets the failure counter after a correct password.
// Skipped when there is nothing to clear, so the hot path costs no
// extra write.
func (k *Kernel) clearLockout(ctx context.Context, account Account) error {
	if account.FailedAttempts == 0 && account.LockedUntil == nil {
		return nil
	}
	if err := k.accounts.UpdateLockoutState(ctx, account.ID, 0, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	return nil
}

// Unlock clears an account's lockout state ahead of its natural expiry.
// Intended for operator tooling after identity verification.
func (k *Kernel) Unlock(ctx context.Context, accountID string) error {
	if k == nil {
		return ErrKernelNotReady
	}
	if accountID == "" {
		return fmt.Errorf("%w: account id required", ErrInvalidInput)
	}

	account, err := k.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	if err := k.accounts.UpdateLockoutState(ctx, account.ID, 0, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	k.metricInc(MetricAccountUnlocked)
	k.emitAudit(ctx, auditEventAccountUnlocked, true, account.ID, account.DefaultTenantID, nil, nil)
	return nil
}
