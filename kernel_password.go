package authkern

import (
	"context"
	"errors"
	"fmt"

	"github.com/kernworks/authkern/password"
)

// passwordHistoryDepth is how many previous hashes are retained and
// checked against on change.
const passwordHistoryDepth = 5

// ChangePassword replaces an account's credential after verifying the
// current one. The new password must satisfy the policy and differ from
// the current password and the retained history. A locked account cannot
// change its password until unlocked.
func (k *Kernel) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
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

	if lockActive(account, k.now().UTC()) {
		return k.failPasswordChange(ctx, account, ErrAccountLocked)
	}

	match, err := password.Verify(oldPassword, account.PasswordHash)
	if err != nil {
		k.metricInc(MetricPasswordChangeFailure)
		return fmt.Errorf("%w: stored credential unreadable: %v", ErrDependencyUnavailable, err)
	}
	if !match {
		return k.failPasswordChange(ctx, account, ErrInvalidCredentials)
	}

	if ok, reason := k.policy.Validate(newPassword); !ok {
		err := fmt.Errorf("%w: %s", ErrWeakPassword, reason)
		return k.failPasswordChange(ctx, account, err)
	}

	// Reuse check spans the live hash plus retained history. Unreadable
	// history entries are skipped rather than blocking the change.
	for _, prior := range append([]string{account.PasswordHash}, account.PasswordHistory...) {
		if reused, _ := password.Verify(newPassword, prior); reused {
			return k.failPasswordChange(ctx, account, ErrPasswordReuse)
		}
	}

	newHash, err := k.hasher.Hash(newPassword)
	if err != nil {
		k.metricInc(MetricPasswordChangeFailure)
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	history := append([]string{account.PasswordHash}, account.PasswordHistory...)
	if len(history) > passwordHistoryDepth {
		history = history[:passwordHistoryDepth]
	}

	if err := k.accounts.UpdatePasswordHash(ctx, account.ID, newHash, history); err != nil {
		k.metricInc(MetricPasswordChangeFailure)
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	k.metricInc(MetricPasswordChangeSuccess)
	k.emitAudit(ctx, auditEventPasswordChangeSuccess, true, account.ID, account.DefaultTenantID, nil, nil)
	return nil
}

func (k *Kernel) failPasswordChange(ctx context.Context, account Account, err error) error {
	k.metricInc(MetricPasswordChangeFailure)
	k.emitAudit(ctx, auditEventPasswordChangeFailure, false, account.ID, account.DefaultTenantID, err, nil)
	return err
}
