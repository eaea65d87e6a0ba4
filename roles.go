package authkern

import (
	"context"
	"errors"
	"fmt"
)

// ResolveRole returns the role assigned to accountID within tenantID.
// A missing assignment is [ErrNoRoleAssigned], never a zero-value role;
// authorization treats it as a denial, not an anomaly.
func (k *Kernel) ResolveRole(ctx context.Context, accountID, tenantID string) (Role, error) {
	if k == nil {
		return "", ErrKernelNotReady
	}
	if accountID == "" || tenantID == "" {
		return "", ErrNoRoleAssigned
	}

	role, err := k.roles.FindRole(ctx, accountID, tenantID)
	if err != nil {
		if errors.Is(err, ErrNoRoleAssigned) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	return role, nil
}

// AssignRole grants role to accountID within tenantID, replacing any
// existing assignment. Assigning the same role twice is a no-op; roles
// outside the closed set are rejected with [ErrInvalidRole].
func (k *Kernel) AssignRole(ctx context.Context, accountID, tenantID string, role Role) error {
	if k == nil {
		return ErrKernelNotReady
	}
	if accountID == "" || tenantID == "" {
		return fmt.Errorf("%w: account and tenant required", ErrInvalidInput)
	}
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	assignment := RoleAssignment{
		AccountID: accountID,
		TenantID:  tenantID,
		Role:      role,
	}
	if err := k.roles.UpsertRole(ctx, assignment); err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	k.emitAudit(ctx, auditEventRoleAssigned, true, accountID, tenantID, nil, func() map[string]string {
		return map[string]string{"role": string(role)}
	})
	return nil
}
