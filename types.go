package authkern

import (
	"context"
	"fmt"
	"time"
)

// Role defines a public type used by authkern APIs.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role string

const (
	// RoleSuperAdmin is an exported constant or variable used by the authentication kernel.
	RoleSuperAdmin Role = "super_admin"
	// RoleTenantAdmin is an exported constant or variable used by the authentication kernel.
	RoleTenantAdmin Role = "tenant_admin"
	// RoleOperator is an exported constant or variable used by the authentication kernel.
	RoleOperator Role = "operator"
	// RoleDeveloper is an exported constant or variable used by the authentication kernel.
	RoleDeveloper Role = "developer"
	// RoleViewer is an exported constant or variable used by the authentication kernel.
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the five recognized roles. The role
// set is closed: storage adapters must reject anything else rather than
// pass unknown strings through.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleTenantAdmin, RoleOperator, RoleDeveloper, RoleViewer:
		return true
	default:
		return false
	}
}

// ParseRole converts a stored string into a [Role], rejecting values
// outside the closed role set with [ErrInvalidRole].
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Account is the credential record returned by [AccountRepository].
// PasswordHash holds a PHC or bcrypt encoded hash, never a plaintext.
// LockedUntil is nil when the account is not locked; PasswordHistory
// holds previous hashes, most recent first.
type Account struct {
	ID                string
	Email             string
	PasswordHash      string
	FailedAttempts    int
	LockedUntil       *time.Time
	DefaultTenantID   string
	PasswordHistory   []string
	PasswordExpiresAt *time.Time
}

// RoleAssignment binds an account to exactly one role within a tenant.
type RoleAssignment struct {
	AccountID string
	TenantID  string
	Role      Role
}

// AuthResult is returned by [Kernel.Authorize]. It carries the verified
// identity and the role resolved from storage; the role never rides in
// the token itself.
type AuthResult struct {
	AccountID string
	TenantID  string
	Role      Role
}

// TokenPair is returned by [Kernel.Login].
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccountRepository is the interface callers implement to connect the
// kernel to their account database. Lookups must return
// [ErrAccountNotFound] for missing rows so the kernel can collapse the
// distinction before it reaches clients.
//
// UpdateLockoutState must persist failedAttempts and lockedUntil in a
// single atomic write; partial updates corrupt the lockout machine.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	UpdateLockoutState(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error
	UpdatePasswordHash(ctx context.Context, id, newHash string, history []string) error
}

// RoleRepository resolves and assigns per-tenant roles. FindRole must
// return [ErrNoRoleAssigned] when no assignment exists; UpsertRole must
// be idempotent so repeated assignment of the same role is a no-op.
type RoleRepository interface {
	FindRole(ctx context.Context, accountID, tenantID string) (Role, error)
	UpsertRole(ctx context.Context, assignment RoleAssignment) error
}
