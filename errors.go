package authkern

import "errors"

var (
	// ErrInvalidCredentials is an exported constant or variable used by the authentication kernel.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked is an exported constant or variable used by the authentication kernel.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountNotFound is an exported constant or variable used by the authentication kernel.
	ErrAccountNotFound = errors.New("account not found")
	// ErrWeakPassword is an exported constant or variable used by the authentication kernel.
	ErrWeakPassword = errors.New("password does not meet policy")
	// ErrPasswordReuse is an exported constant or variable used by the authentication kernel.
	ErrPasswordReuse = errors.New("new password must differ from recent passwords")
	// ErrPasswordExpired is an exported constant or variable used by the authentication kernel.
	ErrPasswordExpired = errors.New("password expired")
	// ErrTokenExpired is an exported constant or variable used by the authentication kernel.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is an exported constant or variable used by the authentication kernel.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenSignatureInvalid is an exported constant or variable used by the authentication kernel.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenRevoked is an exported constant or variable used by the authentication kernel.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrNoRoleAssigned is an exported constant or variable used by the authentication kernel.
	ErrNoRoleAssigned = errors.New("no role assigned for tenant")
	// ErrInvalidRole is an exported constant or variable used by the authentication kernel.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidInput is an exported constant or variable used by the authentication kernel.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfigInvalid is an exported constant or variable used by the authentication kernel.
	ErrConfigInvalid = errors.New("invalid configuration")
	// ErrDependencyUnavailable is an exported constant or variable used by the authentication kernel.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrRateLimited is an exported constant or variable used by the authentication kernel.
	ErrRateLimited = errors.New("login rate limited")
	// ErrKernelNotReady is an exported constant or variable used by the authentication kernel.
	ErrKernelNotReady = errors.New("kernel not initialized")
)
