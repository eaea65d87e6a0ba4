package authkern

import (
	"context"
	"errors"

	"github.com/kernworks/authkern/internal/ids"
)

const (
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventLoginRateLimited      = "login_rate_limited"
	auditEventAccountLocked         = "account_locked"
	auditEventAccountUnlocked       = "account_unlocked"
	auditEventLogout                = "logout"
	auditEventTokenRevoked          = "token_revoked"
	auditEventRoleAssigned          = "role_assigned"
	auditEventPasswordChangeSuccess = "password_change_success"
	auditEventPasswordChangeFailure = "password_change_failure"
)

// AuditErrorCode defines a public type used by authkern APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrAccountLocked      AuditErrorCode = "account_locked"
	auditErrAccountNotFound    AuditErrorCode = "account_not_found"
	auditErrPasswordPolicy     AuditErrorCode = "password_policy"
	auditErrPasswordReuse      AuditErrorCode = "password_reuse"
	auditErrPasswordExpired    AuditErrorCode = "password_expired"
	auditErrTokenExpired       AuditErrorCode = "token_expired"
	auditErrTokenMalformed     AuditErrorCode = "token_malformed"
	auditErrTokenSignature     AuditErrorCode = "token_signature_invalid"
	auditErrTokenRevoked       AuditErrorCode = "token_revoked"
	auditErrNoRoleAssigned     AuditErrorCode = "no_role_assigned"
	auditErrInvalidRole        AuditErrorCode = "invalid_role"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (k *Kernel) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	tenantID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if k == nil || k.audit == nil {
		return
	}
	if tenantID == "" {
		tenantID = tenantIDFromContext(ctx)
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		ID:        ids.New(),
		Timestamp: k.now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		TenantID:  tenantID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	k.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAccountLocked):
		return auditErrAccountLocked
	case errors.Is(err, ErrAccountNotFound):
		return auditErrAccountNotFound
	case errors.Is(err, ErrWeakPassword):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrPasswordReuse):
		return auditErrPasswordReuse
	case errors.Is(err, ErrPasswordExpired):
		return auditErrPasswordExpired
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenMalformed):
		return auditErrTokenMalformed
	case errors.Is(err, ErrTokenSignatureInvalid):
		return auditErrTokenSignature
	case errors.Is(err, ErrTokenRevoked):
		return auditErrTokenRevoked
	case errors.Is(err, ErrNoRoleAssigned):
		return auditErrNoRoleAssigned
	case errors.Is(err, ErrInvalidRole):
		return auditErrInvalidRole
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrDependencyUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
