package goTenant

import (
	"context"
	"errors"
)

const (
	auditEventSignupSuccess       = "signup_success"
	auditEventSignupFailure       = "signup_failure"
	auditEventSigninSuccess       = "signin_success"
	auditEventSigninFailure       = "signin_failure"
	auditEventRefreshSuccess      = "refresh_success"
	auditEventRefreshFailure      = "refresh_failure"
	auditEventRevokeSuccess       = "revoke_success"
	auditEventRevokeNoop          = "revoke_noop"
	auditEventAuthenticateFailure = "authenticate_failure"
)

// AuditErrorCode is the stable error label written to [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrMissingToken       AuditErrorCode = "missing_token"
	auditErrSessionExpired     AuditErrorCode = "session_expired"
	auditErrUnauthenticated    AuditErrorCode = "unauthenticated"
	auditErrUnknownSubject     AuditErrorCode = "unknown_subject"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrInvalidInput       AuditErrorCode = "invalid_input"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrConfig             AuditErrorCode = "config_error"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	// The dispatcher stamps time, request ID and client IP from ctx.
	event := AuditEvent{
		EventType: eventType,
		UserID:    userID,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrInvalidToken):
		return auditErrInvalidToken
	case errors.Is(err, ErrMissingToken):
		return auditErrMissingToken
	case errors.Is(err, ErrSessionExpired):
		return auditErrSessionExpired
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, ErrUnknownSubject):
		return auditErrUnknownSubject
	case errors.Is(err, ErrDuplicateSubject):
		return auditErrDuplicate
	case errors.Is(err, ErrInvalidSignup), errors.Is(err, ErrInvalidRole):
		return auditErrInvalidInput
	case errors.Is(err, ErrStoreFailure):
		return auditErrUnavailable
	case errors.Is(err, ErrConfig):
		return auditErrConfig
	default:
		return auditErrInternal
	}
}
