package goTenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goTenant/internal/flows"
	"github.com/MrEthical07/goTenant/jwt"
	"github.com/MrEthical07/goTenant/password"
	"github.com/MrEthical07/goTenant/permission"
	"github.com/MrEthical07/goTenant/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Engine runs the authentication flows. Build it with [Builder]; all methods
// are safe for concurrent use.
type Engine struct {
	config       Config
	logger       *zap.Logger
	roles        *permission.Registry
	sessionStore *session.Store
	identities   IdentityStore
	hasher       *password.Multi
	jwtManager   *jwt.Manager
	audit        *auditDispatcher
	metrics      *Metrics
	deps         flows.Deps
	now          func() time.Time
}

// Close drains the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// AuditSinkPanics returns how many events were lost to a panicking sink.
func (e *Engine) AuditSinkPanics() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.SinkPanics()
}

// MetricsSnapshot returns a copy of the current counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Roles returns the frozen role registry used to declare route policies.
func (e *Engine) Roles() *permission.Registry {
	if e == nil {
		return nil
	}
	return e.roles
}

// Ping checks the refresh session store.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	if _, err := e.sessionStore.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Signup registers a new identity. No tokens are issued; the caller signs in
// separately.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) (*Identity, error) {
	if e == nil || e.identities == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunSignup(ctx, flows.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}, e.deps.Signup)

	var err error
	switch res.Failure {
	case flows.SignupFailureNone:
		identity := identityFromRecord(res.Identity)
		e.metricInc(MetricSignupSuccess)
		e.emitAudit(ctx, auditEventSignupSuccess, true, identity.ID, nil, func() map[string]string {
			return map[string]string{"role": identity.Role}
		})
		e.logger.Info("identity created", zap.String("user_id", identity.ID), zap.String("role", identity.Role))
		return &identity, nil
	case flows.SignupFailureInvalidInput:
		err = ErrInvalidSignup
	case flows.SignupFailureInvalidRole:
		err = ErrInvalidRole
	case flows.SignupFailureDuplicate:
		e.metricInc(MetricSignupDuplicate)
		err = ErrDuplicateSubject
	case flows.SignupFailureHash:
		if errors.Is(res.Err, bcrypt.ErrPasswordTooLong) || errors.Is(res.Err, password.ErrPasswordTooLong) {
			err = ErrInvalidSignup
		} else {
			err = fmt.Errorf("hash password: %w", res.Err)
		}
	default:
		e.metricInc(MetricStoreFailure)
		err = fmt.Errorf("%w: %v", ErrStoreFailure, res.Err)
	}

	if !errors.Is(err, ErrDuplicateSubject) {
		e.metricInc(MetricSignupFailure)
	}
	e.logger.Debug("signup rejected", zap.Error(err))
	e.emitAudit(ctx, auditEventSignupFailure, false, "", err, nil)
	return nil, err
}

// Signin verifies credentials and issues a token pair. The refresh token
// replaces any earlier one for the same subject. Unknown email and wrong
// password both return [ErrInvalidCredentials].
func (e *Engine) Signin(ctx context.Context, email, pass string) (*TokenPair, error) {
	if e == nil || e.identities == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunSignin(ctx, email, pass, e.deps.Signin)

	var err error
	switch res.Failure {
	case flows.SigninFailureNone:
		e.metricInc(MetricSigninSuccess)
		e.emitAudit(ctx, auditEventSigninSuccess, true, res.UserID, nil, nil)
		return &TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}, nil
	case flows.SigninFailureUnknownEmail, flows.SigninFailurePasswordMismatch:
		err = ErrInvalidCredentials
	case flows.SigninFailureCorruptHash:
		e.logger.Warn("stored password hash unreadable", zap.String("user_id", res.UserID), zap.Error(res.Err))
		err = ErrInvalidCredentials
	case flows.SigninFailureIssue:
		err = fmt.Errorf("%w: %v", ErrConfig, res.Err)
	default:
		e.metricInc(MetricStoreFailure)
		err = fmt.Errorf("%w: %v", ErrStoreFailure, res.Err)
	}

	e.metricInc(MetricSigninFailure)
	e.logger.Debug("signin rejected", zap.Int("kind", int(res.Failure)), zap.Error(res.Err))
	e.emitAudit(ctx, auditEventSigninFailure, false, res.UserID, err, nil)
	return nil, err
}

// RefreshAccess exchanges a refresh token for a new access token. The same
// refresh token is returned unless rotation is enabled.
func (e *Engine) RefreshAccess(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunRefresh(ctx, refreshToken, e.deps.Refresh)

	var err error
	switch res.Failure {
	case flows.RefreshFailureNone:
		e.metricInc(MetricRefreshSuccess)
		if res.Rotated {
			e.metricInc(MetricRefreshRotated)
		}
		e.emitAudit(ctx, auditEventRefreshSuccess, true, res.UserID, nil, func() map[string]string {
			if res.Rotated {
				return map[string]string{"rotated": "true"}
			}
			return nil
		})
		return &TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}, nil
	case flows.RefreshFailureMissing:
		err = ErrMissingToken
	case flows.RefreshFailureConfig, flows.RefreshFailureIssueAccess, flows.RefreshFailureRotate:
		e.logger.Error("refresh signing unavailable", zap.Error(res.Err))
		err = fmt.Errorf("%w: %v", ErrConfig, res.Err)
	case flows.RefreshFailureVerify:
		e.logger.Debug("refresh token failed verification", zap.Error(res.Err))
		err = ErrInvalidToken
	case flows.RefreshFailureSuperseded:
		e.metricInc(MetricRefreshSuperseded)
		e.logger.Debug("refresh token superseded or revoked", zap.String("user_id", res.UserID))
		err = ErrInvalidToken
	case flows.RefreshFailureExpired:
		err = ErrSessionExpired
	default:
		e.metricInc(MetricStoreFailure)
		err = fmt.Errorf("%w: %v", ErrStoreFailure, res.Err)
	}

	e.metricInc(MetricRefreshFailure)
	e.emitAudit(ctx, auditEventRefreshFailure, false, res.UserID, err, nil)
	return nil, err
}

// Revoke deletes the refresh session of the subject named by a signed refresh
// token, even if the token is expired or no longer the stored one. Tokens
// that fail signature checks are ignored and still reported as success.
func (e *Engine) Revoke(ctx context.Context, refreshToken string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}

	res := flows.RunRevoke(ctx, refreshToken, e.deps.Revoke)

	switch res.Failure {
	case flows.RevokeFailureNone:
		if res.Ignored {
			e.metricInc(MetricRevokeNoop)
			e.logger.Info("revoke ignored unverifiable token", zap.Error(res.Err))
			e.emitAudit(ctx, auditEventRevokeNoop, true, "", nil, nil)
			return nil
		}
		e.metricInc(MetricRevokeSuccess)
		e.emitAudit(ctx, auditEventRevokeSuccess, true, res.UserID, nil, nil)
		return nil
	case flows.RevokeFailureMissing:
		return ErrMissingToken
	case flows.RevokeFailureConfig:
		e.logger.Error("refresh signing unavailable", zap.Error(res.Err))
		return fmt.Errorf("%w: %v", ErrConfig, res.Err)
	default:
		e.metricInc(MetricStoreFailure)
		return fmt.Errorf("%w: %v", ErrStoreFailure, res.Err)
	}
}

// Authenticate verifies an access token and loads its subject. Verification
// failures of any kind collapse into [ErrUnauthenticated].
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	if e == nil || e.identities == nil {
		return nil, ErrEngineNotReady
	}

	var start time.Time
	if e.metrics.LatencyEnabled() {
		start = time.Now()
	}

	res := flows.RunAuthenticate(ctx, accessToken, e.deps.Authenticate)

	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
	}

	var err error
	switch res.Failure {
	case flows.AuthenticateFailureNone:
		e.metricInc(MetricAuthenticateSuccess)
		identity := identityFromRecord(res.Identity)
		return &identity, nil
	case flows.AuthenticateFailureMissing:
		err = ErrUnauthenticated
	case flows.AuthenticateFailureVerify:
		e.logger.Debug("access token rejected", zap.Error(res.Err))
		err = ErrUnauthenticated
	case flows.AuthenticateFailureUnknownSubject:
		err = ErrUnknownSubject
	default:
		e.metricInc(MetricStoreFailure)
		err = fmt.Errorf("%w: %v", ErrStoreFailure, res.Err)
	}

	e.metricInc(MetricAuthenticateFailure)
	e.emitAudit(ctx, auditEventAuthenticateFailure, false, subjectOf(res.Claims), err, nil)
	return nil, err
}

// Authorize reports [ErrForbidden] unless identity's role is in allowed.
func (e *Engine) Authorize(identity *Identity, allowed permission.RoleSet) error {
	if identity == nil || !allowed.Contains(identity.Role) {
		e.metricInc(MetricRoleDenied)
		return ErrForbidden
	}
	return nil
}

func subjectOf(claims *jwt.Claims) string {
	if claims == nil {
		return ""
	}
	return claims.UID
}

func identityFromRecord(r flows.IdentityRecord) Identity {
	return Identity{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
	}
}

func recordFromIdentity(i Identity) flows.IdentityRecord {
	return flows.IdentityRecord{
		ID:           i.ID,
		Name:         i.Name,
		Email:        i.Email,
		PasswordHash: i.PasswordHash,
		Role:         i.Role,
		CreatedAt:    i.CreatedAt,
	}
}
