package flows

import (
	"context"

	"github.com/MrEthical07/goTenant/jwt"
)

// RevokeFailureKind classifies revoke failures for root-level mapping.
type RevokeFailureKind int

const (
	RevokeFailureNone RevokeFailureKind = iota
	RevokeFailureMissing
	RevokeFailureConfig
	RevokeFailureStore
)

// RevokeResult reports whether a record was deleted. Ignored is set when the
// token could not be verified; Err then carries the reason for logging only.
type RevokeResult struct {
	Failure RevokeFailureKind
	Err     error
	UserID  string
	Ignored bool
}

// RevokeSessionStore is the subset of session.Store used by revoke.
type RevokeSessionStore interface {
	Delete(ctx context.Context, subjectID string) error
}

// RevokeDeps captures revoke flow dependencies.
type RevokeDeps struct {
	HasRefreshSecret func() bool
	InspectRefresh   func(string) (*jwt.Claims, error)
	SessionStore     RevokeSessionStore
}

// RunRevoke deletes the subject's refresh record for any token whose
// signature verifies, whether or not it matches the stored value or has
// expired. Unverifiable tokens are a successful no-op.
func RunRevoke(ctx context.Context, refreshToken string, deps RevokeDeps) RevokeResult {
	if refreshToken == "" {
		return RevokeResult{Failure: RevokeFailureMissing}
	}
	if !deps.HasRefreshSecret() {
		return RevokeResult{Failure: RevokeFailureConfig, Err: jwt.ErrMissingSecret}
	}

	claims, err := deps.InspectRefresh(refreshToken)
	if err != nil {
		return RevokeResult{Ignored: true, Err: err}
	}

	if err := deps.SessionStore.Delete(ctx, claims.UID); err != nil {
		return RevokeResult{Failure: RevokeFailureStore, Err: err, UserID: claims.UID}
	}

	return RevokeResult{UserID: claims.UID}
}
