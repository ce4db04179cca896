package flows

import (
	"context"
	"crypto/subtle"

	"github.com/MrEthical07/goTenant/jwt"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureMissing
	RefreshFailureConfig
	RefreshFailureVerify
	RefreshFailureStore
	RefreshFailureSuperseded
	RefreshFailureExpired
	RefreshFailureIssueAccess
	RefreshFailureRotate
)

// RefreshResult carries either the token pair or failure metadata.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	UserID       string
	AccessToken  string
	RefreshToken string
	Rotated      bool
}

// RefreshSessionStore is the subset of session.Store used by refresh.
type RefreshSessionStore interface {
	Get(ctx context.Context, subjectID string) (string, bool, error)
	Swap(ctx context.Context, subjectID, expected, next string) (bool, error)
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	HasRefreshSecret func() bool
	VerifyRefresh    func(string) (*jwt.Claims, error)
	Expired          func(*jwt.Claims) bool
	IssueAccess      func(string) (string, error)
	IssueRefresh     func(string) (string, error)
	RotateOnRefresh  bool
	SessionStore     RefreshSessionStore
}

// RunRefresh exchanges a refresh token for a new access token. The presented
// token must verify and be byte-equal to the subject's stored record.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	if refreshToken == "" {
		return RefreshResult{Failure: RefreshFailureMissing}
	}
	if !deps.HasRefreshSecret() {
		return RefreshResult{Failure: RefreshFailureConfig, Err: jwt.ErrMissingSecret}
	}

	claims, err := deps.VerifyRefresh(refreshToken)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureVerify, Err: err}
	}
	userID := claims.UID

	stored, found, err := deps.SessionStore.Get(ctx, userID)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureStore, Err: err, UserID: userID}
	}
	if !found || subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		return RefreshResult{Failure: RefreshFailureSuperseded, UserID: userID}
	}

	// Verification already rejects expired tokens; this re-check guards
	// against a codec configured with leeway.
	if deps.Expired(claims) {
		return RefreshResult{Failure: RefreshFailureExpired, UserID: userID}
	}

	access, err := deps.IssueAccess(userID)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureIssueAccess, Err: err, UserID: userID}
	}

	if !deps.RotateOnRefresh {
		return RefreshResult{
			UserID:       userID,
			AccessToken:  access,
			RefreshToken: refreshToken,
		}
	}

	next, err := deps.IssueRefresh(userID)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureRotate, Err: err, UserID: userID}
	}
	swapped, err := deps.SessionStore.Swap(ctx, userID, refreshToken, next)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureStore, Err: err, UserID: userID}
	}
	if !swapped {
		// A concurrent signin or rotation replaced the record first.
		return RefreshResult{Failure: RefreshFailureSuperseded, UserID: userID}
	}

	return RefreshResult{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: next,
		Rotated:      true,
	}
}
