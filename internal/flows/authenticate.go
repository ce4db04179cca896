package flows

import (
	"context"

	"github.com/MrEthical07/goTenant/jwt"
)

// AuthenticateFailureKind classifies access-token authentication failures.
type AuthenticateFailureKind int

const (
	AuthenticateFailureNone AuthenticateFailureKind = iota
	AuthenticateFailureMissing
	AuthenticateFailureVerify
	AuthenticateFailureUnknownSubject
	AuthenticateFailureLookup
)

// AuthenticateResult carries the resolved identity or failure metadata.
type AuthenticateResult struct {
	Failure  AuthenticateFailureKind
	Err      error
	Claims   *jwt.Claims
	Identity IdentityRecord
}

// AuthenticateDeps captures guard-side dependencies.
type AuthenticateDeps struct {
	VerifyAccess func(string) (*jwt.Claims, error)
	FindByID     func(context.Context, string) (IdentityRecord, bool, error)
}

// RunAuthenticate verifies an access token and resolves its subject.
func RunAuthenticate(ctx context.Context, accessToken string, deps AuthenticateDeps) AuthenticateResult {
	if accessToken == "" {
		return AuthenticateResult{Failure: AuthenticateFailureMissing}
	}

	claims, err := deps.VerifyAccess(accessToken)
	if err != nil {
		return AuthenticateResult{Failure: AuthenticateFailureVerify, Err: err}
	}

	record, found, err := deps.FindByID(ctx, claims.UID)
	if err != nil {
		return AuthenticateResult{Failure: AuthenticateFailureLookup, Err: err, Claims: claims}
	}
	if !found {
		return AuthenticateResult{Failure: AuthenticateFailureUnknownSubject, Claims: claims}
	}

	return AuthenticateResult{Claims: claims, Identity: record}
}
