package flows

import (
	"context"
	"strings"
	"time"
)

// SignupFailureKind classifies signup failures for root-level mapping.
type SignupFailureKind int

const (
	SignupFailureNone SignupFailureKind = iota
	SignupFailureInvalidInput
	SignupFailureInvalidRole
	SignupFailureDuplicate
	SignupFailureLookup
	SignupFailureHash
	SignupFailureInsert
)

// SignupInput is the caller-supplied registration payload.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// SignupResult carries the created identity or failure metadata.
type SignupResult struct {
	Failure  SignupFailureKind
	Err      error
	Identity IdentityRecord
}

// SignupDeps captures signup dependencies.
type SignupDeps struct {
	DefaultRole  string
	ValidRole    func(string) bool
	Now          func() time.Time
	HashPassword func(string) (string, error)
	FindByEmail  func(context.Context, string) (IdentityRecord, bool, error)
	Insert       func(context.Context, IdentityRecord) (IdentityRecord, error)
	// IsDuplicate reports whether an Insert error is a unique-key violation,
	// which covers two concurrent signups racing past FindByEmail.
	IsDuplicate func(error) bool
}

// RunSignup creates an identity. No tokens are issued.
func RunSignup(ctx context.Context, in SignupInput, deps SignupDeps) SignupResult {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return SignupResult{Failure: SignupFailureInvalidInput}
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = deps.DefaultRole
	}
	if deps.ValidRole != nil && !deps.ValidRole(role) {
		return SignupResult{Failure: SignupFailureInvalidRole}
	}

	_, found, err := deps.FindByEmail(ctx, email)
	if err != nil {
		return SignupResult{Failure: SignupFailureLookup, Err: err}
	}
	if found {
		return SignupResult{Failure: SignupFailureDuplicate}
	}

	hash, err := deps.HashPassword(in.Password)
	if err != nil {
		return SignupResult{Failure: SignupFailureHash, Err: err}
	}

	created, err := deps.Insert(ctx, IdentityRecord{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    deps.Now().UTC(),
	})
	if err != nil {
		if deps.IsDuplicate != nil && deps.IsDuplicate(err) {
			return SignupResult{Failure: SignupFailureDuplicate, Err: err}
		}
		return SignupResult{Failure: SignupFailureInsert, Err: err}
	}

	return SignupResult{Identity: created}
}
