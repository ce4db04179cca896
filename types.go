package goTenant

import (
	"context"
	"time"
)

// Identity is a registered principal.
type Identity struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IdentityStore persists identities. Implementations return
// [ErrIdentityNotFound] for absent records and [ErrIdentityExists] when
// Insert violates the unique email constraint.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (Identity, error)
	FindByID(ctx context.Context, id string) (Identity, error)
	// Insert assigns the ID and returns the stored identity.
	Insert(ctx context.Context, identity Identity) (Identity, error)
	// UpdatePasswordHash replaces the stored hash after a scheme or cost
	// upgrade.
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// SignupRequest is the input to [Engine.Signup]. An empty Role selects the
// configured default role.
type SignupRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// TokenPair is returned by Signin and RefreshAccess.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
