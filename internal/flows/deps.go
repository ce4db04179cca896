package flows

import (
	"strings"
	"time"
)

// Deps groups flow dependency sets. The root engine builds this once and
// delegates request methods to the matching flow implementation.
type Deps struct {
	Signup       SignupDeps
	Signin       SigninDeps
	Refresh      RefreshDeps
	Revoke       RevokeDeps
	Authenticate AuthenticateDeps
}

// IdentityRecord is the flow-local identity model.
type IdentityRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// NormalizeEmail trims and lower-cases an address for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
