package goTenant

import "errors"

var (
	// ErrConfig reports deployment misconfiguration, such as an unset signing secret.
	ErrConfig = errors.New("configuration error")
	// ErrDuplicateSubject is returned by Signup when the email is already registered.
	ErrDuplicateSubject = errors.New("subject already exists")
	// ErrInvalidSignup is returned by Signup for missing name, email or password.
	ErrInvalidSignup = errors.New("invalid signup request")
	// ErrInvalidRole is returned by Signup for a role outside the registry.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidCredentials is returned by Signin for unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrMissingToken is returned when no refresh token was presented.
	ErrMissingToken = errors.New("refresh token missing")
	// ErrInvalidToken is returned for unverifiable, superseded or revoked refresh tokens.
	ErrInvalidToken = errors.New("invalid refresh token")
	// ErrSessionExpired is returned when a stored refresh token has passed its exp.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnauthenticated is returned by Authenticate for absent or unverifiable access tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnknownSubject is returned by Authenticate when the token subject no longer exists.
	ErrUnknownSubject = errors.New("unknown subject")
	// ErrForbidden is returned by the role gate.
	ErrForbidden = errors.New("access denied")
	// ErrStoreFailure wraps identity store and refresh session store failures.
	ErrStoreFailure = errors.New("store failure")
	// ErrEngineNotReady is returned when an Engine method is called on a nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrIdentityNotFound is returned by IdentityStore implementations for absent identities.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrIdentityExists is returned by IdentityStore.Insert on a unique email violation.
	ErrIdentityExists = errors.New("identity already exists")
)
