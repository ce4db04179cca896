// Package goTenant provides the authentication core of a multi-tenant backend:
// credential signup and signin, paired HS256 access/refresh tokens, a
// Redis-backed refresh session per subject, and access-token authentication
// for the request guard.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goTenant is the public surface. It exposes [Engine], [Builder], [Config], the
// sentinel error taxonomy and value types ([Identity], [TokenPair]). Flow
// orchestration lives under internal/flows; token, hashing and session
// primitives live in the jwt, password and session packages.
//
// # What this package must NOT do
//
//   - Speak HTTP. Transport adapters live in middleware and internal/httpapi.
//   - Perform I/O outside of Engine methods.
//   - Import any sub-package that re-imports goTenant (no import cycles).
//
// # Session model
//
// Each subject has at most one valid refresh token. Signin overwrites it,
// Revoke deletes it, and RefreshAccess accepts a token only while it is the
// stored one. Refresh does not rotate unless [SessionConfig.RotateOnRefresh]
// is set.
package goTenant
