// Package session persists refresh-token records in Redis.
//
// Each subject owns at most one record, stored as
//
//	<prefix>:<subjectID> -> refresh token   (EX = refresh TTL)
//
// A new signin overwrites the record, which supersedes any refresh token
// issued earlier for the same subject. Revocation deletes it.
//
// # Architecture boundaries
//
// This package stores opaque token strings. It does NOT parse JWTs or decide
// whether a presented token is acceptable; the Engine compares the presented
// value against [Store.Get].
//
// # What this package must NOT do
//
//   - Import goTenant, jwt, or permission (no upward imports).
//   - Retry failed Redis commands. Errors surface as [ErrRedisUnavailable].
package session
