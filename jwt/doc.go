// Package jwt issues and verifies the paired HS256 access and refresh tokens.
//
// Access and refresh tokens are signed with separate secrets and carry a
// "typ" claim so one kind can never be accepted in place of the other.
// Verification failures are classified ([ErrMalformed], [ErrBadSignature],
// [ErrExpired], [ErrWrongKind]) for logging; callers collapse them into a
// single client-facing error.
package jwt
