// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunSignup, RunSignin, RunRefresh, RunRevoke,
// RunAuthenticate) accepts a typed dependency struct and returns a result
// carrying either the payload or a failure kind. The Engine maps failure
// kinds to its exported sentinel errors, audit events and metrics.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the identity store, credential hasher,
// token codec and refresh session store. They do NOT own any of these
// resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goTenant (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency fields.
package flows
