// Package permission maps role names to bits and builds the static role sets
// checked by the role gate.
//
// Roles are registered once at startup. Each protected operation declares a
// [RoleSet] up front; the gate then answers membership with a single mask test.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O.
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import goTenant, jwt, or session.
//   - Register roles after [Registry.Freeze].
package permission
