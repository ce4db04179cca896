// Package middleware adapts goTenant.Engine to gin.
//
// [Guard] authenticates the caller and attaches the identity to both the gin
// context and the request context. [AllowedTo] gates a route on a statically
// declared role set. [RequestLogger] tags each request with an id that the
// engine copies into audit events.
package middleware
