// Package internal holds packages private to goTenant.
//
// # Sub-packages
//
//   - flows: pure-function orchestrators for every Engine operation
//   - httpapi: gin routes and handlers for the HTTP API
//   - config: environment and .env loading
//   - telemetry: OpenTelemetry tracer provider setup
package internal
