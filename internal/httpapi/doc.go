// Package httpapi exposes the Engine and the organization service over gin.
//
// Routes live under /api. Every error body is {"message": "..."}; the
// specific failure kind only reaches the logs.
package httpapi
