// Package sqlite stores identities and organizations in an embedded SQLite
// database (modernc.org/sqlite, no cgo). It backs local development and the
// HTTP integration tests; production deployments use storage/mongo.
package sqlite
