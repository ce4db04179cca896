// Package organization implements tenant organizations: CRUD over a document
// store plus inviting registered identities as members.
//
// Persistence is behind [Store]; storage/mongo and storage/sqlite provide
// implementations. Member lookup goes through the identity store so an
// invite can only name an email that has signed up.
package organization
