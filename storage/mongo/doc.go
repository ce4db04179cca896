// Package mongo stores identities and organizations in MongoDB using the v2
// driver. Unique indexes on identities.email and organizations.name enforce
// the uniqueness rules; invites use $addToSet.
package mongo
