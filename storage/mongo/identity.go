package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	goTenant "github.com/MrEthical07/goTenant"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// identityDoc keeps the field names of existing users documents: the hash
// lives under password and the role under access_level.
type identityDoc struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password"`
	Role         string        `bson:"access_level"`
	CreatedAt    time.Time     `bson:"createdAt"`
}

func (d identityDoc) identity() goTenant.Identity {
	return goTenant.Identity{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// IdentityStore implements goTenant.IdentityStore over the users collection.
type IdentityStore struct {
	coll *mongo.Collection
}

// NewIdentityStore binds the users collection of db.
func NewIdentityStore(db *mongo.Database) *IdentityStore {
	return &IdentityStore{coll: db.Collection(IdentityCollection)}
}

// FindByEmail matches the stored, already normalized email.
func (s *IdentityStore) FindByEmail(ctx context.Context, email string) (goTenant.Identity, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// FindByID treats ids that are not object ids as unknown.
func (s *IdentityStore) FindByID(ctx context.Context, id string) (goTenant.Identity, error) {
	oid, ok := parseID(id)
	if !ok {
		return goTenant.Identity{}, goTenant.ErrIdentityNotFound
	}
	return s.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (s *IdentityStore) findOne(ctx context.Context, filter bson.D) (goTenant.Identity, error) {
	var doc identityDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return goTenant.Identity{}, goTenant.ErrIdentityNotFound
		}
		return goTenant.Identity{}, fmt.Errorf("find identity: %w", err)
	}
	return doc.identity(), nil
}

// Insert assigns a fresh object id. A duplicate email yields
// goTenant.ErrIdentityExists.
func (s *IdentityStore) Insert(ctx context.Context, identity goTenant.Identity) (goTenant.Identity, error) {
	doc := identityDoc{
		ID:           bson.NewObjectID(),
		Name:         identity.Name,
		Email:        identity.Email,
		PasswordHash: identity.PasswordHash,
		Role:         identity.Role,
		// BSON dates carry millisecond precision.
		CreatedAt: identity.CreatedAt.UTC().Truncate(time.Millisecond),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return goTenant.Identity{}, goTenant.ErrIdentityExists
		}
		return goTenant.Identity{}, fmt.Errorf("insert identity: %w", err)
	}
	return doc.identity(), nil
}

// UpdatePasswordHash rewrites the password field of id.
func (s *IdentityStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	oid, ok := parseID(id)
	if !ok {
		return goTenant.ErrIdentityNotFound
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "password", Value: hash}}}},
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return goTenant.ErrIdentityNotFound
	}
	return nil
}
