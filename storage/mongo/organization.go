package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goTenant/organization"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// organizationDoc stores members as object id references into users.
type organizationDoc struct {
	ID          bson.ObjectID   `bson:"_id,omitempty"`
	Name        string          `bson:"name"`
	Description string          `bson:"description"`
	Members     []bson.ObjectID `bson:"organization_members"`
	CreatedAt   time.Time       `bson:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt"`
}

func (d organizationDoc) organization() organization.Organization {
	members := make([]string, 0, len(d.Members))
	for _, member := range d.Members {
		members = append(members, member.Hex())
	}
	return organization.Organization{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Members:     members,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// updateDoc builds the $set document for patch.
func updateDoc(patch organization.Patch, updatedAt time.Time) bson.D {
	set := bson.D{{Key: "updatedAt", Value: updatedAt.UTC()}}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	return bson.D{{Key: "$set", Value: set}}
}

// OrganizationStore implements organization.Store.
type OrganizationStore struct {
	coll *mongo.Collection
}

// NewOrganizationStore binds the organizations collection of db.
func NewOrganizationStore(db *mongo.Database) *OrganizationStore {
	return &OrganizationStore{coll: db.Collection(OrganizationCollection)}
}

// Insert assigns a fresh object id and starts with no members.
func (s *OrganizationStore) Insert(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	doc := organizationDoc{
		ID:          bson.NewObjectID(),
		Name:        org.Name,
		Description: org.Description,
		Members:     []bson.ObjectID{},
		CreatedAt:   org.CreatedAt.UTC().Truncate(time.Millisecond),
		UpdatedAt:   org.UpdatedAt.UTC().Truncate(time.Millisecond),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return organization.Organization{}, organization.ErrNameTaken
		}
		return organization.Organization{}, fmt.Errorf("insert organization: %w", err)
	}
	return doc.organization(), nil
}

// FindByID returns organization.ErrNotFound for unknown or malformed ids.
func (s *OrganizationStore) FindByID(ctx context.Context, id string) (organization.Organization, error) {
	oid, ok := parseID(id)
	if !ok {
		return organization.Organization{}, organization.ErrNotFound
	}

	var doc organizationDoc
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return organization.Organization{}, organization.ErrNotFound
		}
		return organization.Organization{}, fmt.Errorf("find organization: %w", err)
	}
	return doc.organization(), nil
}

// List returns every organization, oldest first.
func (s *OrganizationStore) List(ctx context.Context) ([]organization.Organization, error) {
	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	var docs []organizationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode organizations: %w", err)
	}

	out := make([]organization.Organization, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.organization())
	}
	return out, nil
}

// Update applies patch and returns the updated document.
func (s *OrganizationStore) Update(ctx context.Context, id string, patch organization.Patch, updatedAt time.Time) (organization.Organization, error) {
	oid, ok := parseID(id)
	if !ok {
		return organization.Organization{}, organization.ErrNotFound
	}

	var doc organizationDoc
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		updateDoc(patch, updatedAt),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case err == nil:
		return doc.organization(), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return organization.Organization{}, organization.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return organization.Organization{}, organization.ErrNameTaken
	default:
		return organization.Organization{}, fmt.Errorf("update organization: %w", err)
	}
}

// Delete removes the organization with id.
func (s *OrganizationStore) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return organization.ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if res.DeletedCount == 0 {
		return organization.ErrNotFound
	}
	return nil
}

// AddMember only touches updatedAt when memberID was not already present.
// memberID must be the hex object id of a users document.
func (s *OrganizationStore) AddMember(ctx context.Context, id, memberID string, updatedAt time.Time) (organization.Organization, error) {
	oid, ok := parseID(id)
	if !ok {
		return organization.Organization{}, organization.ErrNotFound
	}
	member, ok := parseID(memberID)
	if !ok {
		return organization.Organization{}, fmt.Errorf("%w: member id %q", organization.ErrUnknownMember, memberID)
	}

	var doc organizationDoc
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{
			{Key: "_id", Value: oid},
			{Key: "organization_members", Value: bson.D{{Key: "$ne", Value: member}}},
		},
		bson.D{
			{Key: "$addToSet", Value: bson.D{{Key: "organization_members", Value: member}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: updatedAt.UTC()}}},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.organization(), nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either absent or already a member.
		return s.FindByID(ctx, id)
	}
	return organization.Organization{}, fmt.Errorf("invite member: %w", err)
}
