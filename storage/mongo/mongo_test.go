package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	goTenant "github.com/MrEthical07/goTenant"
	"github.com/MrEthical07/goTenant/organization"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestParseID(t *testing.T) {
	oid := bson.NewObjectID()

	got, ok := parseID(" " + oid.Hex() + " ")
	require.True(t, ok)
	assert.Equal(t, oid, got)

	for _, bad := range []string{"", "not-hex", "123", uuid.NewString()} {
		_, ok := parseID(bad)
		assert.False(t, ok, bad)
	}
}

func TestIdentityDocConversion(t *testing.T) {
	oid := bson.NewObjectID()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))

	identity := identityDoc{
		ID:           oid,
		Name:         "Ann",
		Email:        "ann@example.com",
		PasswordHash: "h",
		Role:         "admin",
		CreatedAt:    created,
	}.identity()

	assert.Equal(t, oid.Hex(), identity.ID)
	assert.Equal(t, "admin", identity.Role)
	assert.Equal(t, time.UTC, identity.CreatedAt.Location())
	assert.True(t, identity.CreatedAt.Equal(created))
}

func TestOrganizationDocNilMembers(t *testing.T) {
	org := organizationDoc{ID: bson.NewObjectID(), Name: "Acme"}.organization()
	require.NotNil(t, org.Members)
	assert.Empty(t, org.Members)
}

func TestDocumentFieldNames(t *testing.T) {
	member := bson.NewObjectID()

	raw, err := bson.Marshal(identityDoc{ID: bson.NewObjectID(), PasswordHash: "h", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "h", bson.Raw(raw).Lookup("password").StringValue())
	assert.Equal(t, "admin", bson.Raw(raw).Lookup("access_level").StringValue())

	raw, err = bson.Marshal(organizationDoc{ID: bson.NewObjectID(), Members: []bson.ObjectID{member}})
	require.NoError(t, err)
	values, err := bson.Raw(raw).Lookup("organization_members").Array().Values()
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, member, values[0].ObjectID())

	org := organizationDoc{ID: bson.NewObjectID(), Members: []bson.ObjectID{member}}.organization()
	assert.Equal(t, []string{member.Hex()}, org.Members)
}

func TestUpdateDoc(t *testing.T) {
	at := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	name := "Acme"

	got := updateDoc(organization.Patch{Name: &name}, at)
	want := bson.D{{Key: "$set", Value: bson.D{
		{Key: "updatedAt", Value: at},
		{Key: "name", Value: "Acme"},
	}}}
	assert.Equal(t, want, got)

	onlyTime := updateDoc(organization.Patch{}, at)
	assert.Len(t, onlyTime[0].Value.(bson.D), 1)
}

// The remaining tests need a live server: MONGO_TEST_URI=mongodb://localhost:27017.
func liveDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := Connect(ctx, uri)
	require.NoError(t, err)

	db := client.Database("gotenant_test_" + bson.NewObjectID().Hex())
	require.NoError(t, EnsureIndexes(ctx, db))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestLiveIdentityStore(t *testing.T) {
	db := liveDatabase(t)
	ctx := context.Background()
	store := NewIdentityStore(db)

	created, err := store.Insert(ctx, goTenant.Identity{Name: "Ann", Email: "ann@example.com", PasswordHash: "h", Role: "member"})
	require.NoError(t, err)

	got, err := store.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = store.Insert(ctx, goTenant.Identity{Name: "Dup", Email: "ann@example.com", PasswordHash: "h", Role: "member"})
	require.ErrorIs(t, err, goTenant.ErrIdentityExists)

	_, err = store.FindByID(ctx, "bogus")
	require.ErrorIs(t, err, goTenant.ErrIdentityNotFound)

	require.NoError(t, store.UpdatePasswordHash(ctx, created.ID, "$2a$10$new"))
	got, err = store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$new", got.PasswordHash)
	require.ErrorIs(t, store.UpdatePasswordHash(ctx, bson.NewObjectID().Hex(), "h"), goTenant.ErrIdentityNotFound)
}

func TestLiveOrganizationStore(t *testing.T) {
	db := liveDatabase(t)
	ctx := context.Background()
	store := NewOrganizationStore(db)
	now := time.Now().UTC()

	org, err := store.Insert(ctx, organization.Organization{Name: "Acme", Description: "twelve chars plus", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	_, err = store.Insert(ctx, organization.Organization{Name: "Acme", Description: "twelve chars plus", CreatedAt: now, UpdatedAt: now})
	require.ErrorIs(t, err, organization.ErrNameTaken)

	member := bson.NewObjectID().Hex()
	_, err = store.AddMember(ctx, org.ID, member, now)
	require.NoError(t, err)
	got, err := store.AddMember(ctx, org.ID, member, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{member}, got.Members)

	_, err = store.AddMember(ctx, org.ID, "u-1", now)
	require.ErrorIs(t, err, organization.ErrUnknownMember)
	_, err = store.AddMember(ctx, bson.NewObjectID().Hex(), member, now)
	require.ErrorIs(t, err, organization.ErrNotFound)

	require.NoError(t, store.Delete(ctx, org.ID))
	require.ErrorIs(t, store.Delete(ctx, org.ID), organization.ErrNotFound)
}
