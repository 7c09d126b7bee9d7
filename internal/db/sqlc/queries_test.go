package sqlc_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftmint/storefront-server/database"
	"github.com/craftmint/storefront-server/internal/db/sqlc"
)

func seedUser(t *testing.T, q *sqlc.Queries, username string, role sqlc.UserRole) sqlc.User {
	t.Helper()
	u, err := q.InsertUser(context.Background(), sqlc.InsertUserParams{
		Username: username,
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func seedCollection(t *testing.T, q *sqlc.Queries, ownerID uuid.UUID, slug string, visible bool) sqlc.Collection {
	t.Helper()
	c, err := q.InsertCollection(context.Background(), sqlc.InsertCollectionParams{
		OwnerID: ownerID,
		Name:    "Collection " + slug,
		Slug:    slug,
		Visible: visible,
	})
	require.NoError(t, err)
	return c
}

func TestGrantUpsertIsIdempotent(t *testing.T) {
	db, cleanup := database.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	q := sqlc.New(db)

	owner := seedUser(t, q, "alice", sqlc.UserRoleMerchant)
	grantee := seedUser(t, q, "bob", sqlc.UserRoleUser)
	c := seedCollection(t, q, owner.ID, "prints", false)

	first, err := q.UpsertCollectionAccess(ctx, sqlc.UpsertCollectionAccessParams{
		CollectionID: c.ID,
		UserID:       grantee.ID,
		AccessType:   sqlc.AccessTypeView,
		GrantedBy:    owner.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, sqlc.AccessTypeView, first.AccessType)

	// Upgrading replaces the row in place instead of conflicting.
	second, err := q.UpsertCollectionAccess(ctx, sqlc.UpsertCollectionAccessParams{
		CollectionID: c.ID,
		UserID:       grantee.ID,
		AccessType:   sqlc.AccessTypeEdit,
		GrantedBy:    owner.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, sqlc.AccessTypeEdit, second.AccessType)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	got, err := q.GetCollectionAccess(ctx, sqlc.GetCollectionAccessParams{
		CollectionID: c.ID,
		UserID:       grantee.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, sqlc.AccessTypeEdit, got.AccessType)

	require.NoError(t, q.DeleteCollectionAccess(ctx, sqlc.DeleteCollectionAccessParams{
		CollectionID: c.ID,
		UserID:       grantee.ID,
	}))
	_, err = q.GetCollectionAccess(ctx, sqlc.GetCollectionAccessParams{
		CollectionID: c.ID,
		UserID:       grantee.ID,
	})
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	// Deleting an absent grant is a no-op, not an error.
	require.NoError(t, q.DeleteCollectionAccess(ctx, sqlc.DeleteCollectionAccessParams{
		CollectionID: c.ID,
		UserID:       grantee.ID,
	}))
}

func TestOrderReferencesNullOnDelete(t *testing.T) {
	db, cleanup := database.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	q := sqlc.New(db)

	owner := seedUser(t, q, "alice", sqlc.UserRoleMerchant)
	c := seedCollection(t, q, owner.ID, "mugs", true)

	p, err := q.InsertProduct(ctx, sqlc.InsertProductParams{
		CollectionID: c.ID,
		Name:         "Mug",
		Sku:          "MUG-1",
		PriceCents:   1200,
	})
	require.NoError(t, err)

	productID := p.ID
	collectionID := c.ID
	o, err := q.InsertOrder(ctx, sqlc.InsertOrderParams{
		ProductID:          &productID,
		CollectionID:       &collectionID,
		WalletAddress:      "0xabc",
		Quantity:           2,
		TotalCents:         2400,
		ProductSnapshot:    []byte(`{"schema_version":1,"name":"Mug"}`),
		CollectionSnapshot: []byte(`{"schema_version":1,"slug":"mugs"}`),
	})
	require.NoError(t, err)

	require.NoError(t, q.DeleteProduct(ctx, p.ID))

	got, err := q.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProductID)
	require.NotNil(t, got.CollectionID)
	assert.Equal(t, c.ID, *got.CollectionID)

	// Dropping the whole collection nulls the second reference; the order
	// row and its snapshots survive both deletes.
	require.NoError(t, q.DeleteCollection(ctx, c.ID))

	got, err = q.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProductID)
	assert.Nil(t, got.CollectionID)
	assert.JSONEq(t, `{"schema_version":1,"name":"Mug"}`, string(got.ProductSnapshot))
	assert.Equal(t, int64(2400), got.TotalCents)
}

func TestListCandidateCollectionsForUser(t *testing.T) {
	db, cleanup := database.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	q := sqlc.New(db)

	owner := seedUser(t, q, "alice", sqlc.UserRoleMerchant)
	other := seedUser(t, q, "carol", sqlc.UserRoleMerchant)
	viewer := seedUser(t, q, "bob", sqlc.UserRoleUser)

	owned := seedCollection(t, q, viewer.ID, "owned", false)
	visible := seedCollection(t, q, owner.ID, "visible", true)
	granted := seedCollection(t, q, owner.ID, "granted", false)
	seedCollection(t, q, other.ID, "unreachable", false)

	_, err := q.UpsertCollectionAccess(ctx, sqlc.UpsertCollectionAccessParams{
		CollectionID: granted.ID,
		UserID:       viewer.ID,
		AccessType:   sqlc.AccessTypeView,
		GrantedBy:    owner.ID,
	})
	require.NoError(t, err)

	rows, err := q.ListCandidateCollectionsForUser(ctx, sqlc.ListCandidateCollectionsForUserParams{
		UserID: viewer.ID,
		Limit:  100,
	})
	require.NoError(t, err)

	byID := make(map[uuid.UUID]sqlc.ListCandidateCollectionsForUserRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	require.Len(t, byID, 3)

	assert.Contains(t, byID, owned.ID)
	assert.Contains(t, byID, visible.ID)
	require.Contains(t, byID, granted.ID)
	require.True(t, byID[granted.ID].GrantedAccess.Valid)
	assert.Equal(t, sqlc.AccessTypeView, byID[granted.ID].GrantedAccess.AccessType)
	assert.False(t, byID[visible.ID].GrantedAccess.Valid)
}

func TestCollectionSlugUnique(t *testing.T) {
	db, cleanup := database.SetupTestDB(t)
	defer cleanup()

	q := sqlc.New(db)
	owner := seedUser(t, q, "alice", sqlc.UserRoleMerchant)
	seedCollection(t, q, owner.ID, "dup", true)

	_, err := q.InsertCollection(context.Background(), sqlc.InsertCollectionParams{
		OwnerID: owner.ID,
		Name:    "Duplicate",
		Slug:    "dup",
		Visible: false,
	})
	require.Error(t, err)
}
