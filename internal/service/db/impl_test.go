package database_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	migrations "github.com/craftmint/storefront-server/database"
	"github.com/craftmint/storefront-server/internal/authz"
	"github.com/craftmint/storefront-server/internal/db/sqlc"
	"github.com/craftmint/storefront-server/internal/service"
	dbservice "github.com/craftmint/storefront-server/internal/service/db"
)

type harness struct {
	svc      service.StorefrontService
	queries  *sqlc.Queries
	admin    authz.Principal
	merchant authz.Principal
	user     authz.Principal
	adminID  uuid.UUID
	userID   uuid.UUID
}

func newHarness(t *testing.T, pool *pgxpool.Pool) *harness {
	t.Helper()

	svc, err := dbservice.New(dbservice.WithConnectionPool(pool))
	require.NoError(t, err)

	q := sqlc.New(pool)
	ctx := context.Background()

	admin, err := q.InsertUser(ctx, sqlc.InsertUserParams{Username: "root", Role: sqlc.UserRoleAdmin})
	require.NoError(t, err)
	merchant, err := q.InsertUser(ctx, sqlc.InsertUserParams{Username: "alice", Role: sqlc.UserRoleMerchant})
	require.NoError(t, err)
	user, err := q.InsertUser(ctx, sqlc.InsertUserParams{Username: "bob", Role: sqlc.UserRoleUser})
	require.NoError(t, err)

	return &harness{
		svc:      svc,
		queries:  q,
		admin:    authz.NewPrincipal(admin.ID, authz.RoleAdmin),
		merchant: authz.NewPrincipal(merchant.ID, authz.RoleMerchant),
		user:     authz.NewPrincipal(user.ID, authz.RoleUser),
		adminID:  admin.ID,
		userID:   user.ID,
	}
}

func TestDBServiceGrantFlow(t *testing.T) {
	pool, cleanup := migrations.SetupTestPool(t)
	defer cleanup()

	h := newHarness(t, pool)
	ctx := context.Background()

	c, err := h.svc.CreateCollection(ctx, h.merchant, service.CreateCollectionRequest{
		Name: "Prints", Slug: "prints", Visible: false,
	})
	require.NoError(t, err)

	// No grant yet: the stranger cannot even see the collection.
	ok, err := h.svc.CanAccess(ctx, h.user, authz.CollectionRef(c.ID), authz.LevelView)
	require.NoError(t, err)
	assert.False(t, ok)

	g, err := h.svc.GrantAccess(ctx, h.merchant, c.ID, h.userID, authz.AccessView)
	require.NoError(t, err)
	assert.Equal(t, authz.AccessView, g.AccessType)
	assert.Equal(t, h.merchant.ID, g.GrantedBy)

	ok, err = h.svc.CanAccess(ctx, h.user, authz.CollectionRef(c.ID), authz.LevelView)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.svc.CanAccess(ctx, h.user, authz.CollectionRef(c.ID), authz.LevelEdit)
	require.NoError(t, err)
	assert.False(t, ok)

	// Upgrade to edit, same row.
	g, err = h.svc.GrantAccess(ctx, h.merchant, c.ID, h.userID, authz.AccessEdit)
	require.NoError(t, err)
	assert.Equal(t, authz.AccessEdit, g.AccessType)

	ok, err = h.svc.CanAccess(ctx, h.user, authz.CollectionRef(c.ID), authz.LevelEdit)
	require.NoError(t, err)
	assert.True(t, ok)

	// Rejections.
	_, err = h.svc.GrantAccess(ctx, h.merchant, c.ID, h.merchant.ID, authz.AccessEdit)
	assert.ErrorIs(t, err, service.ErrSelfGrant)
	_, err = h.svc.GrantAccess(ctx, h.admin, c.ID, h.merchant.ID, authz.AccessEdit)
	assert.ErrorIs(t, err, service.ErrOwnerGrant)
	_, err = h.svc.GrantAccess(ctx, h.merchant, c.ID, h.userID, authz.AccessType("admin"))
	assert.ErrorIs(t, err, service.ErrInvalidAccessType)

	err = h.svc.RevokeAccess(ctx, h.merchant, c.ID, h.merchant.ID)
	assert.ErrorIs(t, err, service.ErrOwnerRevoke)

	require.NoError(t, h.svc.RevokeAccess(ctx, h.merchant, c.ID, h.userID))
	ok, err = h.svc.CanAccess(ctx, h.user, authz.CollectionRef(c.ID), authz.LevelView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDBServiceTransferOwnership(t *testing.T) {
	pool, cleanup := migrations.SetupTestPool(t)
	defer cleanup()

	h := newHarness(t, pool)
	ctx := context.Background()

	carol, err := h.queries.InsertUser(ctx, sqlc.InsertUserParams{Username: "carol", Role: sqlc.UserRoleMerchant})
	require.NoError(t, err)
	carolPrincipal := authz.NewPrincipal(carol.ID, authz.RoleMerchant)

	c, err := h.svc.CreateCollection(ctx, h.merchant, service.CreateCollectionRequest{
		Name: "Handover", Slug: "handover", Visible: false,
	})
	require.NoError(t, err)

	// The incoming owner holds a soon-to-be-stale grant.
	_, err = h.svc.GrantAccess(ctx, h.merchant, c.ID, carol.ID, authz.AccessView)
	require.NoError(t, err)

	_, err = h.svc.TransferOwnership(ctx, h.merchant, c.ID, carol.ID, false)
	assert.ErrorIs(t, err, service.ErrDenied)

	_, err = h.svc.TransferOwnership(ctx, h.admin, c.ID, h.userID, false)
	assert.ErrorIs(t, err, service.ErrRoleIneligible)

	result, err := h.svc.TransferOwnership(ctx, h.admin, c.ID, carol.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "alice", result.OldOwnerUsername)
	assert.Equal(t, "carol", result.NewOwnerUsername)
	assert.True(t, result.AccessPreserved)

	// The new owner decides by ownership, not by the old grant row.
	_, err = h.queries.GetCollectionAccess(ctx, sqlc.GetCollectionAccessParams{
		CollectionID: c.ID, UserID: carol.ID,
	})
	assert.Error(t, err)

	ok, err := h.svc.CanAccess(ctx, carolPrincipal, authz.CollectionRef(c.ID), authz.LevelEdit)
	require.NoError(t, err)
	assert.True(t, ok)

	// The outgoing owner keeps edit via the preserved grant.
	ok, err = h.svc.CanAccess(ctx, h.merchant, authz.CollectionRef(c.ID), authz.LevelEdit)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = h.svc.TransferOwnership(ctx, h.admin, c.ID, carol.ID, false)
	assert.ErrorIs(t, err, service.ErrAlreadyOwner)
}

func TestDBServiceOrderSnapshotFallback(t *testing.T) {
	pool, cleanup := migrations.SetupTestPool(t)
	defer cleanup()

	h := newHarness(t, pool)
	ctx := context.Background()

	c, err := h.svc.CreateCollection(ctx, h.merchant, service.CreateCollectionRequest{
		Name: "Shop", Slug: "shop", Visible: true,
	})
	require.NoError(t, err)

	p, err := h.svc.CreateProduct(ctx, h.merchant, service.CreateProductRequest{
		CollectionID: c.ID,
		Name:         "Mug",
		SKU:          "MUG-1",
		PriceCents:   1200,
	})
	require.NoError(t, err)

	buyer := authz.BuyerIdentity{WalletAddress: "0xabc"}
	o, err := h.svc.CreateOrder(ctx, buyer, service.CreateOrderRequest{
		ProductID: p.ID,
		Quantity:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), o.TotalCents)

	ok, err := h.svc.CanAccessOrder(ctx, buyer, o.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = h.svc.CanAccessOrder(ctx, authz.BuyerIdentity{WalletAddress: "0xother"}, o.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	display, err := h.svc.GetOrderDisplayData(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, service.DisplaySourceLive, display.Product.Source)
	assert.Equal(t, service.DisplaySourceLive, display.Collection.Source)
	assert.Equal(t, "Mug", display.Product.Name)

	// The catalog rows disappear; the display falls back to the frozen
	// snapshots and the order total is untouched.
	require.NoError(t, h.svc.DeleteCollection(ctx, h.merchant, c.ID))

	display, err = h.svc.GetOrderDisplayData(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, service.DisplaySourceSnapshot, display.Product.Source)
	assert.Equal(t, service.DisplaySourceSnapshot, display.Collection.Source)
	assert.Equal(t, "Mug", display.Product.Name)
	assert.Equal(t, "shop", display.Collection.Slug)

	orders, err := h.svc.ListOrdersForWallet(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Nil(t, orders[0].ProductID)
	assert.Nil(t, orders[0].CollectionID)
	assert.Equal(t, int64(3600), orders[0].TotalCents)
}

func TestDBServiceListMatchesPointChecks(t *testing.T) {
	pool, cleanup := migrations.SetupTestPool(t)
	defer cleanup()

	h := newHarness(t, pool)
	ctx := context.Background()

	visible, err := h.svc.CreateCollection(ctx, h.merchant, service.CreateCollectionRequest{
		Name: "Visible", Slug: "visible", Visible: true,
	})
	require.NoError(t, err)
	hidden, err := h.svc.CreateCollection(ctx, h.merchant, service.CreateCollectionRequest{
		Name: "Hidden", Slug: "hidden", Visible: false,
	})
	require.NoError(t, err)
	granted, err := h.svc.CreateCollection(ctx, h.merchant, service.CreateCollectionRequest{
		Name: "Granted", Slug: "granted", Visible: false,
	})
	require.NoError(t, err)
	_, err = h.svc.GrantAccess(ctx, h.merchant, granted.ID, h.userID, authz.AccessView)
	require.NoError(t, err)

	all := []uuid.UUID{visible.ID, hidden.ID, granted.ID}
	principals := map[string]authz.Principal{
		"anonymous": authz.Anonymous(),
		"admin":     h.admin,
		"owner":     h.merchant,
		"grantee":   h.user,
	}

	for name, p := range principals {
		t.Run(name, func(t *testing.T) {
			listed, err := h.svc.ListAccessibleCollections(ctx, p)
			require.NoError(t, err)

			listedSet := make(map[uuid.UUID]bool, len(listed))
			for _, c := range listed {
				listedSet[c.ID] = true
			}

			// Listing and point checks must agree exactly.
			for _, id := range all {
				ok, err := h.svc.CanAccess(ctx, p, authz.CollectionRef(id), authz.LevelView)
				require.NoError(t, err)
				assert.Equal(t, ok, listedSet[id], "collection %s", id)
			}
		})
	}
}
