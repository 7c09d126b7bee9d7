package inmemory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftmint/storefront-server/internal/authz"
	"github.com/craftmint/storefront-server/internal/service"
)

type fixture struct {
	svc      *Service
	admin    authz.Principal
	owner    authz.Principal
	merchant authz.Principal
	user     authz.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	adminID := uuid.New()
	ownerID := uuid.New()
	merchantID := uuid.New()
	userID := uuid.New()

	svc := New(WithUsers(
		service.User{ID: adminID, Username: "root", Role: authz.RoleAdmin},
		service.User{ID: ownerID, Username: "alice", Role: authz.RoleMerchant},
		service.User{ID: merchantID, Username: "carol", Role: authz.RoleMerchant},
		service.User{ID: userID, Username: "bob", Role: authz.RoleUser},
	))

	return &fixture{
		svc:      svc,
		admin:    authz.NewPrincipal(adminID, authz.RoleAdmin),
		owner:    authz.NewPrincipal(ownerID, authz.RoleMerchant),
		merchant: authz.NewPrincipal(merchantID, authz.RoleMerchant),
		user:     authz.NewPrincipal(userID, authz.RoleUser),
	}
}

func (f *fixture) createCollection(t *testing.T, visible bool, slug string) *service.Collection {
	t.Helper()

	c, err := f.svc.CreateCollection(context.Background(), f.owner, service.CreateCollectionRequest{
		Name:    "Collection " + slug,
		Slug:    slug,
		Visible: visible,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) createProduct(t *testing.T, collectionID uuid.UUID) *service.Product {
	t.Helper()

	p, err := f.svc.CreateProduct(context.Background(), f.owner, service.CreateProductRequest{
		CollectionID: collectionID,
		Name:         "Hand-thrown mug",
		SKU:          "MUG-001",
		PriceCents:   2400,
		ImageURLs:    []string{"https://cdn.example.com/mug.jpg"},
		Variants:     json.RawMessage(`[{"name":"glaze","options":["matte","gloss"]}]`),
	})
	require.NoError(t, err)
	return p
}

func TestCreateCollectionRequiresMerchantRole(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateCollection(ctx, f.user, service.CreateCollectionRequest{
		Name: "Nope", Slug: "nope",
	})
	require.ErrorIs(t, err, service.ErrDenied)

	_, err = f.svc.CreateCollection(ctx, authz.Anonymous(), service.CreateCollectionRequest{
		Name: "Nope", Slug: "nope",
	})
	require.ErrorIs(t, err, service.ErrDenied)

	c, err := f.svc.CreateCollection(ctx, f.merchant, service.CreateCollectionRequest{
		Name: "Prints", Slug: "prints",
	})
	require.NoError(t, err)
	assert.Equal(t, f.merchant.ID, c.OwnerID)
}

func TestCanAccessOwnerAndVisibility(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	hidden := f.createCollection(t, false, "hidden")
	visible := f.createCollection(t, true, "visible")

	for _, level := range []authz.AccessLevel{authz.LevelView, authz.LevelEdit} {
		ok, err := f.svc.CanAccess(ctx, f.owner, authz.CollectionRef(hidden.ID), level)
		require.NoError(t, err)
		assert.True(t, ok, "owner should have %s", level)

		ok, err = f.svc.CanAccess(ctx, f.admin, authz.CollectionRef(hidden.ID), level)
		require.NoError(t, err)
		assert.True(t, ok, "admin should have %s", level)
	}

	// Public-read fallthrough applies to anonymous and stranger alike.
	ok, err := f.svc.CanAccess(ctx, authz.Anonymous(), authz.CollectionRef(visible.ID), authz.LevelView)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CanAccess(ctx, f.user, authz.CollectionRef(visible.ID), authz.LevelView)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CanAccess(ctx, authz.Anonymous(), authz.CollectionRef(visible.ID), authz.LevelEdit)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.CanAccess(ctx, f.user, authz.CollectionRef(hidden.ID), authz.LevelView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanAccessResolutionFailureIsNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.CanAccess(context.Background(), f.user, authz.CollectionRef(uuid.New()), authz.LevelView)
	require.ErrorIs(t, err, service.ErrNotFound)
	require.NotErrorIs(t, err, service.ErrDenied)
}

func TestCanAccessInheritsThroughHierarchy(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c := f.createCollection(t, false, "ceramics")
	cat, err := f.svc.CreateCategory(ctx, f.owner, service.CreateCategoryRequest{
		CollectionID: c.ID, Name: "Mugs",
	})
	require.NoError(t, err)
	p := f.createProduct(t, c.ID)

	// A grant on the collection covers its categories and products.
	_, err = f.svc.GrantAccess(ctx, f.owner, c.ID, f.user.ID, authz.AccessView)
	require.NoError(t, err)

	for _, ref := range []authz.ResourceRef{
		authz.CollectionRef(c.ID),
		authz.CategoryRef(cat.ID),
		authz.ProductRef(p.ID),
	} {
		ok, err := f.svc.CanAccess(ctx, f.user, ref, authz.LevelView)
		require.NoError(t, err)
		assert.True(t, ok, "view should be inherited for %s", ref.Kind)

		ok, err = f.svc.CanAccess(ctx, f.user, ref, authz.LevelEdit)
		require.NoError(t, err)
		assert.False(t, ok, "edit should not be inherited for %s", ref.Kind)
	}
}

// The concrete scenario: hidden collection, view grant, then upgrade to edit.
func TestGrantUpgradeScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c1 := f.createCollection(t, false, "c1")

	_, err := f.svc.GrantAccess(ctx, f.owner, c1.ID, f.user.ID, authz.AccessView)
	require.NoError(t, err)

	ok, err := f.svc.CanAccess(ctx, f.user, authz.CollectionRef(c1.ID), authz.LevelView)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CanAccess(ctx, f.user, authz.CollectionRef(c1.ID), authz.LevelEdit)
	require.NoError(t, err)
	assert.False(t, ok)

	// Upgrade is an upsert on the same (collection, user) pair.
	_, err = f.svc.GrantAccess(ctx, f.owner, c1.ID, f.user.ID, authz.AccessEdit)
	require.NoError(t, err)

	ok, err = f.svc.CanAccess(ctx, f.user, authz.CollectionRef(c1.ID), authz.LevelEdit)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGrantAccessRejections(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c := f.createCollection(t, false, "rejections")

	_, err := f.svc.GrantAccess(ctx, f.owner, c.ID, f.user.ID, authz.AccessType("manage"))
	require.ErrorIs(t, err, service.ErrInvalidAccessType)

	_, err = f.svc.GrantAccess(ctx, f.owner, c.ID, f.owner.ID, authz.AccessView)
	require.ErrorIs(t, err, service.ErrSelfGrant)

	// An admin granting to the collection owner hits the owner rule.
	_, err = f.svc.GrantAccess(ctx, f.admin, c.ID, f.owner.ID, authz.AccessView)
	require.ErrorIs(t, err, service.ErrOwnerGrant)

	// A stranger with no edit access cannot manage grants.
	_, err = f.svc.GrantAccess(ctx, f.user, c.ID, f.merchant.ID, authz.AccessView)
	require.ErrorIs(t, err, service.ErrDenied)

	_, err = f.svc.GrantAccess(ctx, f.owner, c.ID, uuid.New(), authz.AccessView)
	require.ErrorIs(t, err, service.ErrNotFound)

	// An edit grantee may manage grants on the collection.
	_, err = f.svc.GrantAccess(ctx, f.owner, c.ID, f.merchant.ID, authz.AccessEdit)
	require.NoError(t, err)
	_, err = f.svc.GrantAccess(ctx, f.merchant, c.ID, f.user.ID, authz.AccessView)
	require.NoError(t, err)
}

func TestRevokeAccess(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c := f.createCollection(t, false, "revoke")

	_, err := f.svc.GrantAccess(ctx, f.owner, c.ID, f.user.ID, authz.AccessEdit)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.RevokeAccess(ctx, f.owner, c.ID, f.owner.ID), service.ErrOwnerRevoke)

	require.NoError(t, f.svc.RevokeAccess(ctx, f.owner, c.ID, f.user.ID))

	ok, err := f.svc.CanAccess(ctx, f.user, authz.CollectionRef(c.ID), authz.LevelView)
	require.NoError(t, err)
	assert.False(t, ok)

	// Revoking an absent grant is idempotent.
	require.NoError(t, f.svc.RevokeAccess(ctx, f.owner, c.ID, f.user.ID))
}

func TestTransferOwnership(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c := f.createCollection(t, false, "transfer")

	_, err := f.svc.TransferOwnership(ctx, f.owner, c.ID, f.merchant.ID, true)
	require.ErrorIs(t, err, service.ErrDenied, "only admins may transfer")

	_, err = f.svc.TransferOwnership(ctx, f.admin, c.ID, f.user.ID, true)
	require.ErrorIs(t, err, service.ErrRoleIneligible)

	_, err = f.svc.TransferOwnership(ctx, f.admin, c.ID, f.owner.ID, true)
	require.ErrorIs(t, err, service.ErrAlreadyOwner)

	res, err := f.svc.TransferOwnership(ctx, f.admin, c.ID, f.merchant.ID, true)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, res.OldOwnerID)
	assert.Equal(t, "alice", res.OldOwnerUsername)
	assert.Equal(t, f.merchant.ID, res.NewOwnerID)
	assert.Equal(t, "carol", res.NewOwnerUsername)
	assert.True(t, res.AccessPreserved)

	got, err := f.svc.GetCollection(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, f.merchant.ID, got.OwnerID)

	// The former owner keeps edit, now expressed as a delegated grant.
	ok, err := f.svc.CanAccess(ctx, f.owner, authz.CollectionRef(c.ID), authz.LevelEdit)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTransferOwnershipWithoutPreserve(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c := f.createCollection(t, false, "transfer-drop")

	_, err := f.svc.TransferOwnership(ctx, f.admin, c.ID, f.merchant.ID, false)
	require.NoError(t, err)

	ok, err := f.svc.CanAccess(ctx, f.owner, authz.CollectionRef(c.ID), authz.LevelView)
	require.NoError(t, err)
	assert.False(t, ok, "former owner loses access when not preserved")
}

func TestTransferOwnershipDropsStaleNewOwnerGrant(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c := f.createCollection(t, false, "stale-grant")

	_, err := f.svc.GrantAccess(ctx, f.owner, c.ID, f.merchant.ID, authz.AccessView)
	require.NoError(t, err)

	_, err = f.svc.TransferOwnership(ctx, f.admin, c.ID, f.merchant.ID, false)
	require.NoError(t, err)

	// The new owner's authority now flows from owner_id alone; no grant
	// row may remain for them.
	_, err = f.svc.GrantAccess(ctx, f.admin, c.ID, f.merchant.ID, authz.AccessView)
	require.ErrorIs(t, err, service.ErrOwnerGrant)

	ok, err := f.svc.CanAccess(ctx, f.merchant, authz.CollectionRef(c.ID), authz.LevelEdit)
	require.NoError(t, err)
	assert.True(t, ok)
}

// Filter/point-check equivalence: the listing must match filtering the full
// collection set one-by-one through CanAccess.
func TestListAccessibleCollectionsMatchesPointChecks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	visible := f.createCollection(t, true, "pub")
	hidden := f.createCollection(t, false, "priv")
	granted := f.createCollection(t, false, "shared")

	_, err := f.svc.GrantAccess(ctx, f.owner, granted.ID, f.user.ID, authz.AccessView)
	require.NoError(t, err)

	all := []*service.Collection{visible, hidden, granted}

	principals := map[string]authz.Principal{
		"admin":     f.admin,
		"owner":     f.owner,
		"grantee":   f.user,
		"stranger":  f.merchant,
		"anonymous": authz.Anonymous(),
	}

	for name, p := range principals {
		listed, err := f.svc.ListAccessibleCollections(ctx, p)
		require.NoError(t, err)

		listedIDs := make(map[uuid.UUID]bool, len(listed))
		for _, c := range listed {
			listedIDs[c.ID] = true
		}

		for _, c := range all {
			ok, err := f.svc.CanAccess(ctx, p, authz.CollectionRef(c.ID), authz.LevelView)
			require.NoError(t, err)
			assert.Equal(t, ok, listedIDs[c.ID],
				"%s: listing and point check disagree on %s", name, c.Slug)
		}
		assert.Len(t, listed, len(listedIDs))
	}
}

func TestSnapshotDurabilityAfterDeletes(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c := f.createCollection(t, true, "ceramics")
	p := f.createProduct(t, c.ID)

	buyer := authz.BuyerIdentity{WalletAddress: "0xbuyer"}
	order, err := f.svc.CreateOrder(ctx, buyer, service.CreateOrderRequest{
		ProductID: p.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4800), order.TotalCents)

	// While the catalog rows are live the display data comes from them.
	display, err := f.svc.GetOrderDisplayData(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, service.DisplaySourceLive, display.Product.Source)
	assert.Equal(t, service.DisplaySourceLive, display.Collection.Source)
	assert.Equal(t, "Hand-thrown mug", display.Product.Name)

	require.NoError(t, f.svc.DeleteProduct(ctx, f.owner, p.ID))
	require.NoError(t, f.svc.DeleteCollection(ctx, f.owner, c.ID))

	// The order row survives with nulled references.
	orders, err := f.svc.ListOrdersForWallet(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Nil(t, orders[0].ProductID)
	assert.Nil(t, orders[0].CollectionID)

	// Display data falls back to the frozen snapshots.
	display, err = f.svc.GetOrderDisplayData(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, service.DisplaySourceSnapshot, display.Product.Source)
	assert.Equal(t, service.DisplaySourceSnapshot, display.Collection.Source)
	assert.Equal(t, "Hand-thrown mug", display.Product.Name)
	assert.Equal(t, "MUG-001", display.Product.SKU)
	assert.Equal(t, []string{"https://cdn.example.com/mug.jpg"}, display.Product.ImageURLs)
	assert.Equal(t, "ceramics", display.Collection.Slug)
	assert.Equal(t, f.owner.ID, display.Collection.OwnerID)
}

func TestBuyerMerchantChannelIsolation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c := f.createCollection(t, true, "isolated")
	p := f.createProduct(t, c.ID)

	buyer := authz.BuyerIdentity{WalletAddress: "0xbuyer"}
	order, err := f.svc.CreateOrder(ctx, buyer, service.CreateOrderRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	ok, err := f.svc.CanAccessOrder(ctx, buyer, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// A different wallet is denied even if it belongs to the collection
	// owner on the merchant channel: the channels never merge.
	ownerWallet := authz.BuyerIdentity{WalletAddress: "0xalice"}
	ok, err = f.svc.CanAccessOrder(ctx, ownerWallet, order.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.CanAccessOrder(ctx, buyer, uuid.New())
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestCreateProductCategoryMismatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c1 := f.createCollection(t, false, "one")
	c2 := f.createCollection(t, false, "two")

	cat, err := f.svc.CreateCategory(ctx, f.owner, service.CreateCategoryRequest{
		CollectionID: c2.ID, Name: "Mugs",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateProduct(ctx, f.owner, service.CreateProductRequest{
		CollectionID: c1.ID,
		CategoryID:   &cat.ID,
		Name:         "Mug",
		SKU:          "MUG-002",
		PriceCents:   1000,
	})
	require.ErrorIs(t, err, service.ErrCategoryMismatch)
}

func TestDeleteCollectionRequiresOwnerOrAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c := f.createCollection(t, false, "guarded")

	// Even an edit grantee may not delete the collection itself.
	_, err := f.svc.GrantAccess(ctx, f.owner, c.ID, f.merchant.ID, authz.AccessEdit)
	require.NoError(t, err)
	require.ErrorIs(t, f.svc.DeleteCollection(ctx, f.merchant, c.ID), service.ErrDenied)

	require.NoError(t, f.svc.DeleteCollection(ctx, f.admin, c.ID))
}
