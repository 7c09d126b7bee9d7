// Package service defines the storefront authorization core: the access
// decision operations, grant management, ownership transfer, and the
// order-snapshot read path, together with the typed errors they return.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/craftmint/storefront-server/internal/authz"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go StorefrontService

// StorefrontService is the operation surface the storefront API, the admin
// dashboard and the webhook processors consult. Every implementation must
// make its mutations transactionally atomic: a failed grant, revoke or
// transfer leaves no partial state behind.
type StorefrontService interface {
	// CheckReadiness checks if the service is ready to serve requests.
	CheckReadiness(ctx context.Context) error

	// CanAccess reports whether the principal may perform the required
	// level on the referenced resource. Plain denial is (false, nil);
	// a reference that does not resolve is (false, ErrNotFound).
	CanAccess(ctx context.Context, p authz.Principal, ref authz.ResourceRef, level authz.AccessLevel) (bool, error)

	// CanAccessOrder reports whether the buyer wallet owns the order.
	// This is the buyer channel's only predicate: no admin, owner or
	// grant fallthrough applies. Merchant-side order access goes through
	// CanAccess on the order's collection instead.
	CanAccessOrder(ctx context.Context, buyer authz.BuyerIdentity, orderID uuid.UUID) (bool, error)

	// CreateCollection creates a collection owned by the actor. The actor
	// must hold the merchant or admin role.
	CreateCollection(ctx context.Context, actor authz.Principal, req CreateCollectionRequest) (*Collection, error)

	// GetCollection returns a collection the actor may view.
	GetCollection(ctx context.Context, actor authz.Principal, id uuid.UUID) (*Collection, error)

	// UpdateCollectionVisibility toggles public visibility; requires edit.
	UpdateCollectionVisibility(ctx context.Context, actor authz.Principal, id uuid.UUID, visible bool) (*Collection, error)

	// DeleteCollection removes a collection. Orders referencing it keep
	// their rows and snapshots; only their reference is nulled.
	DeleteCollection(ctx context.Context, actor authz.Principal, id uuid.UUID) error

	// ListAccessibleCollections returns exactly the collections for which
	// CanAccess(actor, collection, view) holds.
	ListAccessibleCollections(
		ctx context.Context,
		actor authz.Principal,
		opts ...Option[ListCollectionsOptions],
	) ([]*Collection, error)

	// CreateCategory creates a category; requires edit on the collection.
	CreateCategory(ctx context.Context, actor authz.Principal, req CreateCategoryRequest) (*Category, error)

	// CreateProduct creates a product; requires edit on the collection.
	// A category from another collection fails with ErrCategoryMismatch.
	CreateProduct(ctx context.Context, actor authz.Principal, req CreateProductRequest) (*Product, error)

	// GetProduct returns a product the actor may view.
	GetProduct(ctx context.Context, actor authz.Principal, id uuid.UUID) (*Product, error)

	// DeleteProduct removes a product, nulling order references to it.
	DeleteProduct(ctx context.Context, actor authz.Principal, id uuid.UUID) error

	// GrantAccess upserts a delegated grant on a collection. The actor
	// needs edit access; the target may be neither the actor nor the
	// collection owner.
	GrantAccess(
		ctx context.Context,
		actor authz.Principal,
		collectionID, targetUserID uuid.UUID,
		accessType authz.AccessType,
	) (*Grant, error)

	// RevokeAccess removes a delegated grant. Revoking the owner fails
	// with ErrOwnerRevoke; revoking an absent grant is a no-op.
	RevokeAccess(ctx context.Context, actor authz.Principal, collectionID, targetUserID uuid.UUID) error

	// TransferOwnership atomically reassigns a collection's owner.
	// Admin-only; the new owner must hold the merchant or admin role.
	TransferOwnership(
		ctx context.Context,
		actor authz.Principal,
		collectionID, newOwnerID uuid.UUID,
		preserveOldOwnerAccess bool,
	) (*TransferResult, error)

	// CreateOrder places an order, freezing product and collection
	// snapshots into the row before it is committed.
	CreateOrder(ctx context.Context, buyer authz.BuyerIdentity, req CreateOrderRequest) (*Order, error)

	// GetOrderDisplayData returns the order's display view, preferring
	// live product/collection rows and falling back to the snapshots
	// captured at creation when the referenced rows are gone.
	GetOrderDisplayData(ctx context.Context, orderID uuid.UUID) (*OrderDisplayData, error)

	// ListOrdersForWallet returns the buyer's own orders.
	ListOrdersForWallet(ctx context.Context, buyer authz.BuyerIdentity, opts ...Option[ListOrdersOptions]) ([]*Order, error)
}

// Option is a function that sets an option for the ListCollectionsOptions or
// ListOrdersOptions option sets.
type Option[T ListCollectionsOptions | ListOrdersOptions] func(*T) error

// ListCollectionsOptions is the options for the ListAccessibleCollections
// operation.
type ListCollectionsOptions struct {
	Limit int
}

// ListOrdersOptions is the options for the ListOrdersForWallet operation.
type ListOrdersOptions struct {
	Limit int
}

// DefaultPageSize is the page size applied when a listing sets no limit.
const DefaultPageSize = 100
