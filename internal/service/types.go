package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/craftmint/storefront-server/internal/authz"
	"github.com/craftmint/storefront-server/internal/snapshot"
)

// User is a platform account on the merchant/admin channel. Credential and
// session management live outside this core; users appear here only so that
// grants, ownership and transfer results resolve to real accounts.
type User struct {
	ID       uuid.UUID
	Username string
	Role     authz.Role
}

// Collection is a top-level catalog container and the anchor for every
// authority decision.
type Collection struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Slug      string
	Visible   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category groups products within a collection. It carries no ACL of its
// own; authority is inherited from the parent collection.
type Category struct {
	ID           uuid.UUID
	CollectionID uuid.UUID
	Name         string
	Position     int32
}

// Product is a sellable catalog entry within a collection.
type Product struct {
	ID           uuid.UUID
	CollectionID uuid.UUID
	CategoryID   *uuid.UUID
	Name         string
	SKU          string
	PriceCents   int64
	ImageURLs    []string
	Variants     json.RawMessage
	Metadata     json.RawMessage
	CreatedAt    time.Time
}

// Order is a buyer purchase. Its product and collection references are
// nullable: deleting either parent nulls the reference but the order row and
// its snapshots persist.
type Order struct {
	ID            uuid.UUID
	ProductID     *uuid.UUID
	CollectionID  *uuid.UUID
	WalletAddress string
	Quantity      int32
	TotalCents    int64
	Status        string
	CreatedAt     time.Time
}

// Grant is a delegated access row on a collection.
type Grant struct {
	CollectionID uuid.UUID
	UserID       uuid.UUID
	AccessType   authz.AccessType
	GrantedBy    uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TransferResult is the audit record returned by TransferOwnership.
type TransferResult struct {
	CollectionID     uuid.UUID
	CollectionName   string
	OldOwnerID       uuid.UUID
	OldOwnerUsername string
	NewOwnerID       uuid.UUID
	NewOwnerUsername string
	AccessPreserved  bool
}

// DisplaySource tells which side of the live-or-snapshot fallback produced
// a display value.
type DisplaySource string

const (
	// DisplaySourceLive means the referenced row still exists and was used.
	DisplaySourceLive DisplaySource = "live"

	// DisplaySourceSnapshot means the reference is gone and the frozen
	// copy captured at order creation was used.
	DisplaySourceSnapshot DisplaySource = "snapshot"
)

// ProductDisplay is the product side of an order's display data.
type ProductDisplay struct {
	Source DisplaySource
	snapshot.Product
}

// CollectionDisplay is the collection side of an order's display data.
type CollectionDisplay struct {
	Source DisplaySource
	snapshot.Collection
}

// OrderDisplayData is the denormalized display view of one order, with each
// side sourced from the live row when it still exists and from the frozen
// snapshot otherwise.
type OrderDisplayData struct {
	OrderID    uuid.UUID
	Product    ProductDisplay
	Collection CollectionDisplay
}

// CreateCollectionRequest creates a new top-level collection owned by the
// acting principal.
type CreateCollectionRequest struct {
	Name    string
	Slug    string
	Visible bool
}

// CreateCategoryRequest creates a category within a collection.
type CreateCategoryRequest struct {
	CollectionID uuid.UUID
	Name         string
	Position     int32
}

// CreateProductRequest creates a product within a collection.
type CreateProductRequest struct {
	CollectionID uuid.UUID
	CategoryID   *uuid.UUID
	Name         string
	SKU          string
	PriceCents   int64
	ImageURLs    []string
	Variants     json.RawMessage
	Metadata     json.RawMessage
}

// CreateOrderRequest places an order for a product on behalf of a buyer
// wallet.
type CreateOrderRequest struct {
	ProductID uuid.UUID
	Quantity  int32
}
