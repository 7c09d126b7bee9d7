package authz

import "github.com/google/uuid"

// AccessType is the level carried by a delegated grant row.
type AccessType string

const (
	// AccessView allows reading a collection and its contents.
	AccessView AccessType = "view"

	// AccessEdit allows modifying a collection and its contents.
	// Edit implies view.
	AccessEdit AccessType = "edit"
)

// Valid reports whether t is a grantable access type.
func (t AccessType) Valid() bool {
	return t == AccessView || t == AccessEdit
}

// Satisfies reports whether a grant of type t covers the required level.
// An edit grant covers view and edit; a view grant covers only view.
// No grant covers create, which is decided by role, not delegation.
func (t AccessType) Satisfies(level AccessLevel) bool {
	switch level {
	case LevelView:
		return t == AccessView || t == AccessEdit
	case LevelEdit:
		return t == AccessEdit
	default:
		return false
	}
}

// AccessLevel is the level required by an operation.
type AccessLevel string

const (
	// LevelView is required to read a resource.
	LevelView AccessLevel = "view"

	// LevelEdit is required to modify a resource or manage its grants.
	LevelEdit AccessLevel = "edit"

	// LevelCreate is required to create a new top-level collection.
	LevelCreate AccessLevel = "create"
)

// ResourceKind identifies the table a ResourceRef points into.
type ResourceKind string

const (
	// KindCollection refers to a collection by its own id.
	KindCollection ResourceKind = "collection"

	// KindCategory refers to a category; authority is inherited from its
	// parent collection.
	KindCategory ResourceKind = "category"

	// KindProduct refers to a product; authority is inherited from its
	// parent collection.
	KindProduct ResourceKind = "product"
)

// ResourceRef identifies a resource in the catalog hierarchy. All authority
// is anchored at the collection level, so category and product refs must be
// resolved to their owning collection before a decision is made.
type ResourceRef struct {
	Kind ResourceKind
	ID   uuid.UUID
}

// CollectionRef returns a ref to a collection.
func CollectionRef(id uuid.UUID) ResourceRef {
	return ResourceRef{Kind: KindCollection, ID: id}
}

// CategoryRef returns a ref to a category.
func CategoryRef(id uuid.UUID) ResourceRef {
	return ResourceRef{Kind: KindCategory, ID: id}
}

// ProductRef returns a ref to a product.
func ProductRef(id uuid.UUID) ResourceRef {
	return ResourceRef{Kind: KindProduct, ID: id}
}

// CollectionACL is the explicit authority snapshot for one collection as
// seen by one principal. It is the single input to Decide; building it is
// the storage layer's job, deciding on it never touches storage.
type CollectionACL struct {
	// CollectionID is the collection the decision is about.
	CollectionID uuid.UUID

	// OwnerID is the collection's current owner.
	OwnerID uuid.UUID

	// Visible is the collection's public visibility flag.
	Visible bool

	// Granted is the access type delegated to the principal under
	// evaluation, or empty when no grant row exists for them.
	Granted AccessType
}

// Decide reports whether p may perform the required level on the collection
// described by acl. This is the one authoritative predicate: every
// point-check and every listing filter goes through it, in-process and
// database-backed implementations alike.
//
// Order of authority: admin override, ownership (implicit edit), public
// visibility (view only), delegated grant.
func Decide(p Principal, acl CollectionACL, level AccessLevel) bool {
	if p.IsAdmin() {
		return true
	}
	if p.Authenticated && p.ID == acl.OwnerID {
		return true
	}
	if level == LevelView && acl.Visible {
		return true
	}
	if !p.Authenticated || acl.Granted == "" {
		return false
	}
	return acl.Granted.Satisfies(level)
}

// CanCreateCollection reports whether p may create a new top-level
// collection. Only merchants and admins may; this is a role check, never a
// grant check.
func CanCreateCollection(p Principal) bool {
	return p.Authenticated && (p.Role == RoleAdmin || p.Role == RoleMerchant)
}
