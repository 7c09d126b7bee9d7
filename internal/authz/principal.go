// Package authz implements the access-control model for the storefront
// catalog: a three-level resource hierarchy (collection -> category/product)
// with owner, grant and visibility based authority, plus a disjoint
// wallet-based buyer identity channel for orders.
package authz

import "github.com/google/uuid"

// Role is a platform-wide user role.
type Role string

const (
	// RoleAdmin is the global override role; admins pass every check.
	RoleAdmin Role = "admin"

	// RoleMerchant may create collections and owns the ones it creates.
	RoleMerchant Role = "merchant"

	// RoleUser is a plain authenticated user with no standing authority.
	RoleUser Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMerchant, RoleUser:
		return true
	}
	return false
}

// Principal is the actor on the merchant/admin channel. It is a plain value
// passed explicitly by callers; nothing in this package reads ambient
// session state.
type Principal struct {
	// ID is the user id. Zero for anonymous principals.
	ID uuid.UUID

	// Role is the platform role. Empty for anonymous principals.
	Role Role

	// Authenticated is false for public (unauthenticated) requests.
	Authenticated bool
}

// Anonymous returns the public principal.
func Anonymous() Principal {
	return Principal{}
}

// NewPrincipal returns an authenticated principal with the given id and role.
func NewPrincipal(id uuid.UUID, role Role) Principal {
	return Principal{ID: id, Role: role, Authenticated: true}
}

// IsAdmin reports whether p carries the global admin override.
func (p Principal) IsAdmin() bool {
	return p.Authenticated && p.Role == RoleAdmin
}

// BuyerIdentity is a wallet-address identity on the storefront purchase
// channel. It is deliberately disjoint from Principal: a buyer never gains
// merchant-side authority, and a merchant session never satisfies buyer
// checks.
type BuyerIdentity struct {
	// WalletAddress is the buyer's wallet address as presented in the
	// request credential pair.
	WalletAddress string
}

// Matches reports whether the buyer owns the given order wallet address.
// Comparison is exact; address normalization happens at resolution time.
func (b BuyerIdentity) Matches(orderWallet string) bool {
	return b.WalletAddress != "" && b.WalletAddress == orderWallet
}
