package service

import "errors"

var (
	// ErrNotFound is returned when a resource or principal does not
	// resolve. Callers collapse this with ErrDenied at the API boundary
	// so that private resources do not leak their existence.
	ErrNotFound = errors.New("not found")

	// ErrDenied is returned when a resource resolved but the actor is not
	// authorized for the operation. Kept distinct from ErrNotFound for
	// logging; presented identically to end users.
	ErrDenied = errors.New("access denied")

	// ErrInvalidAccessType is returned when a grant request carries an
	// access type outside {view, edit}.
	ErrInvalidAccessType = errors.New("invalid access type")

	// ErrSelfGrant is returned when an actor attempts to grant access to
	// themselves.
	ErrSelfGrant = errors.New("cannot grant access to yourself")

	// ErrOwnerGrant is returned when a grant targets the collection's own
	// owner, whose access is implicit and never held as a grant row.
	ErrOwnerGrant = errors.New("cannot grant access to the collection owner")

	// ErrOwnerRevoke is returned when a revoke targets the collection's
	// owner; ownership is removed only through TransferOwnership.
	ErrOwnerRevoke = errors.New("cannot revoke the collection owner's access")

	// ErrAlreadyOwner is returned when an ownership transfer names the
	// current owner as the new owner.
	ErrAlreadyOwner = errors.New("user is already the collection owner")

	// ErrRoleIneligible is returned when an ownership transfer names a new
	// owner without the merchant or admin role.
	ErrRoleIneligible = errors.New("new owner must have merchant or admin role")

	// ErrCategoryMismatch is returned when a product names a category that
	// belongs to a different collection.
	ErrCategoryMismatch = errors.New("category belongs to a different collection")

	// ErrInvalidInput is returned when a request fails basic validation.
	ErrInvalidInput = errors.New("invalid input")
)
