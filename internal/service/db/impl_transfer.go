package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/craftmint/storefront-server/internal/authz"
	"github.com/craftmint/storefront-server/internal/db/sqlc"
	"github.com/craftmint/storefront-server/internal/otel"
	"github.com/craftmint/storefront-server/internal/service"
)

// TransferOwnership reassigns a collection to a new owner. Admin only. The
// new owner must hold a role that could own collections (merchant or
// admin). Grant rows for both the outgoing and incoming owner are removed
// so that ownership stays the only source of owner-level access; when
// preserveAccess is set the outgoing owner keeps an edit grant instead.
// The whole exchange runs in one serializable transaction.
func (s *dbService) TransferOwnership(
	ctx context.Context,
	actor authz.Principal,
	collectionID, newOwnerID uuid.UUID,
	preserveAccess bool,
) (*service.TransferResult, error) {
	ctx, span := s.startSpan(ctx, "dbService.TransferOwnership")
	defer span.End()
	span.SetAttributes(otel.AttrCollectionID.String(collectionID.String()))

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins may transfer ownership", service.ErrDenied)
	}

	tx, rollback, err := s.beginSerializableTx(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	defer rollback()

	querier := sqlc.New(tx)
	c, err := querier.GetCollectionByID(ctx, collectionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: collection %s", service.ErrNotFound, collectionID)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	if c.OwnerID == newOwnerID {
		return nil, fmt.Errorf("%w: user %s already owns collection %s",
			service.ErrAlreadyOwner, newOwnerID, collectionID)
	}

	oldOwner, err := querier.GetUserByID(ctx, c.OwnerID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load current owner: %w", err)
	}
	newOwner, err := querier.GetUserByID(ctx, newOwnerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", service.ErrNotFound, newOwnerID)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load new owner: %w", err)
	}
	if role := toAuthzRole(newOwner.Role); role != authz.RoleMerchant && role != authz.RoleAdmin {
		return nil, fmt.Errorf("%w: user %s has role %s", service.ErrRoleIneligible, newOwnerID, role)
	}

	if _, err := querier.UpdateCollectionOwner(ctx, sqlc.UpdateCollectionOwnerParams{
		ID:      collectionID,
		OwnerID: newOwnerID,
	}); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to update collection owner: %w", err)
	}

	// The incoming owner may have held a delegated grant; it is now stale.
	for _, uid := range []uuid.UUID{oldOwner.ID, newOwnerID} {
		if err := querier.DeleteCollectionAccess(ctx, sqlc.DeleteCollectionAccessParams{
			CollectionID: collectionID,
			UserID:       uid,
		}); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to clear stale grant: %w", err)
		}
	}

	if preserveAccess {
		if _, err := querier.UpsertCollectionAccess(ctx, sqlc.UpsertCollectionAccessParams{
			CollectionID: collectionID,
			UserID:       oldOwner.ID,
			AccessType:   sqlc.AccessTypeEdit,
			GrantedBy:    actor.ID,
		}); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to preserve outgoing owner access: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &service.TransferResult{
		CollectionID:     collectionID,
		CollectionName:   c.Name,
		OldOwnerID:       oldOwner.ID,
		OldOwnerUsername: oldOwner.Username,
		NewOwnerID:       newOwner.ID,
		NewOwnerUsername: newOwner.Username,
		AccessPreserved:  preserveAccess,
	}, nil
}
