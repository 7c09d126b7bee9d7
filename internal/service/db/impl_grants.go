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

// GrantAccess creates or upgrades a delegated grant on a collection. The
// actor needs edit on the collection; the owner never carries a grant row.
// Granting the same access twice is idempotent.
func (s *dbService) GrantAccess(
	ctx context.Context,
	actor authz.Principal,
	collectionID, userID uuid.UUID,
	access authz.AccessType,
) (*service.Grant, error) {
	ctx, span := s.startSpan(ctx, "dbService.GrantAccess")
	defer span.End()
	span.SetAttributes(
		otel.AttrCollectionID.String(collectionID.String()),
		otel.AttrAccessType.String(string(access)),
	)

	if !access.Valid() {
		return nil, fmt.Errorf("%w: %q", service.ErrInvalidAccessType, access)
	}

	tx, rollback, err := s.beginSerializableTx(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	defer rollback()

	querier := sqlc.New(tx)
	acl, err := aclFor(ctx, querier, actor, collectionID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return nil, fmt.Errorf("%w: collection %s", service.ErrDenied, collectionID)
	}

	if _, err := querier.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", service.ErrNotFound, userID)
		}
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if actor.Authenticated && actor.ID == userID {
		return nil, fmt.Errorf("%w: cannot grant access to yourself", service.ErrSelfGrant)
	}
	if userID == acl.OwnerID {
		return nil, fmt.Errorf("%w: owner access is implied by ownership", service.ErrOwnerGrant)
	}

	g, err := querier.UpsertCollectionAccess(ctx, sqlc.UpsertCollectionAccessParams{
		CollectionID: collectionID,
		UserID:       userID,
		AccessType:   sqlc.AccessType(access),
		GrantedBy:    actor.ID,
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to upsert grant: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return toServiceGrant(g), nil
}

// RevokeAccess removes a delegated grant. Revoking an absent grant is a
// no-op; revoking from the current owner is rejected because ownership is
// not grant-backed.
func (s *dbService) RevokeAccess(
	ctx context.Context,
	actor authz.Principal,
	collectionID, userID uuid.UUID,
) error {
	ctx, span := s.startSpan(ctx, "dbService.RevokeAccess")
	defer span.End()
	span.SetAttributes(otel.AttrCollectionID.String(collectionID.String()))

	tx, rollback, err := s.beginSerializableTx(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return err
	}
	defer rollback()

	querier := sqlc.New(tx)
	acl, err := aclFor(ctx, querier, actor, collectionID)
	if err != nil {
		otel.RecordError(span, err)
		return err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return fmt.Errorf("%w: collection %s", service.ErrDenied, collectionID)
	}
	if userID == acl.OwnerID {
		return fmt.Errorf("%w: owner access cannot be revoked", service.ErrOwnerRevoke)
	}

	if err := querier.DeleteCollectionAccess(ctx, sqlc.DeleteCollectionAccessParams{
		CollectionID: collectionID,
		UserID:       userID,
	}); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete grant: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
