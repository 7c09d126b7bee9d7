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

// resolveCollectionID maps a resource ref to its owning collection id.
// Categories and products carry no authority of their own; every decision is
// anchored at the collection.
func resolveCollectionID(ctx context.Context, q *sqlc.Queries, ref authz.ResourceRef) (uuid.UUID, error) {
	switch ref.Kind {
	case authz.KindCollection:
		c, err := q.GetCollectionByID(ctx, ref.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%w: collection %s", service.ErrNotFound, ref.ID)
		}
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to resolve collection: %w", err)
		}
		return c.ID, nil
	case authz.KindCategory:
		cat, err := q.GetCategoryByID(ctx, ref.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%w: category %s", service.ErrNotFound, ref.ID)
		}
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to resolve category: %w", err)
		}
		return cat.CollectionID, nil
	case authz.KindProduct:
		p, err := q.GetProductByID(ctx, ref.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%w: product %s", service.ErrNotFound, ref.ID)
		}
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to resolve product: %w", err)
		}
		return p.CollectionID, nil
	default:
		return uuid.Nil, fmt.Errorf("%w: unknown resource kind %q", service.ErrNotFound, ref.Kind)
	}
}

// aclFor builds the authority snapshot authz.Decide evaluates: the
// collection's owner and visibility, plus the principal's grant if one
// exists.
func aclFor(
	ctx context.Context,
	q *sqlc.Queries,
	p authz.Principal,
	collectionID uuid.UUID,
) (authz.CollectionACL, error) {
	c, err := q.GetCollectionByID(ctx, collectionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return authz.CollectionACL{}, fmt.Errorf("%w: collection %s", service.ErrNotFound, collectionID)
	}
	if err != nil {
		return authz.CollectionACL{}, fmt.Errorf("failed to load collection: %w", err)
	}

	acl := authz.CollectionACL{
		CollectionID: c.ID,
		OwnerID:      c.OwnerID,
		Visible:      c.Visible,
	}
	if p.Authenticated {
		g, err := q.GetCollectionAccess(ctx, sqlc.GetCollectionAccessParams{
			CollectionID: collectionID,
			UserID:       p.ID,
		})
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return authz.CollectionACL{}, fmt.Errorf("failed to load grant: %w", err)
		}
		if err == nil {
			acl.Granted = authz.AccessType(g.AccessType)
		}
	}
	return acl, nil
}

// CanAccess implements the merchant/admin channel access predicate.
func (s *dbService) CanAccess(
	ctx context.Context,
	p authz.Principal,
	ref authz.ResourceRef,
	level authz.AccessLevel,
) (bool, error) {
	ctx, span := s.startSpan(ctx, "dbService.CanAccess")
	defer span.End()
	span.SetAttributes(otel.AttrAccessLevel.String(string(level)))

	// Admin override precedes resolution; admins are never subject to
	// ownership or grant checks.
	if p.IsAdmin() {
		return true, nil
	}
	if level == authz.LevelCreate && ref.Kind == authz.KindCollection && ref.ID == uuid.Nil {
		return authz.CanCreateCollection(p), nil
	}

	q := sqlc.New(s.pool)
	collectionID, err := resolveCollectionID(ctx, q, ref)
	if err != nil {
		otel.RecordError(span, err)
		return false, err
	}
	span.SetAttributes(otel.AttrCollectionID.String(collectionID.String()))

	acl, err := aclFor(ctx, q, p, collectionID)
	if err != nil {
		otel.RecordError(span, err)
		return false, err
	}
	return authz.Decide(p, acl, level), nil
}

// CanAccessOrder implements the buyer channel predicate: wallet equality
// only. Merchant-side sessions never satisfy it.
func (s *dbService) CanAccessOrder(
	ctx context.Context,
	buyer authz.BuyerIdentity,
	orderID uuid.UUID,
) (bool, error) {
	ctx, span := s.startSpan(ctx, "dbService.CanAccessOrder")
	defer span.End()
	span.SetAttributes(otel.AttrOrderID.String(orderID.String()))

	order, err := sqlc.New(s.pool).GetOrderByID(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("%w: order %s", service.ErrNotFound, orderID)
	}
	if err != nil {
		otel.RecordError(span, err)
		return false, fmt.Errorf("failed to load order: %w", err)
	}
	return buyer.Matches(order.WalletAddress), nil
}
