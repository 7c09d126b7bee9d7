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

// CreateCollection creates a collection owned by the actor.
func (s *dbService) CreateCollection(
	ctx context.Context,
	actor authz.Principal,
	req service.CreateCollectionRequest,
) (*service.Collection, error) {
	ctx, span := s.startSpan(ctx, "dbService.CreateCollection")
	defer span.End()

	if err := service.ValidateCreateCollection(req); err != nil {
		return nil, err
	}
	if !authz.CanCreateCollection(actor) {
		return nil, fmt.Errorf("%w: only merchants and admins may create collections", service.ErrDenied)
	}

	c, err := sqlc.New(s.pool).InsertCollection(ctx, sqlc.InsertCollectionParams{
		OwnerID: actor.ID,
		Name:    req.Name,
		Slug:    req.Slug,
		Visible: req.Visible,
	})
	if err != nil {
		otel.RecordError(span, err)
		if isPgError(err, pgUniqueViolation) {
			return nil, fmt.Errorf("%w: slug %q already in use", service.ErrInvalidInput, req.Slug)
		}
		if isPgError(err, pgForeignKeyViolation) {
			return nil, fmt.Errorf("%w: user %s", service.ErrNotFound, actor.ID)
		}
		return nil, fmt.Errorf("failed to insert collection: %w", err)
	}
	span.SetAttributes(otel.AttrCollectionID.String(c.ID.String()))
	return toServiceCollection(c), nil
}

// GetCollection returns a collection the actor may view.
func (s *dbService) GetCollection(
	ctx context.Context,
	actor authz.Principal,
	id uuid.UUID,
) (*service.Collection, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetCollection")
	defer span.End()
	span.SetAttributes(otel.AttrCollectionID.String(id.String()))

	q := sqlc.New(s.pool)
	acl, err := aclFor(ctx, q, actor, id)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelView) {
		return nil, fmt.Errorf("%w: collection %s", service.ErrDenied, id)
	}

	c, err := q.GetCollectionByID(ctx, id)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return toServiceCollection(c), nil
}

// UpdateCollectionVisibility toggles public visibility; requires edit.
func (s *dbService) UpdateCollectionVisibility(
	ctx context.Context,
	actor authz.Principal,
	id uuid.UUID,
	visible bool,
) (*service.Collection, error) {
	ctx, span := s.startSpan(ctx, "dbService.UpdateCollectionVisibility")
	defer span.End()
	span.SetAttributes(otel.AttrCollectionID.String(id.String()))

	tx, rollback, err := s.beginSerializableTx(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	defer rollback()

	querier := sqlc.New(tx)
	acl, err := aclFor(ctx, querier, actor, id)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return nil, fmt.Errorf("%w: collection %s", service.ErrDenied, id)
	}

	c, err := querier.UpdateCollectionVisibility(ctx, sqlc.UpdateCollectionVisibilityParams{
		ID:      id,
		Visible: visible,
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to update collection visibility: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return toServiceCollection(c), nil
}

// DeleteCollection removes a collection. Categories and products cascade;
// order references are nulled by the schema's SET NULL foreign keys, the
// order rows and their snapshots persist.
func (s *dbService) DeleteCollection(ctx context.Context, actor authz.Principal, id uuid.UUID) error {
	ctx, span := s.startSpan(ctx, "dbService.DeleteCollection")
	defer span.End()
	span.SetAttributes(otel.AttrCollectionID.String(id.String()))

	tx, rollback, err := s.beginSerializableTx(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return err
	}
	defer rollback()

	querier := sqlc.New(tx)
	c, err := querier.GetCollectionByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: collection %s", service.ErrNotFound, id)
	}
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to load collection: %w", err)
	}

	// Deleting a collection is owner-or-admin only; an edit grant is not
	// enough to destroy the whole container.
	if !actor.IsAdmin() && !(actor.Authenticated && actor.ID == c.OwnerID) {
		return fmt.Errorf("%w: only the owner or an admin may delete a collection", service.ErrDenied)
	}

	if err := querier.DeleteCollection(ctx, id); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListAccessibleCollections returns exactly the collections the actor may
// view. The SQL narrows candidates (owner, visible, or granted); the final
// decision always goes through the same authz.Decide used by point checks
// so the two forms cannot drift apart.
func (s *dbService) ListAccessibleCollections(
	ctx context.Context,
	actor authz.Principal,
	opts ...service.Option[service.ListCollectionsOptions],
) ([]*service.Collection, error) {
	ctx, span := s.startSpan(ctx, "dbService.ListAccessibleCollections")
	defer span.End()

	options := &service.ListCollectionsOptions{Limit: service.DefaultPageSize}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	q := sqlc.New(s.pool)
	limit := int32(options.Limit) //nolint:gosec // bounded by DefaultPageSize semantics

	var result []*service.Collection
	switch {
	case actor.IsAdmin():
		rows, err := q.ListCollections(ctx, limit)
		if err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to list collections: %w", err)
		}
		for _, c := range rows {
			result = append(result, toServiceCollection(c))
		}
	case actor.Authenticated:
		rows, err := q.ListCandidateCollectionsForUser(ctx, sqlc.ListCandidateCollectionsForUserParams{
			UserID: actor.ID,
			Limit:  limit,
		})
		if err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to list candidate collections: %w", err)
		}
		for _, row := range rows {
			acl := authz.CollectionACL{
				CollectionID: row.ID,
				OwnerID:      row.OwnerID,
				Visible:      row.Visible,
			}
			if row.GrantedAccess.Valid {
				acl.Granted = authz.AccessType(row.GrantedAccess.AccessType)
			}
			if !authz.Decide(actor, acl, authz.LevelView) {
				continue
			}
			result = append(result, &service.Collection{
				ID:        row.ID,
				OwnerID:   row.OwnerID,
				Name:      row.Name,
				Slug:      row.Slug,
				Visible:   row.Visible,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			})
		}
	default:
		rows, err := q.ListVisibleCollections(ctx, limit)
		if err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to list visible collections: %w", err)
		}
		for _, c := range rows {
			acl := authz.CollectionACL{CollectionID: c.ID, OwnerID: c.OwnerID, Visible: c.Visible}
			if !authz.Decide(actor, acl, authz.LevelView) {
				continue
			}
			result = append(result, toServiceCollection(c))
		}
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(result)))
	return result, nil
}

// CreateCategory creates a category; requires edit on the collection.
func (s *dbService) CreateCategory(
	ctx context.Context,
	actor authz.Principal,
	req service.CreateCategoryRequest,
) (*service.Category, error) {
	ctx, span := s.startSpan(ctx, "dbService.CreateCategory")
	defer span.End()
	span.SetAttributes(otel.AttrCollectionID.String(req.CollectionID.String()))

	if err := service.ValidateCreateCategory(req); err != nil {
		return nil, err
	}

	tx, rollback, err := s.beginSerializableTx(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	defer rollback()

	querier := sqlc.New(tx)
	acl, err := aclFor(ctx, querier, actor, req.CollectionID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return nil, fmt.Errorf("%w: collection %s", service.ErrDenied, req.CollectionID)
	}

	cat, err := querier.InsertCategory(ctx, sqlc.InsertCategoryParams{
		CollectionID: req.CollectionID,
		Name:         req.Name,
		Position:     req.Position,
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return toServiceCategory(cat), nil
}

// CreateProduct creates a product; requires edit on the collection. A
// category from another collection fails with ErrCategoryMismatch.
func (s *dbService) CreateProduct(
	ctx context.Context,
	actor authz.Principal,
	req service.CreateProductRequest,
) (*service.Product, error) {
	ctx, span := s.startSpan(ctx, "dbService.CreateProduct")
	defer span.End()
	span.SetAttributes(otel.AttrCollectionID.String(req.CollectionID.String()))

	if err := service.ValidateCreateProduct(req); err != nil {
		return nil, err
	}

	tx, rollback, err := s.beginSerializableTx(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	defer rollback()

	querier := sqlc.New(tx)
	acl, err := aclFor(ctx, querier, actor, req.CollectionID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return nil, fmt.Errorf("%w: collection %s", service.ErrDenied, req.CollectionID)
	}

	if req.CategoryID != nil {
		cat, err := querier.GetCategoryByID(ctx, *req.CategoryID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: category %s", service.ErrNotFound, *req.CategoryID)
		}
		if err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
		if cat.CollectionID != req.CollectionID {
			return nil, fmt.Errorf("%w: category %s", service.ErrCategoryMismatch, *req.CategoryID)
		}
	}

	p, err := querier.InsertProduct(ctx, sqlc.InsertProductParams{
		CollectionID: req.CollectionID,
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Sku:          req.SKU,
		PriceCents:   req.PriceCents,
		ImageUrls:    req.ImageURLs,
		Variants:     req.Variants,
		Metadata:     req.Metadata,
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	span.SetAttributes(otel.AttrProductID.String(p.ID.String()))
	return toServiceProduct(p), nil
}

// GetProduct returns a product from a collection the actor may view.
func (s *dbService) GetProduct(
	ctx context.Context,
	actor authz.Principal,
	id uuid.UUID,
) (*service.Product, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetProduct")
	defer span.End()
	span.SetAttributes(otel.AttrProductID.String(id.String()))

	q := sqlc.New(s.pool)
	p, err := q.GetProductByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %s", service.ErrNotFound, id)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	acl, err := aclFor(ctx, q, actor, p.CollectionID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelView) {
		return nil, fmt.Errorf("%w: product %s", service.ErrDenied, id)
	}
	return toServiceProduct(p), nil
}

// DeleteProduct removes a product; order references are nulled by the
// schema, order rows persist.
func (s *dbService) DeleteProduct(ctx context.Context, actor authz.Principal, id uuid.UUID) error {
	ctx, span := s.startSpan(ctx, "dbService.DeleteProduct")
	defer span.End()
	span.SetAttributes(otel.AttrProductID.String(id.String()))

	tx, rollback, err := s.beginSerializableTx(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return err
	}
	defer rollback()

	querier := sqlc.New(tx)
	p, err := querier.GetProductByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: product %s", service.ErrNotFound, id)
	}
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to load product: %w", err)
	}

	acl, err := aclFor(ctx, querier, actor, p.CollectionID)
	if err != nil {
		otel.RecordError(span, err)
		return err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return fmt.Errorf("%w: product %s", service.ErrDenied, id)
	}

	if err := querier.DeleteProduct(ctx, id); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
