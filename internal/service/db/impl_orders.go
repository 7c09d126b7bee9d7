package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/craftmint/storefront-server/internal/authz"
	"github.com/craftmint/storefront-server/internal/db/sqlc"
	"github.com/craftmint/storefront-server/internal/otel"
	"github.com/craftmint/storefront-server/internal/service"
	"github.com/craftmint/storefront-server/internal/snapshot"
)

// CreateOrder places an order for the buyer wallet. Product and collection
// snapshots are frozen into the row inside the same transaction that reads
// the live rows, so the captured state is exactly what the buyer saw.
func (s *dbService) CreateOrder(
	ctx context.Context,
	buyer authz.BuyerIdentity,
	req service.CreateOrderRequest,
) (*service.Order, error) {
	ctx, span := s.startSpan(ctx, "dbService.CreateOrder")
	defer span.End()
	span.SetAttributes(otel.AttrProductID.String(req.ProductID.String()))

	if err := service.ValidateCreateOrder(req); err != nil {
		return nil, err
	}
	if buyer.WalletAddress == "" {
		return nil, fmt.Errorf("%w: buyer wallet address is required", service.ErrInvalidInput)
	}

	tx, rollback, err := s.beginSerializableTx(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	defer rollback()

	querier := sqlc.New(tx)
	p, err := querier.GetProductByID(ctx, req.ProductID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %s", service.ErrNotFound, req.ProductID)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	c, err := querier.GetCollectionByID(ctx, p.CollectionID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	productSnap, err := json.Marshal(snapshot.Product{
		SchemaVersion: snapshot.SchemaVersion,
		ProductID:     p.ID,
		Name:          p.Name,
		SKU:           p.Sku,
		PriceCents:    p.PriceCents,
		ImageURLs:     p.ImageUrls,
		Variants:      p.Variants,
		Metadata:      p.Metadata,
		CanonicalURL:  snapshot.CanonicalProductURL(c.Slug, p.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode product snapshot: %w", err)
	}
	collectionSnap, err := json.Marshal(snapshot.Collection{
		SchemaVersion: snapshot.SchemaVersion,
		CollectionID:  c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		OwnerID:       c.OwnerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection snapshot: %w", err)
	}

	productID := p.ID
	collectionID := c.ID
	o, err := querier.InsertOrder(ctx, sqlc.InsertOrderParams{
		ProductID:          &productID,
		CollectionID:       &collectionID,
		WalletAddress:      buyer.WalletAddress,
		Quantity:           req.Quantity,
		TotalCents:         p.PriceCents * int64(req.Quantity),
		ProductSnapshot:    productSnap,
		CollectionSnapshot: collectionSnap,
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	span.SetAttributes(otel.AttrOrderID.String(o.ID.String()))
	return toServiceOrder(o), nil
}

// GetOrderDisplayData returns the order's display view, preferring the live
// product/collection rows and falling back to the frozen snapshots when the
// referenced rows are gone.
func (s *dbService) GetOrderDisplayData(ctx context.Context, orderID uuid.UUID) (*service.OrderDisplayData, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetOrderDisplayData")
	defer span.End()
	span.SetAttributes(otel.AttrOrderID.String(orderID.String()))

	q := sqlc.New(s.pool)
	o, err := q.GetOrderByID(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %s", service.ErrNotFound, orderID)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	productSnap, err := snapshot.DecodeProduct(o.ProductSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to decode product snapshot: %w", err)
	}
	collectionSnap, err := snapshot.DecodeCollection(o.CollectionSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to decode collection snapshot: %w", err)
	}

	display := &service.OrderDisplayData{
		OrderID: orderID,
		Product: service.ProductDisplay{
			Source:  service.DisplaySourceSnapshot,
			Product: productSnap,
		},
		Collection: service.CollectionDisplay{
			Source:     service.DisplaySourceSnapshot,
			Collection: collectionSnap,
		},
	}

	// Slug for the canonical URL: live collection when present, otherwise
	// the one frozen into the collection snapshot.
	slug := collectionSnap.Slug
	if o.CollectionID != nil {
		c, err := q.GetCollectionByID(ctx, *o.CollectionID)
		switch {
		case err == nil:
			slug = c.Slug
			display.Collection = service.CollectionDisplay{
				Source: service.DisplaySourceLive,
				Collection: snapshot.Collection{
					SchemaVersion: snapshot.SchemaVersion,
					CollectionID:  c.ID,
					Name:          c.Name,
					Slug:          c.Slug,
					OwnerID:       c.OwnerID,
				},
			}
		case errors.Is(err, pgx.ErrNoRows):
			// reference raced a delete, keep the snapshot
		default:
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to load collection: %w", err)
		}
	}
	if o.ProductID != nil {
		p, err := q.GetProductByID(ctx, *o.ProductID)
		switch {
		case err == nil:
			display.Product = service.ProductDisplay{
				Source: service.DisplaySourceLive,
				Product: snapshot.Product{
					SchemaVersion: snapshot.SchemaVersion,
					ProductID:     p.ID,
					Name:          p.Name,
					SKU:           p.Sku,
					PriceCents:    p.PriceCents,
					ImageURLs:     p.ImageUrls,
					Variants:      p.Variants,
					Metadata:      p.Metadata,
					CanonicalURL:  snapshot.CanonicalProductURL(slug, p.ID),
				},
			}
		case errors.Is(err, pgx.ErrNoRows):
			// keep the snapshot
		default:
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
	}
	return display, nil
}

// ListOrdersForWallet returns the buyer's own orders, newest first.
func (s *dbService) ListOrdersForWallet(
	ctx context.Context,
	buyer authz.BuyerIdentity,
	opts ...service.Option[service.ListOrdersOptions],
) ([]*service.Order, error) {
	ctx, span := s.startSpan(ctx, "dbService.ListOrdersForWallet")
	defer span.End()

	options := &service.ListOrdersOptions{Limit: service.DefaultPageSize}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	if buyer.WalletAddress == "" {
		return nil, fmt.Errorf("%w: buyer wallet address is required", service.ErrInvalidInput)
	}

	rows, err := sqlc.New(s.pool).ListOrdersByWallet(ctx, sqlc.ListOrdersByWalletParams{
		WalletAddress: buyer.WalletAddress,
		Limit:         int32(options.Limit), //nolint:gosec // bounded page size
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	result := make([]*service.Order, 0, len(rows))
	for _, o := range rows {
		result = append(result, toServiceOrder(o))
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(result)))
	return result, nil
}
