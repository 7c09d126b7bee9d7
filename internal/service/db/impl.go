// Package database provides a database-backed implementation of the
// StorefrontService interface.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/craftmint/storefront-server/internal/authz"
	"github.com/craftmint/storefront-server/internal/db/sqlc"
	"github.com/craftmint/storefront-server/internal/otel"
	"github.com/craftmint/storefront-server/internal/service"
)

// Postgres error codes checked when translating constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// options holds configuration options for the database service
type options struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// Option is a functional option for configuring the database service
type Option func(*options) error

// WithConnectionPool creates a new database-backed storefront service with
// the given pgx pool. The caller is responsible for closing the pool when it
// is done.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for the database service.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// dbService implements the StorefrontService interface using a database
// backend
type dbService struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ service.StorefrontService = (*dbService)(nil)

// New creates a new database-backed storefront service with the given
// options
func New(opts ...Option) (service.StorefrontService, error) {
	o := &options{}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}

	return &dbService{
		pool:   o.pool,
		tracer: o.tracer,
	}, nil
}

// CheckReadiness checks if the service is ready to serve requests
func (s *dbService) CheckReadiness(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// startSpan starts a new span for database operations. If the tracer is
// nil, it returns a no-op span from the context.
func (s *dbService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.StartSpan(ctx, s.tracer, name)
}

// beginSerializableTx begins a serializable read-write transaction and
// returns it with a rollback function safe to defer.
func (s *dbService) beginSerializableTx(ctx context.Context) (pgx.Tx, func(), error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	rollback := func() {
		err := tx.Rollback(ctx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "Failed to rollback transaction", "error", err)
		}
	}
	return tx, rollback, nil
}

// isPgError reports whether err is a Postgres error with the given code.
func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func toServiceCollection(c sqlc.Collection) *service.Collection {
	return &service.Collection{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Slug:      c.Slug,
		Visible:   c.Visible,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toServiceCategory(c sqlc.Category) *service.Category {
	return &service.Category{
		ID:           c.ID,
		CollectionID: c.CollectionID,
		Name:         c.Name,
		Position:     c.Position,
	}
}

func toServiceProduct(p sqlc.Product) *service.Product {
	return &service.Product{
		ID:           p.ID,
		CollectionID: p.CollectionID,
		CategoryID:   p.CategoryID,
		Name:         p.Name,
		SKU:          p.Sku,
		PriceCents:   p.PriceCents,
		ImageURLs:    p.ImageUrls,
		Variants:     p.Variants,
		Metadata:     p.Metadata,
		CreatedAt:    p.CreatedAt,
	}
}

func toServiceOrder(o sqlc.Order) *service.Order {
	return &service.Order{
		ID:            o.ID,
		ProductID:     o.ProductID,
		CollectionID:  o.CollectionID,
		WalletAddress: o.WalletAddress,
		Quantity:      o.Quantity,
		TotalCents:    o.TotalCents,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}

func toServiceGrant(g sqlc.CollectionAccess) *service.Grant {
	return &service.Grant{
		CollectionID: g.CollectionID,
		UserID:       g.UserID,
		AccessType:   authz.AccessType(g.AccessType),
		GrantedBy:    g.GrantedBy,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

func toAuthzRole(r sqlc.UserRole) authz.Role {
	return authz.Role(r)
}
