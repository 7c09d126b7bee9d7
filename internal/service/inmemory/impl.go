// Package inmemory provides an in-memory implementation of the
// StorefrontService interface. It is the reference implementation of the
// access model: every decision goes through authz.Decide over state held in
// plain maps, guarded by a single RWMutex so that each operation is atomic.
package inmemory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/craftmint/storefront-server/internal/authz"
	"github.com/craftmint/storefront-server/internal/service"
	"github.com/craftmint/storefront-server/internal/snapshot"
)

type grantKey struct {
	collectionID uuid.UUID
	userID       uuid.UUID
}

type orderRecord struct {
	order              service.Order
	productSnapshot    snapshot.Product
	collectionSnapshot snapshot.Collection
}

// Service implements service.StorefrontService against process-local state.
type Service struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]service.User
	collections map[uuid.UUID]service.Collection
	categories  map[uuid.UUID]service.Category
	products    map[uuid.UUID]service.Product
	orders      map[uuid.UUID]orderRecord
	grants      map[grantKey]service.Grant
	slugs       map[string]uuid.UUID
}

var _ service.StorefrontService = (*Service)(nil)

// Option is a functional option for configuring the Service.
type Option func(*Service)

// WithUsers seeds the service with existing user accounts.
func WithUsers(users ...service.User) Option {
	return func(s *Service) {
		for _, u := range users {
			s.users[u.ID] = u
		}
	}
}

// New creates an empty in-memory storefront service.
func New(opts ...Option) *Service {
	s := &Service{
		users:       make(map[uuid.UUID]service.User),
		collections: make(map[uuid.UUID]service.Collection),
		categories:  make(map[uuid.UUID]service.Category),
		products:    make(map[uuid.UUID]service.Product),
		orders:      make(map[uuid.UUID]orderRecord),
		grants:      make(map[grantKey]service.Grant),
		slugs:       make(map[string]uuid.UUID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddUser registers a user account. Accounts are managed outside the core;
// tests and fixtures use this to stand in for the account system.
func (s *Service) AddUser(u service.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// CheckReadiness checks if the service is ready to serve requests.
func (*Service) CheckReadiness(_ context.Context) error {
	return nil
}

// resolveCollectionIDLocked maps a resource ref to its owning collection id.
// Caller must hold at least a read lock.
func (s *Service) resolveCollectionIDLocked(ref authz.ResourceRef) (uuid.UUID, error) {
	switch ref.Kind {
	case authz.KindCollection:
		if _, ok := s.collections[ref.ID]; !ok {
			return uuid.Nil, fmt.Errorf("%w: collection %s", service.ErrNotFound, ref.ID)
		}
		return ref.ID, nil
	case authz.KindCategory:
		cat, ok := s.categories[ref.ID]
		if !ok {
			return uuid.Nil, fmt.Errorf("%w: category %s", service.ErrNotFound, ref.ID)
		}
		return cat.CollectionID, nil
	case authz.KindProduct:
		p, ok := s.products[ref.ID]
		if !ok {
			return uuid.Nil, fmt.Errorf("%w: product %s", service.ErrNotFound, ref.ID)
		}
		return p.CollectionID, nil
	default:
		return uuid.Nil, fmt.Errorf("%w: unknown resource kind %q", service.ErrNotFound, ref.Kind)
	}
}

// aclForLocked builds the authority snapshot for one principal and one
// collection. Caller must hold at least a read lock.
func (s *Service) aclForLocked(p authz.Principal, collectionID uuid.UUID) (authz.CollectionACL, error) {
	c, ok := s.collections[collectionID]
	if !ok {
		return authz.CollectionACL{}, fmt.Errorf("%w: collection %s", service.ErrNotFound, collectionID)
	}
	acl := authz.CollectionACL{
		CollectionID: c.ID,
		OwnerID:      c.OwnerID,
		Visible:      c.Visible,
	}
	if p.Authenticated {
		if g, ok := s.grants[grantKey{collectionID, p.ID}]; ok {
			acl.Granted = g.AccessType
		}
	}
	return acl, nil
}

// CanAccess implements the merchant/admin channel access predicate.
func (s *Service) CanAccess(
	_ context.Context,
	p authz.Principal,
	ref authz.ResourceRef,
	level authz.AccessLevel,
) (bool, error) {
	if p.IsAdmin() {
		return true, nil
	}
	if level == authz.LevelCreate && ref.Kind == authz.KindCollection && ref.ID == uuid.Nil {
		return authz.CanCreateCollection(p), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	collectionID, err := s.resolveCollectionIDLocked(ref)
	if err != nil {
		return false, err
	}
	acl, err := s.aclForLocked(p, collectionID)
	if err != nil {
		return false, err
	}
	return authz.Decide(p, acl, level), nil
}

// CanAccessOrder implements the buyer channel predicate: wallet equality
// only, no merchant-side fallthrough.
func (s *Service) CanAccessOrder(_ context.Context, buyer authz.BuyerIdentity, orderID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.orders[orderID]
	if !ok {
		return false, fmt.Errorf("%w: order %s", service.ErrNotFound, orderID)
	}
	return buyer.Matches(rec.order.WalletAddress), nil
}

// CreateCollection creates a collection owned by the actor.
func (s *Service) CreateCollection(
	_ context.Context,
	actor authz.Principal,
	req service.CreateCollectionRequest,
) (*service.Collection, error) {
	if err := service.ValidateCreateCollection(req); err != nil {
		return nil, err
	}
	if !authz.CanCreateCollection(actor) {
		return nil, fmt.Errorf("%w: only merchants and admins may create collections", service.ErrDenied)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[actor.ID]; !ok {
		return nil, fmt.Errorf("%w: user %s", service.ErrNotFound, actor.ID)
	}
	if _, taken := s.slugs[req.Slug]; taken {
		return nil, fmt.Errorf("%w: slug %q already in use", service.ErrInvalidInput, req.Slug)
	}

	now := time.Now().UTC()
	c := service.Collection{
		ID:        uuid.New(),
		OwnerID:   actor.ID,
		Name:      req.Name,
		Slug:      req.Slug,
		Visible:   req.Visible,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.collections[c.ID] = c
	s.slugs[c.Slug] = c.ID
	return &c, nil
}

// GetCollection returns a collection the actor may view.
func (s *Service) GetCollection(_ context.Context, actor authz.Principal, id uuid.UUID) (*service.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acl, err := s.aclForLocked(actor, id)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelView) {
		return nil, fmt.Errorf("%w: collection %s", service.ErrDenied, id)
	}
	c := s.collections[id]
	return &c, nil
}

// UpdateCollectionVisibility toggles public visibility.
func (s *Service) UpdateCollectionVisibility(
	_ context.Context,
	actor authz.Principal,
	id uuid.UUID,
	visible bool,
) (*service.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acl, err := s.aclForLocked(actor, id)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return nil, fmt.Errorf("%w: collection %s", service.ErrDenied, id)
	}
	c := s.collections[id]
	c.Visible = visible
	c.UpdatedAt = time.Now().UTC()
	s.collections[id] = c
	return &c, nil
}

// DeleteCollection removes a collection, its categories, products and
// grants. Orders referencing the collection or its products keep their rows;
// only their references are nulled, mirroring the SET NULL foreign keys.
func (s *Service) DeleteCollection(_ context.Context, actor authz.Principal, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[id]
	if !ok {
		return fmt.Errorf("%w: collection %s", service.ErrNotFound, id)
	}
	if !actor.IsAdmin() && !(actor.Authenticated && actor.ID == c.OwnerID) {
		return fmt.Errorf("%w: only the owner or an admin may delete a collection", service.ErrDenied)
	}

	for pid, p := range s.products {
		if p.CollectionID == id {
			s.deleteProductLocked(pid)
		}
	}
	for cid, cat := range s.categories {
		if cat.CollectionID == id {
			delete(s.categories, cid)
		}
	}
	for k := range s.grants {
		if k.collectionID == id {
			delete(s.grants, k)
		}
	}
	for oid, rec := range s.orders {
		if rec.order.CollectionID != nil && *rec.order.CollectionID == id {
			rec.order.CollectionID = nil
			s.orders[oid] = rec
		}
	}
	delete(s.slugs, c.Slug)
	delete(s.collections, id)
	return nil
}

// deleteProductLocked removes a product and nulls order references to it.
func (s *Service) deleteProductLocked(id uuid.UUID) {
	for oid, rec := range s.orders {
		if rec.order.ProductID != nil && *rec.order.ProductID == id {
			rec.order.ProductID = nil
			s.orders[oid] = rec
		}
	}
	delete(s.products, id)
}

// ListAccessibleCollections filters the full collection set through the same
// predicate used for point checks.
func (s *Service) ListAccessibleCollections(
	_ context.Context,
	actor authz.Principal,
	opts ...service.Option[service.ListCollectionsOptions],
) ([]*service.Collection, error) {
	options := &service.ListCollectionsOptions{Limit: service.DefaultPageSize}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*service.Collection
	for _, c := range s.collections {
		acl := authz.CollectionACL{
			CollectionID: c.ID,
			OwnerID:      c.OwnerID,
			Visible:      c.Visible,
		}
		if actor.Authenticated {
			if g, ok := s.grants[grantKey{c.ID, actor.ID}]; ok {
				acl.Granted = g.AccessType
			}
		}
		if authz.Decide(actor, acl, authz.LevelView) {
			c := c
			result = append(result, &c)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	if len(result) > options.Limit {
		result = result[:options.Limit]
	}
	return result, nil
}

// CreateCategory creates a category within a collection.
func (s *Service) CreateCategory(
	_ context.Context,
	actor authz.Principal,
	req service.CreateCategoryRequest,
) (*service.Category, error) {
	if err := service.ValidateCreateCategory(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acl, err := s.aclForLocked(actor, req.CollectionID)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return nil, fmt.Errorf("%w: collection %s", service.ErrDenied, req.CollectionID)
	}

	cat := service.Category{
		ID:           uuid.New(),
		CollectionID: req.CollectionID,
		Name:         req.Name,
		Position:     req.Position,
	}
	s.categories[cat.ID] = cat
	return &cat, nil
}

// CreateProduct creates a product within a collection.
func (s *Service) CreateProduct(
	_ context.Context,
	actor authz.Principal,
	req service.CreateProductRequest,
) (*service.Product, error) {
	if err := service.ValidateCreateProduct(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acl, err := s.aclForLocked(actor, req.CollectionID)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return nil, fmt.Errorf("%w: collection %s", service.ErrDenied, req.CollectionID)
	}
	if req.CategoryID != nil {
		cat, ok := s.categories[*req.CategoryID]
		if !ok {
			return nil, fmt.Errorf("%w: category %s", service.ErrNotFound, *req.CategoryID)
		}
		if cat.CollectionID != req.CollectionID {
			return nil, fmt.Errorf("%w: category %s", service.ErrCategoryMismatch, *req.CategoryID)
		}
	}

	p := service.Product{
		ID:           uuid.New(),
		CollectionID: req.CollectionID,
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		SKU:          req.SKU,
		PriceCents:   req.PriceCents,
		ImageURLs:    append([]string(nil), req.ImageURLs...),
		Variants:     req.Variants,
		Metadata:     req.Metadata,
		CreatedAt:    time.Now().UTC(),
	}
	s.products[p.ID] = p
	return &p, nil
}

// GetProduct returns a product from a collection the actor may view.
func (s *Service) GetProduct(_ context.Context, actor authz.Principal, id uuid.UUID) (*service.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", service.ErrNotFound, id)
	}
	acl, err := s.aclForLocked(actor, p.CollectionID)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelView) {
		return nil, fmt.Errorf("%w: product %s", service.ErrDenied, id)
	}
	return &p, nil
}

// DeleteProduct removes a product, nulling order references to it.
func (s *Service) DeleteProduct(_ context.Context, actor authz.Principal, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return fmt.Errorf("%w: product %s", service.ErrNotFound, id)
	}
	acl, err := s.aclForLocked(actor, p.CollectionID)
	if err != nil {
		return err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return fmt.Errorf("%w: product %s", service.ErrDenied, id)
	}
	s.deleteProductLocked(id)
	return nil
}

// GrantAccess upserts a delegated grant on a collection.
func (s *Service) GrantAccess(
	_ context.Context,
	actor authz.Principal,
	collectionID, targetUserID uuid.UUID,
	accessType authz.AccessType,
) (*service.Grant, error) {
	if !accessType.Valid() {
		return nil, fmt.Errorf("%w: %q", service.ErrInvalidAccessType, accessType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acl, err := s.aclForLocked(actor, collectionID)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return nil, fmt.Errorf("%w: collection %s", service.ErrDenied, collectionID)
	}
	if _, ok := s.users[targetUserID]; !ok {
		return nil, fmt.Errorf("%w: user %s", service.ErrNotFound, targetUserID)
	}
	if actor.Authenticated && targetUserID == actor.ID {
		return nil, service.ErrSelfGrant
	}
	if targetUserID == acl.OwnerID {
		return nil, service.ErrOwnerGrant
	}

	now := time.Now().UTC()
	key := grantKey{collectionID, targetUserID}
	g := service.Grant{
		CollectionID: collectionID,
		UserID:       targetUserID,
		AccessType:   accessType,
		GrantedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if prev, ok := s.grants[key]; ok {
		g.CreatedAt = prev.CreatedAt
	}
	s.grants[key] = g
	return &g, nil
}

// RevokeAccess removes a delegated grant; revoking an absent grant is a
// no-op.
func (s *Service) RevokeAccess(
	_ context.Context,
	actor authz.Principal,
	collectionID, targetUserID uuid.UUID,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acl, err := s.aclForLocked(actor, collectionID)
	if err != nil {
		return err
	}
	if !authz.Decide(actor, acl, authz.LevelEdit) {
		return fmt.Errorf("%w: collection %s", service.ErrDenied, collectionID)
	}
	if targetUserID == acl.OwnerID {
		return service.ErrOwnerRevoke
	}
	delete(s.grants, grantKey{collectionID, targetUserID})
	return nil
}

// TransferOwnership atomically reassigns a collection's owner.
func (s *Service) TransferOwnership(
	_ context.Context,
	actor authz.Principal,
	collectionID, newOwnerID uuid.UUID,
	preserveOldOwnerAccess bool,
) (*service.TransferResult, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins may transfer ownership", service.ErrDenied)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collectionID]
	if !ok {
		return nil, fmt.Errorf("%w: collection %s", service.ErrNotFound, collectionID)
	}
	newOwner, ok := s.users[newOwnerID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", service.ErrNotFound, newOwnerID)
	}
	if newOwner.Role != authz.RoleMerchant && newOwner.Role != authz.RoleAdmin {
		return nil, fmt.Errorf("%w: user %s has role %q", service.ErrRoleIneligible, newOwnerID, newOwner.Role)
	}
	if newOwnerID == c.OwnerID {
		return nil, fmt.Errorf("%w: %s", service.ErrAlreadyOwner, newOwnerID)
	}

	oldOwnerID := c.OwnerID
	oldOwner := s.users[oldOwnerID]

	c.OwnerID = newOwnerID
	c.UpdatedAt = time.Now().UTC()
	s.collections[collectionID] = c

	// The owner never holds a grant row: drop stale rows for both sides of
	// the transfer before optionally re-expressing the old owner's access
	// as a delegated grant.
	delete(s.grants, grantKey{collectionID, oldOwnerID})
	delete(s.grants, grantKey{collectionID, newOwnerID})

	if preserveOldOwnerAccess {
		now := time.Now().UTC()
		s.grants[grantKey{collectionID, oldOwnerID}] = service.Grant{
			CollectionID: collectionID,
			UserID:       oldOwnerID,
			AccessType:   authz.AccessEdit,
			GrantedBy:    actor.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	return &service.TransferResult{
		CollectionID:     collectionID,
		CollectionName:   c.Name,
		OldOwnerID:       oldOwnerID,
		OldOwnerUsername: oldOwner.Username,
		NewOwnerID:       newOwnerID,
		NewOwnerUsername: newOwner.Username,
		AccessPreserved:  preserveOldOwnerAccess,
	}, nil
}

// CreateOrder places an order and freezes the product and collection
// snapshots into it.
func (s *Service) CreateOrder(
	_ context.Context,
	buyer authz.BuyerIdentity,
	req service.CreateOrderRequest,
) (*service.Order, error) {
	if err := service.ValidateCreateOrder(req); err != nil {
		return nil, err
	}
	if buyer.WalletAddress == "" {
		return nil, fmt.Errorf("%w: buyer wallet address is required", service.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[req.ProductID]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", service.ErrNotFound, req.ProductID)
	}
	c, ok := s.collections[p.CollectionID]
	if !ok {
		return nil, fmt.Errorf("%w: collection %s", service.ErrNotFound, p.CollectionID)
	}

	productID := p.ID
	collectionID := c.ID
	order := service.Order{
		ID:            uuid.New(),
		ProductID:     &productID,
		CollectionID:  &collectionID,
		WalletAddress: buyer.WalletAddress,
		Quantity:      req.Quantity,
		TotalCents:    p.PriceCents * int64(req.Quantity),
		Status:        "pending",
		CreatedAt:     time.Now().UTC(),
	}
	s.orders[order.ID] = orderRecord{
		order:              order,
		productSnapshot:    captureProduct(p, c),
		collectionSnapshot: captureCollection(c),
	}
	return &order, nil
}

func captureProduct(p service.Product, c service.Collection) snapshot.Product {
	return snapshot.Product{
		SchemaVersion: snapshot.SchemaVersion,
		ProductID:     p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		PriceCents:    p.PriceCents,
		ImageURLs:     append([]string(nil), p.ImageURLs...),
		Variants:      append(json.RawMessage(nil), p.Variants...),
		Metadata:      append(json.RawMessage(nil), p.Metadata...),
		CanonicalURL:  snapshot.CanonicalProductURL(c.Slug, p.ID),
	}
}

func captureCollection(c service.Collection) snapshot.Collection {
	return snapshot.Collection{
		SchemaVersion: snapshot.SchemaVersion,
		CollectionID:  c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		OwnerID:       c.OwnerID,
	}
}

// GetOrderDisplayData prefers live product/collection rows and falls back to
// the snapshots captured at order creation.
func (s *Service) GetOrderDisplayData(_ context.Context, orderID uuid.UUID) (*service.OrderDisplayData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", service.ErrNotFound, orderID)
	}

	display := &service.OrderDisplayData{
		OrderID: orderID,
		Product: service.ProductDisplay{
			Source:  service.DisplaySourceSnapshot,
			Product: rec.productSnapshot,
		},
		Collection: service.CollectionDisplay{
			Source:     service.DisplaySourceSnapshot,
			Collection: rec.collectionSnapshot,
		},
	}

	// Slug for the canonical URL: live collection when present, otherwise
	// the one frozen into the collection snapshot.
	slug := rec.collectionSnapshot.Slug
	if rec.order.CollectionID != nil {
		if c, ok := s.collections[*rec.order.CollectionID]; ok {
			slug = c.Slug
			display.Collection = service.CollectionDisplay{
				Source:     service.DisplaySourceLive,
				Collection: captureCollection(c),
			}
		}
	}
	if rec.order.ProductID != nil {
		if p, ok := s.products[*rec.order.ProductID]; ok {
			live := captureProduct(p, service.Collection{Slug: slug})
			live.ProductID = p.ID
			display.Product = service.ProductDisplay{
				Source:  service.DisplaySourceLive,
				Product: live,
			}
		}
	}
	return display, nil
}

// ListOrdersForWallet returns the buyer's own orders, newest first.
func (s *Service) ListOrdersForWallet(
	_ context.Context,
	buyer authz.BuyerIdentity,
	opts ...service.Option[service.ListOrdersOptions],
) ([]*service.Order, error) {
	options := &service.ListOrdersOptions{Limit: service.DefaultPageSize}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	if buyer.WalletAddress == "" {
		return nil, fmt.Errorf("%w: buyer wallet address is required", service.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*service.Order
	for _, rec := range s.orders {
		if rec.order.WalletAddress == buyer.WalletAddress {
			o := rec.order
			result = append(result, &o)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	if len(result) > options.Limit {
		result = result[:options.Limit]
	}
	return result, nil
}
