// Package v0 provides the REST API handlers for the storefront.
package v0

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/craftmint/storefront-server/internal/api/common"
	"github.com/craftmint/storefront-server/internal/auth"
	"github.com/craftmint/storefront-server/internal/authz"
	"github.com/craftmint/storefront-server/internal/service"
	"github.com/craftmint/storefront-server/internal/versions"
)

// Routes handles HTTP requests for the storefront API.
type Routes struct {
	service service.StorefrontService
}

// NewRoutes creates a new Routes instance with the provided service
func NewRoutes(svc service.StorefrontService) *Routes {
	return &Routes{
		service: svc,
	}
}

// Router creates a new router for the storefront API
func Router(svc service.StorefrontService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()

	r.Route("/collections", func(r chi.Router) {
		r.Post("/", routes.createCollection)
		r.Get("/", routes.listCollections)
		r.Route("/{collectionID}", func(r chi.Router) {
			r.Get("/", routes.getCollection)
			r.Delete("/", routes.deleteCollection)
			r.Put("/visibility", routes.updateVisibility)
			r.Post("/categories", routes.createCategory)
			r.Post("/products", routes.createProduct)
			r.Put("/grants/{userID}", routes.grantAccess)
			r.Delete("/grants/{userID}", routes.revokeAccess)
			r.Post("/transfer", routes.transferOwnership)
		})
	})

	r.Route("/products/{productID}", func(r chi.Router) {
		r.Get("/", routes.getProduct)
		r.Delete("/", routes.deleteProduct)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", routes.createOrder)
		r.Get("/", routes.listOrders)
		r.Get("/{orderID}/display", routes.getOrderDisplay)
	})

	return r
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(svc service.StorefrontService) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(svc))
	r.Get("/version", versionHandler)

	return r
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessHandler handles readiness check requests
func readinessHandler(svc service.StorefrontService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			common.WriteErrorResponse(w, "StorefrontService not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}

// versionHandler handles version information requests
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}

// createCollectionRequest is the body for POST /collections
type createCollectionRequest struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Visible bool   `json:"visible"`
}

// collectionResponse is the wire form of a collection
type collectionResponse struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	Visible bool      `json:"visible"`
}

func toCollectionResponse(c *service.Collection) collectionResponse {
	return collectionResponse{
		ID:      c.ID,
		OwnerID: c.OwnerID,
		Name:    c.Name,
		Slug:    c.Slug,
		Visible: c.Visible,
	}
}

// createCollection handles POST /api/v0/collections
func (rr *Routes) createCollection(w http.ResponseWriter, r *http.Request) {
	var body createCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.WriteErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c, err := rr.service.CreateCollection(r.Context(), auth.PrincipalFromContext(r.Context()), service.CreateCollectionRequest{
		Name:    body.Name,
		Slug:    body.Slug,
		Visible: body.Visible,
	})
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, toCollectionResponse(c), http.StatusCreated)
}

// listCollections handles GET /api/v0/collections
func (rr *Routes) listCollections(w http.ResponseWriter, r *http.Request) {
	opts := []service.Option[service.ListCollectionsOptions]{}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			common.WriteErrorResponse(w, "Invalid limit parameter: must be an integer", http.StatusBadRequest)
			return
		}
		opts = append(opts, service.WithCollectionLimit(limit))
	}

	cs, err := rr.service.ListAccessibleCollections(r.Context(), auth.PrincipalFromContext(r.Context()), opts...)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}

	result := make([]collectionResponse, len(cs))
	for i, c := range cs {
		result[i] = toCollectionResponse(c)
	}
	common.WriteJSONResponse(w, map[string]any{"collections": result, "count": len(result)}, http.StatusOK)
}

// getCollection handles GET /api/v0/collections/{collectionID}
func (rr *Routes) getCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.pathUUID(w, r, "collectionID")
	if !ok {
		return
	}

	c, err := rr.service.GetCollection(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, toCollectionResponse(c), http.StatusOK)
}

// deleteCollection handles DELETE /api/v0/collections/{collectionID}
func (rr *Routes) deleteCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.pathUUID(w, r, "collectionID")
	if !ok {
		return
	}

	if err := rr.service.DeleteCollection(r.Context(), auth.PrincipalFromContext(r.Context()), id); err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateVisibilityRequest is the body for PUT /collections/{id}/visibility
type updateVisibilityRequest struct {
	Visible bool `json:"visible"`
}

// updateVisibility handles PUT /api/v0/collections/{collectionID}/visibility
func (rr *Routes) updateVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.pathUUID(w, r, "collectionID")
	if !ok {
		return
	}

	var body updateVisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.WriteErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c, err := rr.service.UpdateCollectionVisibility(r.Context(), auth.PrincipalFromContext(r.Context()), id, body.Visible)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, toCollectionResponse(c), http.StatusOK)
}

// createCategoryRequest is the body for POST /collections/{id}/categories
type createCategoryRequest struct {
	Name     string `json:"name"`
	Position int32  `json:"position"`
}

// createCategory handles POST /api/v0/collections/{collectionID}/categories
func (rr *Routes) createCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.pathUUID(w, r, "collectionID")
	if !ok {
		return
	}

	var body createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.WriteErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cat, err := rr.service.CreateCategory(r.Context(), auth.PrincipalFromContext(r.Context()), service.CreateCategoryRequest{
		CollectionID: id,
		Name:         body.Name,
		Position:     body.Position,
	})
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, cat, http.StatusCreated)
}

// createProductRequest is the body for POST /collections/{id}/products
type createProductRequest struct {
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	PriceCents int64           `json:"price_cents"`
	ImageURLs  []string        `json:"image_urls,omitempty"`
	Variants   json.RawMessage `json:"variants,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// createProduct handles POST /api/v0/collections/{collectionID}/products
func (rr *Routes) createProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.pathUUID(w, r, "collectionID")
	if !ok {
		return
	}

	var body createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.WriteErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := rr.service.CreateProduct(r.Context(), auth.PrincipalFromContext(r.Context()), service.CreateProductRequest{
		CollectionID: id,
		CategoryID:   body.CategoryID,
		Name:         body.Name,
		SKU:          body.SKU,
		PriceCents:   body.PriceCents,
		ImageURLs:    body.ImageURLs,
		Variants:     body.Variants,
		Metadata:     body.Metadata,
	})
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, p, http.StatusCreated)
}

// getProduct handles GET /api/v0/products/{productID}
func (rr *Routes) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.pathUUID(w, r, "productID")
	if !ok {
		return
	}

	p, err := rr.service.GetProduct(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, p, http.StatusOK)
}

// deleteProduct handles DELETE /api/v0/products/{productID}
func (rr *Routes) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := rr.pathUUID(w, r, "productID")
	if !ok {
		return
	}

	if err := rr.service.DeleteProduct(r.Context(), auth.PrincipalFromContext(r.Context()), id); err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// grantAccessRequest is the body for PUT /collections/{id}/grants/{userID}
type grantAccessRequest struct {
	Access string `json:"access"`
}

// grantResponse is the wire form of a grant
type grantResponse struct {
	CollectionID uuid.UUID `json:"collection_id"`
	UserID       uuid.UUID `json:"user_id"`
	Access       string    `json:"access"`
	GrantedBy    uuid.UUID `json:"granted_by"`
}

// grantAccess handles PUT /api/v0/collections/{collectionID}/grants/{userID}
func (rr *Routes) grantAccess(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := rr.pathUUID(w, r, "collectionID")
	if !ok {
		return
	}
	userID, ok := rr.pathUUID(w, r, "userID")
	if !ok {
		return
	}

	var body grantAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.WriteErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	g, err := rr.service.GrantAccess(
		r.Context(),
		auth.PrincipalFromContext(r.Context()),
		collectionID, userID,
		authz.AccessType(body.Access),
	)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, grantResponse{
		CollectionID: g.CollectionID,
		UserID:       g.UserID,
		Access:       string(g.AccessType),
		GrantedBy:    g.GrantedBy,
	}, http.StatusOK)
}

// revokeAccess handles DELETE /api/v0/collections/{collectionID}/grants/{userID}
func (rr *Routes) revokeAccess(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := rr.pathUUID(w, r, "collectionID")
	if !ok {
		return
	}
	userID, ok := rr.pathUUID(w, r, "userID")
	if !ok {
		return
	}

	err := rr.service.RevokeAccess(r.Context(), auth.PrincipalFromContext(r.Context()), collectionID, userID)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transferRequest is the body for POST /collections/{id}/transfer
type transferRequest struct {
	NewOwnerID     uuid.UUID `json:"new_owner_id"`
	PreserveAccess bool      `json:"preserve_access"`
}

// transferResponse is the wire form of a completed transfer
type transferResponse struct {
	CollectionID     uuid.UUID `json:"collection_id"`
	CollectionName   string    `json:"collection_name"`
	OldOwnerID       uuid.UUID `json:"old_owner_id"`
	OldOwnerUsername string    `json:"old_owner_username"`
	NewOwnerID       uuid.UUID `json:"new_owner_id"`
	NewOwnerUsername string    `json:"new_owner_username"`
	AccessPreserved  bool      `json:"access_preserved"`
}

// transferOwnership handles POST /api/v0/collections/{collectionID}/transfer
func (rr *Routes) transferOwnership(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := rr.pathUUID(w, r, "collectionID")
	if !ok {
		return
	}

	var body transferRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.WriteErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.NewOwnerID == uuid.Nil {
		common.WriteErrorResponse(w, "new_owner_id is required", http.StatusBadRequest)
		return
	}

	result, err := rr.service.TransferOwnership(
		r.Context(),
		auth.PrincipalFromContext(r.Context()),
		collectionID, body.NewOwnerID,
		body.PreserveAccess,
	)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, transferResponse{
		CollectionID:     result.CollectionID,
		CollectionName:   result.CollectionName,
		OldOwnerID:       result.OldOwnerID,
		OldOwnerUsername: result.OldOwnerUsername,
		NewOwnerID:       result.NewOwnerID,
		NewOwnerUsername: result.NewOwnerUsername,
		AccessPreserved:  result.AccessPreserved,
	}, http.StatusOK)
}

// createOrderRequest is the body for POST /orders
type createOrderRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

// createOrder handles POST /api/v0/orders
func (rr *Routes) createOrder(w http.ResponseWriter, r *http.Request) {
	buyer, ok := rr.buyerFromRequest(w, r)
	if !ok {
		return
	}

	var body createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.WriteErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := rr.service.CreateOrder(r.Context(), buyer, service.CreateOrderRequest{
		ProductID: body.ProductID,
		Quantity:  body.Quantity,
	})
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, o, http.StatusCreated)
}

// listOrders handles GET /api/v0/orders
func (rr *Routes) listOrders(w http.ResponseWriter, r *http.Request) {
	buyer, ok := rr.buyerFromRequest(w, r)
	if !ok {
		return
	}

	opts := []service.Option[service.ListOrdersOptions]{}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			common.WriteErrorResponse(w, "Invalid limit parameter: must be an integer", http.StatusBadRequest)
			return
		}
		opts = append(opts, service.WithOrderLimit(limit))
	}

	orders, err := rr.service.ListOrdersForWallet(r.Context(), buyer, opts...)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, map[string]any{"orders": orders, "count": len(orders)}, http.StatusOK)
}

// getOrderDisplay handles GET /api/v0/orders/{orderID}/display
func (rr *Routes) getOrderDisplay(w http.ResponseWriter, r *http.Request) {
	orderID, ok := rr.pathUUID(w, r, "orderID")
	if !ok {
		return
	}
	buyer, ok := rr.buyerFromRequest(w, r)
	if !ok {
		return
	}

	// The buyer channel has exactly one predicate: wallet equality. A
	// mismatch renders the same 404 as a missing order so that order IDs
	// cannot be probed.
	allowed, err := rr.service.CanAccessOrder(r.Context(), buyer, orderID)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	if !allowed {
		slog.DebugContext(r.Context(), "Order access denied", "order_id", orderID)
		common.WriteErrorResponse(w, "not found", http.StatusNotFound)
		return
	}

	display, err := rr.service.GetOrderDisplayData(r.Context(), orderID)
	if err != nil {
		rr.writeServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, display, http.StatusOK)
}

// pathUUID parses a UUID path parameter, writing a 400 on failure.
func (*Routes) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		common.WriteErrorResponse(w, "invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// buyerFromRequest resolves the buyer wallet identity, writing a 400 when
// the wallet headers are missing.
func (*Routes) buyerFromRequest(w http.ResponseWriter, r *http.Request) (authz.BuyerIdentity, bool) {
	buyer, ok := authz.BuyerFromRequest(r)
	if !ok {
		common.WriteErrorResponse(w, "wallet headers are required", http.StatusBadRequest)
		return authz.BuyerIdentity{}, false
	}
	return buyer, true
}

// writeServiceError maps service sentinels onto HTTP statuses. Denied and
// missing both collapse to 404 so that resource existence never leaks; they
// are logged at different levels to stay distinguishable operationally.
func (*Routes) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrDenied):
		slog.DebugContext(r.Context(), "Access denied", "error", err)
		common.WriteErrorResponse(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNotFound):
		slog.InfoContext(r.Context(), "Resource not found", "error", err)
		common.WriteErrorResponse(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrAlreadyOwner),
		errors.Is(err, service.ErrSelfGrant),
		errors.Is(err, service.ErrOwnerGrant),
		errors.Is(err, service.ErrOwnerRevoke),
		errors.Is(err, service.ErrRoleIneligible):
		common.WriteErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidAccessType),
		errors.Is(err, service.ErrCategoryMismatch):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err)
		common.WriteErrorResponse(w, "internal server error", http.StatusInternalServerError)
	}
}
