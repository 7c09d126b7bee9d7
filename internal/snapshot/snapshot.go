// Package snapshot defines the frozen copies of product and collection
// display data that are written onto an order at creation time. Orders keep
// nullable references to their product and collection; when the referenced
// row is later deleted the snapshot is the only remaining source of display
// data, so these structs are versioned and never mutated after capture.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SchemaVersion is the current snapshot schema version. Readers must accept
// any version up to this one; writers always emit the current version.
const SchemaVersion = 1

// Product is the frozen copy of a product's display data.
type Product struct {
	SchemaVersion int             `json:"schema_version"`
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	PriceCents    int64           `json:"price_cents"`
	ImageURLs     []string        `json:"image_urls,omitempty"`
	Variants      json.RawMessage `json:"variants,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CanonicalURL  string          `json:"canonical_url"`
}

// Collection is the frozen copy of a collection's display data.
type Collection struct {
	SchemaVersion int       `json:"schema_version"`
	CollectionID  uuid.UUID `json:"collection_id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	OwnerID       uuid.UUID `json:"owner_id"`
}

// CanonicalProductURL computes the storefront URL frozen into a product
// snapshot. The URL is captured rather than recomputed on read so that it
// survives later slug changes and deletions.
func CanonicalProductURL(collectionSlug string, productID uuid.UUID) string {
	return fmt.Sprintf("/collections/%s/products/%s", collectionSlug, productID)
}

// DecodeProduct parses a stored product snapshot blob.
func DecodeProduct(raw []byte) (Product, error) {
	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return Product{}, fmt.Errorf("failed to decode product snapshot: %w", err)
	}
	if p.SchemaVersion < 1 || p.SchemaVersion > SchemaVersion {
		return Product{}, fmt.Errorf("unsupported product snapshot schema version %d", p.SchemaVersion)
	}
	return p, nil
}

// DecodeCollection parses a stored collection snapshot blob.
func DecodeCollection(raw []byte) (Collection, error) {
	var c Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return Collection{}, fmt.Errorf("failed to decode collection snapshot: %w", err)
	}
	if c.SchemaVersion < 1 || c.SchemaVersion > SchemaVersion {
		return Collection{}, fmt.Errorf("unsupported collection snapshot schema version %d", c.SchemaVersion)
	}
	return c, nil
}
