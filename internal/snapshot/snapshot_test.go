package snapshot

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRoundTrip(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	original := Product{
		SchemaVersion: SchemaVersion,
		ProductID:     productID,
		Name:          "Hand-thrown mug",
		SKU:           "MUG-001",
		PriceCents:    2400,
		ImageURLs:     []string{"https://cdn.example.com/mug.jpg"},
		Variants:      json.RawMessage(`[{"name":"glaze","options":["matte","gloss"]}]`),
		CanonicalURL:  CanonicalProductURL("ceramics", productID),
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := DecodeProduct(raw)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeProductRejectsUnknownVersion(t *testing.T) {
	t.Parallel()

	raw := fmt.Sprintf(`{"schema_version":%d,"product_id":"%s","name":"x","sku":"x","price_cents":1,"canonical_url":"/x"}`,
		SchemaVersion+1, uuid.New())

	_, err := DecodeProduct([]byte(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version")
}

func TestDecodeCollectionRejectsMissingVersion(t *testing.T) {
	t.Parallel()

	// Blobs written before versioning carry no schema_version field and
	// must be rejected rather than silently interpreted.
	raw := fmt.Sprintf(`{"collection_id":"%s","name":"x","slug":"x","owner_id":"%s"}`,
		uuid.New(), uuid.New())

	_, err := DecodeCollection([]byte(raw))
	require.Error(t, err)
}

func TestDecodeCollectionRoundTrip(t *testing.T) {
	t.Parallel()

	original := Collection{
		SchemaVersion: SchemaVersion,
		CollectionID:  uuid.New(),
		Name:          "Ceramics",
		Slug:          "ceramics",
		OwnerID:       uuid.New(),
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := DecodeCollection(raw)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestCanonicalProductURL(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("6b1f44b2-9f20-4a3e-9f5d-0c6a50ec9b10")
	assert.Equal(t,
		"/collections/ceramics/products/6b1f44b2-9f20-4a3e-9f5d-0c6a50ec9b10",
		CanonicalProductURL("ceramics", id))
}
