package service

import (
	"fmt"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

const (
	maxNameLength = 200
	maxSlugLength = 100
	maxSKULength  = 64
)

// ValidateCreateCollection checks a collection creation request.
func ValidateCreateCollection(req CreateCollectionRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: collection name is required", ErrInvalidInput)
	}
	if len(req.Name) > maxNameLength {
		return fmt.Errorf("%w: collection name exceeds %d characters", ErrInvalidInput, maxNameLength)
	}
	if req.Slug == "" || len(req.Slug) > maxSlugLength || !slugPattern.MatchString(req.Slug) {
		return fmt.Errorf("%w: slug must be lowercase alphanumeric with hyphens", ErrInvalidInput)
	}
	return nil
}

// ValidateCreateCategory checks a category creation request.
func ValidateCreateCategory(req CreateCategoryRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if req.Position < 0 {
		return fmt.Errorf("%w: category position cannot be negative", ErrInvalidInput)
	}
	return nil
}

// ValidateCreateProduct checks a product creation request.
func ValidateCreateProduct(req CreateProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if req.SKU == "" || len(req.SKU) > maxSKULength {
		return fmt.Errorf("%w: product SKU is required and at most %d characters", ErrInvalidInput, maxSKULength)
	}
	if req.PriceCents < 0 {
		return fmt.Errorf("%w: product price cannot be negative", ErrInvalidInput)
	}
	return nil
}

// ValidateCreateOrder checks an order creation request.
func ValidateCreateOrder(req CreateOrderRequest) error {
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: order quantity must be positive", ErrInvalidInput)
	}
	return nil
}
