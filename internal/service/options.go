package service

import "fmt"

// WithCollectionLimit caps the number of collections returned by
// ListAccessibleCollections.
func WithCollectionLimit(limit int) Option[ListCollectionsOptions] {
	return func(o *ListCollectionsOptions) error {
		if limit <= 0 {
			return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidInput, limit)
		}
		o.Limit = limit
		return nil
	}
}

// WithOrderLimit caps the number of orders returned by ListOrdersForWallet.
func WithOrderLimit(limit int) Option[ListOrdersOptions] {
	return func(o *ListOrdersOptions) error {
		if limit <= 0 {
			return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidInput, limit)
		}
		o.Limit = limit
		return nil
	}
}
