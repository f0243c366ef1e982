// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"
)

// Product is a persisted catalog record.
type Product struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Price     float64   `db:"price"`
	Available bool      `db:"available"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CreateParams holds the caller-supplied fields of a new product.
type CreateParams struct {
	Name  string
	Price float64
}

// UpdateParams is a partial update; nil fields are left untouched.
type UpdateParams struct {
	Name      *string
	Price     *float64
	Available *bool
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// Create adds a new available product.
	// Returns an error wrapping ErrProductConflict if the name is taken.
	Create(ctx context.Context, params CreateParams) (*Product, error)

	// FindFirst returns the product with the given id and availability flag.
	// Returns ErrProductNotFound if no such row exists.
	FindFirst(ctx context.Context, id int64, available bool) (*Product, error)

	// FindMany returns up to limit products with the given availability flag, skipping offset rows.
	// Returns an empty slice if no products match.
	FindMany(ctx context.Context, available bool, offset, limit int32) ([]Product, error)

	// Count returns the number of products with the given availability flag.
	Count(ctx context.Context, available bool) (int64, error)

	// Update applies params to the product with the given id regardless of its availability.
	// Returns ErrProductNotFound if the id does not exist.
	Update(ctx context.Context, id int64, params UpdateParams) (*Product, error)
}
