// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/google/uuid"
)

// Product represents a product entity in the store.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	HasDelivery bool      `json:"hasDelivery"`
	Stock       int       `json:"stock"`
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns all products in insertion order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// Insert appends a new product. The ID must already be assigned.
	// Returns ErrProductExists if the ID is already taken.
	Insert(ctx context.Context, product Product) (*Product, error)

	// Replace overwrites the product with the given ID, keeping its position.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Replace(ctx context.Context, id uuid.UUID, product Product) (*Product, error)

	// Modify applies mutate to the product with the given ID under a single write lock.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Modify(ctx context.Context, id uuid.UUID, mutate func(p *Product)) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// Len returns the number of stored products.
	Len() int
}
