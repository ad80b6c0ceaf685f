package store

import (
	"context"
	"slices"
	"sync"

	"github.com/abgdnv/productcatalog/internal/product/errors"
	"github.com/google/uuid"
)

// inMemory implements ProductStore using an insertion-ordered slice.
type inMemory struct {
	mu       sync.RWMutex
	products []Product
}

// NewInMemoryStore creates a new instance of ProductStore seeded with the given products.
func NewInMemoryStore(seed ...Product) ProductStore {
	products := make([]Product, 0, len(seed))
	products = append(products, seed...)
	return &inMemory{
		products: products,
	}
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id uuid.UUID) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	p := s.products[i]
	return &p, nil
}

// FindAll retrieves all products.
func (s *inMemory) FindAll(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.products), nil
}

// Insert appends a product to the end of the collection.
func (s *inMemory) Insert(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(product.ID) >= 0 {
		return nil, errors.ErrProductExists
	}
	s.products = append(s.products, product)

	return &product, nil
}

// Replace overwrites a product in place. The stored ID is always the one being replaced.
func (s *inMemory) Replace(_ context.Context, id uuid.UUID, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	product.ID = id
	s.products[i] = product

	return &product, nil
}

// Modify runs mutate on a copy of the product and stores the result in place.
func (s *inMemory) Modify(_ context.Context, id uuid.UUID, mutate func(p *Product)) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	p := s.products[i]
	mutate(&p)
	p.ID = id
	s.products[i] = p

	return &p, nil
}

// DeleteByID deletes a product by its ID.
func (s *inMemory) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return errors.ErrProductNotFound
	}
	s.products = slices.Delete(s.products, i, i+1)
	return nil
}

// Len returns the number of products.
func (s *inMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// indexOf must be called with the lock held.
func (s *inMemory) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.products, func(p Product) bool {
		return p.ID == id
	})
}
