package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
)

// MemoryStore implements ProductStore using an in-memory map.
// Insertion order is the listing order.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]Product
	order    []int64
	nextID   int64
	now      func() time.Time
}

// NewMemoryStore creates a new, empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]Product),
		nextID:   1,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new available product and assigns the next id.
func (s *MemoryStore) Create(_ context.Context, params CreateParams) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(params.Name, 0) {
		return nil, fmt.Errorf("failed to create product %q: %w", params.Name, perrors.ErrProductConflict)
	}

	now := s.now()
	product := Product{
		ID:        s.nextID,
		Name:      params.Name,
		Price:     params.Price,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++
	s.products[product.ID] = product
	s.order = append(s.order, product.ID)

	return &product, nil
}

// FindFirst returns the product with id when its availability matches.
func (s *MemoryStore) FindFirst(_ context.Context, id int64, available bool) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok || p.Available != available {
		return nil, perrors.ErrProductNotFound
	}
	return &p, nil
}

// FindMany returns up to limit products with the given availability, skipping the first offset of them.
func (s *MemoryStore) FindMany(_ context.Context, available bool, offset, limit int32) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, max(0, min(int(limit), len(s.order)-int(offset))))
	var skipped int32
	for _, id := range s.order {
		if int32(len(list)) >= limit {
			break
		}
		p := s.products[id]
		if p.Available != available {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		list = append(list, p)
	}
	return list, nil
}

// Count returns the number of products with the given availability.
func (s *MemoryStore) Count(_ context.Context, available bool) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, p := range s.products {
		if p.Available == available {
			total++
		}
	}
	return total, nil
}

// Update applies the non-nil fields of params to the product with id, whatever its availability.
func (s *MemoryStore) Update(_ context.Context, id int64, params UpdateParams) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	if params.Name != nil {
		if s.nameTaken(*params.Name, id) {
			return nil, fmt.Errorf("failed to update product %d: %w", id, perrors.ErrProductConflict)
		}
		p.Name = *params.Name
	}
	if params.Price != nil {
		p.Price = *params.Price
	}
	if params.Available != nil {
		p.Available = *params.Available
	}
	p.UpdatedAt = s.now()
	s.products[id] = p

	return &p, nil
}

// nameTaken reports whether another product already uses name. Callers hold the lock.
func (s *MemoryStore) nameTaken(name string, exceptID int64) bool {
	for id, p := range s.products {
		if id != exceptID && p.Name == name {
			return true
		}
	}
	return false
}
