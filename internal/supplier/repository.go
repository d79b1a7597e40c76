package supplier

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("supplier not found")

// Repository provides access to supplier rows.
type Repository interface {
	List(ctx context.Context) ([]Supplier, error)
	GetByName(ctx context.Context, name string) (Supplier, error)
	Create(ctx context.Context, s Supplier) (Supplier, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Supplier
	nextID  int64
}

func NewInMemoryRepository(seed []Supplier) *InMemoryRepository {
	r := &InMemoryRepository{storage: make([]Supplier, 0, len(seed)), nextID: 1}
	for _, s := range seed {
		r.storage = append(r.storage, s)
		if s.ID >= r.nextID {
			r.nextID = s.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context) ([]Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Supplier, len(r.storage))
	copy(out, r.storage)
	return out, nil
}

func (r *InMemoryRepository) GetByName(_ context.Context, name string) (Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.storage {
		if s.Name == name {
			return s, nil
		}
	}
	return Supplier{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, s Supplier) (Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == 0 {
		s.ID = r.nextID
		r.nextID++
	}
	r.storage = append(r.storage, s)
	return s, nil
}
