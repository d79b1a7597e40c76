package product

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
	GetByName(ctx context.Context, name string) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// seeding local data.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage map[int64]Product
	nextID  int64
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make(map[int64]Product, len(seed)),
		nextID:  1,
	}

	for _, p := range seed {
		r.storage[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.storage[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) GetByName(_ context.Context, name string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.Name == name {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	}
	r.storage[p.ID] = p
	return p, nil
}

// SetStock overwrites the stock of an existing product.
func (r *InMemoryRepository) SetStock(id int64, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.storage[id]
	if !ok {
		return ErrNotFound
	}
	p.Stock = stock
	r.storage[id] = p
	return nil
}

// Delete removes a product; used by tests to simulate a product vanishing
// while it sits in a cart.
func (r *InMemoryRepository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[id]; !ok {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}
