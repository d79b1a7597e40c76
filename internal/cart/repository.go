package cart

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound          = errors.New("cart owner not found")
	ErrInvalidQuantity   = errors.New("Quantity must be greater than 0.")
	ErrInsufficientStock = errors.New("Insufficient stock")
	ErrCorruptCart       = errors.New("stored cart could not be decoded")
)

// Store keeps the raw cart of a session. Keys are opaque session keys.
type Store interface {
	GetCart(ctx context.Context, key string) (RawCart, error)
	SetCart(ctx context.Context, key string, cart map[string]int) error
	ClearCart(ctx context.Context, key string) error
}

// InMemoryStore is used for tests and local scenarios.
type InMemoryStore struct {
	mu    sync.RWMutex
	carts map[string]RawCart
}

func NewInMemoryStore(seed map[string]RawCart) *InMemoryStore {
	s := &InMemoryStore{carts: make(map[string]RawCart, len(seed))}
	for k, v := range seed {
		s.carts[k] = v
	}
	return s
}

func (s *InMemoryStore) GetCart(_ context.Context, key string) (RawCart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(RawCart, len(s.carts[key]))
	for k, v := range s.carts[key] {
		out[k] = v
	}
	return out, nil
}

func (s *InMemoryStore) SetCart(_ context.Context, key string, cart map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[key] = toRaw(cart)
	return nil
}

func (s *InMemoryStore) ClearCart(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}
