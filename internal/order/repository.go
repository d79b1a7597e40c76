package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNotFound = errors.New("order not found")
)

// Repository defines the read side of orders. Orders are written by the
// checkout transaction only.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Order, error)
	// ListByBuyerEmail returns the buyer's orders, newest first.
	ListByBuyerEmail(ctx context.Context, email string) ([]Order, error)
	ListBuyers(ctx context.Context) ([]Buyer, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu         sync.RWMutex
	orders     map[int64]Order
	nextID     int64
	nextItemID int64
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{orders: make(map[int64]Order, len(seed)), nextID: 1, nextItemID: 1}
	for _, o := range seed {
		r.orders[o.ID] = o
		if o.ID >= r.nextID {
			r.nextID = o.ID + 1
		}
		for _, it := range o.Items {
			if it.ID >= r.nextItemID {
				r.nextItemID = it.ID + 1
			}
		}
	}
	return r
}

// NextID reserves an order id.
func (r *InMemoryRepository) NextID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	return id
}

// NextItemID reserves an order item id.
func (r *InMemoryRepository) NextItemID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextItemID
	r.nextItemID++
	return id
}

// Save stores o, assigning ids to items that have none.
func (r *InMemoryRepository) Save(o Order) Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == 0 {
		o.ID = r.nextID
		r.nextID++
	}
	items := make([]Item, len(o.Items))
	for i, it := range o.Items {
		if it.ID == 0 {
			it.ID = r.nextItemID
			r.nextItemID++
		}
		it.OrderID = o.ID
		items[i] = it
	}
	o.Items = items
	r.orders[o.ID] = o
	return o
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (r *InMemoryRepository) ListByBuyerEmail(_ context.Context, email string) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.BuyerEmail == email {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *InMemoryRepository) ListBuyers(_ context.Context) ([]Buyer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[Buyer]struct{}{}
	out := make([]Buyer, 0)
	for _, o := range r.orders {
		b := Buyer{Name: o.BuyerName, Email: o.BuyerEmail, Phone: o.BuyerPhone}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	sortBuyers(out)
	return out, nil
}

func sortBuyers(buyers []Buyer) {
	sort.Slice(buyers, func(i, j int) bool {
		if c := strings.Compare(buyers[i].Email, buyers[j].Email); c != 0 {
			return c < 0
		}
		if c := strings.Compare(buyers[i].Name, buyers[j].Name); c != 0 {
			return c < 0
		}
		return buyers[i].Phone < buyers[j].Phone
	})
}
