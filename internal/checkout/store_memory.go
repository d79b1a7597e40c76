package checkout

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/wholesale-shop/internal/order"
	"github.com/wichananm65/wholesale-shop/internal/product"
)

// Stage names a Tx operation for MemoryStore.SetFailure.
type Stage string

const (
	StageLock        Stage = "lock"
	StageSaveStock   Stage = "save_stock"
	StageCreateOrder Stage = "create_order"
	StageCreateItems Stage = "create_items"
	StageSetTotal    Stage = "set_total"
	StageCommit      Stage = "commit"
)

// MemoryStore gives the in-memory repositories the same transactional
// guarantees as PostgresStore. Each product has a one-slot semaphore that
// is held from LockProductsForUpdate until the transaction ends; writes are
// staged and only applied on commit.
type MemoryStore struct {
	products *product.InMemoryRepository
	orders   *order.InMemoryRepository

	mu       sync.Mutex
	locks    map[int64]chan struct{}
	failures map[Stage]error
}

func NewMemoryStore(products *product.InMemoryRepository, orders *order.InMemoryRepository) *MemoryStore {
	return &MemoryStore{
		products: products,
		orders:   orders,
		locks:    make(map[int64]chan struct{}),
		failures: make(map[Stage]error),
	}
}

// SetFailure makes the given stage return err in every following
// transaction. A nil err clears it.
func (s *MemoryStore) SetFailure(stage Stage, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, stage)
		return
	}
	s.failures[stage] = err
}

func (s *MemoryStore) failure(stage Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[stage]
}

func (s *MemoryStore) semaphore(id int64) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &memoryTx{store: s, held: map[int64]bool{}, stock: map[int64]int{}}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.failure(StageCommit); err != nil {
		return err
	}
	tx.apply()
	return nil
}

type memoryTx struct {
	store     *MemoryStore
	held      map[int64]bool
	lockOrder []int64
	order     *order.Order
	items     []order.Item
	total     decimal.Decimal
	stock     map[int64]int
}

func (t *memoryTx) LockProductsForUpdate(ctx context.Context, ids []int64) (map[int64]product.Product, error) {
	if err := t.store.failure(StageLock); err != nil {
		return nil, err
	}

	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make(map[int64]product.Product, len(sorted))
	for _, id := range sorted {
		if !t.held[id] {
			select {
			case t.store.semaphore(id) <- struct{}{}:
				t.held[id] = true
				t.lockOrder = append(t.lockOrder, id)
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		p, err := t.store.products.GetByID(ctx, id)
		if errors.Is(err, product.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if staged, ok := t.stock[id]; ok {
			p.Stock = staged
		}
		out[id] = p
	}
	return out, nil
}

func (t *memoryTx) SaveStock(_ context.Context, productID int64, stock int) error {
	if err := t.store.failure(StageSaveStock); err != nil {
		return err
	}
	t.stock[productID] = stock
	return nil
}

func (t *memoryTx) CreateOrder(_ context.Context, o *order.Order) error {
	if err := t.store.failure(StageCreateOrder); err != nil {
		return err
	}
	o.ID = t.store.orders.NextID()
	staged := *o
	t.order = &staged
	t.total = o.TotalPrice
	return nil
}

func (t *memoryTx) CreateOrderItems(_ context.Context, orderID int64, items []order.Item) ([]order.Item, error) {
	if err := t.store.failure(StageCreateItems); err != nil {
		return nil, err
	}
	out := make([]order.Item, len(items))
	for i, it := range items {
		it.ID = t.store.orders.NextItemID()
		it.OrderID = orderID
		out[i] = it
	}
	t.items = append(t.items, out...)
	return out, nil
}

func (t *memoryTx) SetOrderTotal(_ context.Context, _ int64, total decimal.Decimal) error {
	if err := t.store.failure(StageSetTotal); err != nil {
		return err
	}
	t.total = total
	return nil
}

func (t *memoryTx) apply() {
	for id, stock := range t.stock {
		// the row lock is held, so the product can only vanish through
		// a direct repository call outside any checkout
		_ = t.store.products.SetStock(id, stock)
	}
	if t.order != nil {
		o := *t.order
		o.Items = append([]order.Item(nil), t.items...)
		o.TotalPrice = t.total
		t.store.orders.Save(o)
	}
}

func (t *memoryTx) release() {
	for i := len(t.lockOrder) - 1; i >= 0; i-- {
		<-t.store.semaphore(t.lockOrder[i])
	}
	t.lockOrder = nil
	t.held = map[int64]bool{}
}
