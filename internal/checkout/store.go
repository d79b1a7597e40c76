package checkout

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/wholesale-shop/internal/order"
	"github.com/wichananm65/wholesale-shop/internal/product"
)

// Tx is the unit of work of one checkout. Every write made through a Tx is
// discarded unless the surrounding WithinTx call commits.
type Tx interface {
	// LockProductsForUpdate locks the rows of ids in ascending id order and
	// returns the products that exist. Missing ids are absent from the map.
	LockProductsForUpdate(ctx context.Context, ids []int64) (map[int64]product.Product, error)
	SaveStock(ctx context.Context, productID int64, stock int) error
	// CreateOrder inserts o and sets its id.
	CreateOrder(ctx context.Context, o *order.Order) error
	CreateOrderItems(ctx context.Context, orderID int64, items []order.Item) ([]order.Item, error)
	SetOrderTotal(ctx context.Context, orderID int64, total decimal.Decimal) error
}

// Store runs fn in a transaction: committed when fn returns nil, rolled
// back on error, panic or context cancellation.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
