package checkout

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/wholesale-shop/internal/order"
	"github.com/wichananm65/wholesale-shop/internal/product"
)

const (
	lockProductsQuery = `
		SELECT id, name, description, price, stock, supplier_id
		FROM products
		WHERE id = ANY($1::bigint[])
		ORDER BY id
		FOR UPDATE
	`
	saveStockQuery   = `UPDATE products SET stock = $1, updated_at = now() WHERE id = $2`
	insertOrderQuery = `
		INSERT INTO orders (buyer_name, buyer_email, buyer_phone, status, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`
	insertOrderItemsPrefix = `INSERT INTO order_items (order_id, product_id, quantity, price) VALUES `
	setOrderTotalQuery     = `UPDATE orders SET total_price = $1, updated_at = now() WHERE id = $2`
)

// PostgresStore runs checkouts in a database/sql transaction and locks
// product rows with SELECT ... FOR UPDATE.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkout tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &postgresTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout tx: %w", err)
	}
	return nil
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) LockProductsForUpdate(ctx context.Context, ids []int64) (map[int64]product.Product, error) {
	rows, err := t.tx.QueryContext(ctx, lockProductsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]product.Product, len(ids))
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.SupplierID); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (t *postgresTx) SaveStock(ctx context.Context, productID int64, stock int) error {
	_, err := t.tx.ExecContext(ctx, saveStockQuery, stock, productID)
	return err
}

func (t *postgresTx) CreateOrder(ctx context.Context, o *order.Order) error {
	return t.tx.QueryRowContext(ctx, insertOrderQuery,
		o.BuyerName, o.BuyerEmail, o.BuyerPhone, string(o.Status), o.TotalPrice, o.CreatedAt,
	).Scan(&o.ID)
}

// CreateOrderItems inserts all items with one multi-row statement.
func (t *postgresTx) CreateOrderItems(ctx context.Context, orderID int64, items []order.Item) ([]order.Item, error) {
	if len(items) == 0 {
		return []order.Item{}, nil
	}

	var b strings.Builder
	b.WriteString(insertOrderItemsPrefix)
	args := make([]any, 0, len(items)*4)
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, orderID, it.ProductID, it.Quantity, it.Price)
	}
	b.WriteString(" RETURNING id")

	rows, err := t.tx.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]order.Item, len(items))
	copy(out, items)
	i := 0
	for rows.Next() {
		if i >= len(out) {
			return nil, fmt.Errorf("order items insert returned more rows than inserted")
		}
		if err := rows.Scan(&out[i].ID); err != nil {
			return nil, err
		}
		out[i].OrderID = orderID
		i++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if i != len(out) {
		return nil, fmt.Errorf("order items insert returned %d of %d rows", i, len(out))
	}
	return out, nil
}

func (t *postgresTx) SetOrderTotal(ctx context.Context, orderID int64, total decimal.Decimal) error {
	_, err := t.tx.ExecContext(ctx, setOrderTotalQuery, total, orderID)
	return err
}
