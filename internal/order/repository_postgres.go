package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	selectOrderColumns    = `SELECT id, buyer_name, buyer_email, buyer_phone, status, total_price, created_at, updated_at FROM orders`
	getOrderQuery         = selectOrderColumns + ` WHERE id = $1`
	listByBuyerEmailQuery = selectOrderColumns + ` WHERE buyer_email = $1 ORDER BY created_at DESC, id DESC`
	listItemsQuery        = `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::bigint[])
		ORDER BY oi.order_id, oi.id
	`
	listBuyersQuery = `
		SELECT DISTINCT buyer_name, buyer_email, buyer_phone
		FROM orders
		ORDER BY buyer_email, buyer_name, buyer_phone
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}

	orders := []Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) ListByBuyerEmail(ctx context.Context, email string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listByBuyerEmailQuery, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) ListBuyers(ctx context.Context) ([]Buyer, error) {
	rows, err := r.db.QueryContext(ctx, listBuyersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buyers := make([]Buyer, 0)
	for rows.Next() {
		var b Buyer
		if err := rows.Scan(&b.Name, &b.Email, &b.Phone); err != nil {
			return nil, err
		}
		buyers = append(buyers, b)
	}
	return buyers, rows.Err()
}

// attachItems loads the items of all orders with one query.
func (r *PostgresRepository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []Item{}
	}

	rows, err := r.db.QueryContext(ctx, listItemsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return err
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var status string
	if err := row.Scan(&o.ID, &o.BuyerName, &o.BuyerEmail, &o.BuyerPhone, &status, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	return o, nil
}
