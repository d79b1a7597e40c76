package product

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	selectProductColumns = `
		SELECT p.id, p.name, p.description, p.price, p.stock, p.supplier_id, s.name, p.created_at, p.updated_at
		FROM products p
		JOIN suppliers s ON s.id = p.supplier_id
	`
	listProductsQuery     = selectProductColumns + ` ORDER BY p.id`
	getProductByIDQuery   = selectProductColumns + ` WHERE p.id = $1`
	getProductByNameQuery = selectProductColumns + ` WHERE p.name = $1 ORDER BY p.id LIMIT 1`
	insertProductQuery    = `
		INSERT INTO products (name, description, price, stock, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByNameQuery, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	now := time.Now().UTC()
	if err := r.db.QueryRowContext(ctx, insertProductQuery,
		p.Name, p.Description, p.Price, p.Stock, p.SupplierID, now,
	).Scan(&p.ID); err != nil {
		return Product{}, err
	}
	p.CreatedAt = &now
	p.UpdatedAt = &now
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p                    Product
		createdAt, updatedAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.SupplierID, &p.SupplierName, &createdAt, &updatedAt); err != nil {
		return Product{}, err
	}
	if createdAt.Valid {
		p.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.Time
	}
	return p, nil
}
