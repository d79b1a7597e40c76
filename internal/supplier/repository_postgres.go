package supplier

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

const (
	listSuppliersQuery     = `SELECT id, name, contact_email FROM suppliers ORDER BY name, id`
	getSupplierByNameQuery = `SELECT id, name, contact_email FROM suppliers WHERE name = $1 ORDER BY id LIMIT 1`
	insertSupplierQuery    = `INSERT INTO suppliers (name, contact_email) VALUES ($1, $2) RETURNING id`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.QueryContext(ctx, listSuppliersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Supplier, 0)
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (Supplier, error) {
	s, err := scanSupplier(r.db.QueryRowContext(ctx, getSupplierByNameQuery, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return s, err
}

func (r *PostgresRepository) Create(ctx context.Context, s Supplier) (Supplier, error) {
	if err := r.db.QueryRowContext(ctx, insertSupplierQuery, s.Name, s.ContactEmail).Scan(&s.ID); err != nil {
		return Supplier{}, err
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSupplier(row rowScanner) (Supplier, error) {
	var (
		s     Supplier
		email sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Name, &email); err != nil {
		return Supplier{}, err
	}
	if email.Valid {
		s.ContactEmail = &email.String
	}
	return s, nil
}
