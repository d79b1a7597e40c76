package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
)

// PostgresStore keeps the cart in the users.cart jsonb column, keyed by
// user id.
type PostgresStore struct {
	db *sql.DB
}

const (
	getCartQuery   = `SELECT cart FROM users WHERE id = $1`
	setCartQuery   = `UPDATE users SET cart = $1::jsonb, updated_at = now() WHERE id = $2`
	clearCartQuery = `UPDATE users SET cart = '{}'::jsonb, updated_at = now() WHERE id = $1`
)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetCart(ctx context.Context, key string) (RawCart, error) {
	userID, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}

	var raw sql.NullString
	if err := s.db.QueryRowContext(ctx, getCartQuery, userID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !raw.Valid {
		return RawCart{}, nil
	}
	return DecodeRaw([]byte(raw.String))
}

func (s *PostgresStore) SetCart(ctx context.Context, key string, cart map[string]int) error {
	userID, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return ErrNotFound
	}
	b, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.exec(ctx, setCartQuery, string(b), userID)
}

func (s *PostgresStore) ClearCart(ctx context.Context, key string) error {
	userID, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return ErrNotFound
	}
	return s.exec(ctx, clearCartQuery, userID)
}

func (s *PostgresStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
