package cart

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_GetCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(getCartQuery)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"cart"}).AddRow(`{"1": 2}`))
	mock.ExpectQuery(regexp.QuoteMeta(getCartQuery)).
		WithArgs(int64(43)).
		WillReturnRows(sqlmock.NewRows([]string{"cart"}))

	store := NewPostgresStore(db)
	got, err := store.GetCart(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, Equal(got, map[string]int{"1": 2}))

	_, err = store.GetCart(context.Background(), "43")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetCart(context.Background(), "not-a-user")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetAndClear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(setCartQuery)).
		WithArgs(`{"1":3}`, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(clearCartQuery)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(clearCartQuery)).
		WithArgs(int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPostgresStore(db)
	require.NoError(t, store.SetCart(context.Background(), "42", map[string]int{"1": 3}))
	require.NoError(t, store.ClearCart(context.Background(), "42"))
	assert.ErrorIs(t, store.ClearCart(context.Background(), "77"), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
