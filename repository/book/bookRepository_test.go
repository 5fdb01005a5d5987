package bookrepo

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jasonlau05/bookstore/model"
)

var cols = []string{"id", "title", "author", "buy_price", "rent_price", "status", "quantity", "genre", "publication_year"}

func gatsby(qty int) []any {
	return []any{int64(1), "The Great Gatsby", "F. Scott Fitzgerald",
		decimal.RequireFromString("15.99"), decimal.RequireFromString("5.00"),
		"in stock", qty, "romance", 1978}
}

func TestDecrementStock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("SET quantity = quantity - 1, status = $2")).WithArgs(int64(42), model.BookSold).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("SET quantity = quantity - 1, status = $2")).WithArgs(int64(43), model.BookRented).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	r := New(mock)
	ok, err := r.DecrementStock(context.Background(), mock, 42, model.BookSold)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.DecrementStock(context.Background(), mock, 43, model.BookRented)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementStock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("SET quantity = quantity + 1, status = $2")).WithArgs(int64(7), model.BookInStock).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := New(mock).IncrementStock(context.Background(), mock, 7, model.BookInStock)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(100)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := New(mock).Exists(context.Background(), mock, 100)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestList_Search(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("WHERE title ILIKE").WithArgs("%gatsby%").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(gatsby(67)...))

	books, err := New(mock).List(context.Background(), " gatsby ")
	require.NoError(t, err)
	require.Len(t, books, 1)
	require.Equal(t, "The Great Gatsby", books[0].Title)
	require.True(t, decimal.RequireFromString("15.99").Equal(books[0].BuyPrice))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_All(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM books ORDER BY id").
		WillReturnRows(pgxmock.NewRows(cols))

	books, err := New(mock).List(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, books)
	require.Empty(t, books)
}

func TestDetail_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM books WHERE id").WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)

	_, err = New(mock).Detail(context.Background(), 9)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPatch_BuildsAllowListedColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	title := "Gatsby"
	qty := 3
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE books SET title = $1, quantity = $2 WHERE id = $3 RETURNING")).
		WithArgs("Gatsby", 3, int64(1)).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(gatsby(3)...))

	b, err := New(mock).Patch(context.Background(), 1, model.BookPatch{Title: &title, Quantity: &qty})
	require.NoError(t, err)
	require.Equal(t, 3, b.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatch_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = New(mock).Patch(context.Background(), 1, model.BookPatch{})
	require.ErrorIs(t, err, ErrEmptyPatch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatch_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	status := "sold"
	mock.ExpectQuery("UPDATE books SET status").WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).WillReturnError(pgx.ErrNoRows)

	_, err = New(mock).Patch(context.Background(), 404, model.BookPatch{Status: &status})
	require.ErrorIs(t, err, ErrNotFound)
}
