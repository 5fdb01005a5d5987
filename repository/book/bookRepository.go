package bookrepo

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/jasonlau05/bookstore/model"
	"github.com/jasonlau05/bookstore/util/database"
)

var (
	ErrNotFound   = errors.New("book not found")
	ErrEmptyPatch = errors.New("no fields to update")
)

type Repo interface {
	List(ctx context.Context, query string) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Patch(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error)

	// Stock mutations run on the caller's transaction.
	Exists(ctx context.Context, tx database.DBTX, id int64) (bool, error)
	DecrementStock(ctx context.Context, tx database.DBTX, id int64, status string) (bool, error)
	IncrementStock(ctx context.Context, tx database.DBTX, id int64, status string) (bool, error)
}

type repo struct{ db database.DBTX }

func New(db database.DBTX) Repo { return &repo{db} }

const bookColumns = `id, title, author, buy_price, rent_price, status, quantity, genre, publication_year`

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.BuyPrice, &b.RentPrice, &b.Status, &b.Quantity, &b.Genre, &b.PublicationYear)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) List(ctx context.Context, query string) ([]model.Book, error) {
	q := `SELECT ` + bookColumns + ` FROM books`
	var args []any
	if query = strings.TrimSpace(query); query != "" {
		q += ` WHERE title ILIKE $1 OR author ILIKE $1`
		args = append(args, "%"+query+"%")
	}
	q += ` ORDER BY id`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list books")
	}
	defer rows.Close()

	out := []model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan book")
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := scanBook(r.db.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "book detail")
	}
	return b, nil
}

// patchField maps one editable field to its column.
type patchField struct {
	column string
	value  func(p *model.BookPatch) (any, bool)
}

func field[T any](get func(p *model.BookPatch) *T) func(p *model.BookPatch) (any, bool) {
	return func(p *model.BookPatch) (any, bool) {
		v := get(p)
		if v == nil {
			return nil, false
		}
		return *v, true
	}
}

// patchFields is the full set of columns a manager may edit.
var patchFields = [...]patchField{
	{"title", field(func(p *model.BookPatch) *string { return p.Title })},
	{"author", field(func(p *model.BookPatch) *string { return p.Author })},
	{"buy_price", field(func(p *model.BookPatch) *decimal.Decimal { return p.BuyPrice })},
	{"rent_price", field(func(p *model.BookPatch) *decimal.Decimal { return p.RentPrice })},
	{"status", field(func(p *model.BookPatch) *string { return p.Status })},
	{"quantity", field(func(p *model.BookPatch) *int { return p.Quantity })},
	{"genre", field(func(p *model.BookPatch) *string { return p.Genre })},
	{"publication_year", field(func(p *model.BookPatch) *int { return p.PublicationYear })},
}

func (r *repo) Patch(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error) {
	var sets []string
	var args []any
	for _, f := range patchFields {
		v, ok := f.value(&p)
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, f.column+" = $"+strconv.Itoa(len(args)))
	}
	if len(sets) == 0 {
		return nil, ErrEmptyPatch
	}
	args = append(args, id)
	q := `UPDATE books SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + bookColumns

	b, err := scanBook(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "patch book")
	}
	return b, nil
}

func (r *repo) Exists(ctx context.Context, tx database.DBTX, id int64) (bool, error) {
	var ok bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, errors.Wrap(err, "book exists")
	}
	return ok, nil
}

// DecrementStock takes one copy and records status. It reports false when
// the guard matched no row: the book is missing or already at zero.
func (r *repo) DecrementStock(ctx context.Context, tx database.DBTX, id int64, status string) (bool, error) {
	const q = `
		UPDATE books
		SET quantity = quantity - 1, status = $2
		WHERE id = $1
		AND quantity > 0`
	tag, err := tx.Exec(ctx, q, id, status)
	if err != nil {
		return false, errors.Wrap(err, "decrement stock")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) IncrementStock(ctx context.Context, tx database.DBTX, id int64, status string) (bool, error) {
	const q = `
		UPDATE books
		SET quantity = quantity + 1, status = $2
		WHERE id = $1`
	tag, err := tx.Exec(ctx, q, id, status)
	if err != nil {
		return false, errors.Wrap(err, "increment stock")
	}
	return tag.RowsAffected() == 1, nil
}
