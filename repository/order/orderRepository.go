// repository/order/orderRepository.go
package orderrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/jasonlau05/bookstore/model"
	"github.com/jasonlau05/bookstore/util/database"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNotRented = errors.New("item is not rented")
)

type Repo interface {
	// Checkout, on the caller's transaction.
	InsertOrder(ctx context.Context, tx database.DBTX, customerID int64, total decimal.Decimal) (int64, error)
	InsertItem(ctx context.Context, tx database.DBTX, orderID int64, line model.CartLine) (int64, error)

	// Lifecycle
	MarkPaid(ctx context.Context, orderID int64) (*model.Order, error)
	MarkItemReturned(ctx context.Context, tx database.DBTX, itemID int64) (bookID int64, err error)

	// Reads
	ListAll(ctx context.Context) ([]model.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error)
	Owner(ctx context.Context, orderID int64) (int64, error)
	Items(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}

type repo struct{ db database.DBTX }

func New(db database.DBTX) Repo { return &repo{db: db} }

const orderColumns = `id, customer_id, total_cost, status, created_at`

func (r *repo) InsertOrder(ctx context.Context, tx database.DBTX, customerID int64, total decimal.Decimal) (int64, error) {
	const q = `
		INSERT INTO orders (customer_id, total_cost, status)
		VALUES ($1, $2, 'pending')
		RETURNING id`
	var id int64
	if err := tx.QueryRow(ctx, q, customerID, total).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "insert order")
	}
	return id, nil
}

func (r *repo) InsertItem(ctx context.Context, tx database.DBTX, orderID int64, line model.CartLine) (int64, error) {
	const q = `
		INSERT INTO order_items (order_id, book_id, kind, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	var id int64
	if err := tx.QueryRow(ctx, q, orderID, line.BookID, string(line.Kind), line.Price).Scan(&id); err != nil {
		return 0, errors.Wrapf(err, "insert item for book %d", line.BookID)
	}
	return id, nil
}

// MarkPaid sets an order to paid. Orders only move pending -> paid, so an
// already paid order matches too and the call is a no-op for it.
func (r *repo) MarkPaid(ctx context.Context, orderID int64) (*model.Order, error) {
	q := `
		UPDATE orders
		SET status = 'paid'
		WHERE id = $1
		RETURNING ` + orderColumns
	o, err := scanOrder(r.db.QueryRow(ctx, q, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "mark paid")
	}
	return o, nil
}

// MarkItemReturned flips a rent item to returned and reports its book.
// Items that are not rented are left untouched.
func (r *repo) MarkItemReturned(ctx context.Context, tx database.DBTX, itemID int64) (int64, error) {
	const q = `
		UPDATE order_items
		SET kind = 'returned'
		WHERE id = $1
		AND kind = 'rent'
		RETURNING book_id`
	var bookID int64
	err := tx.QueryRow(ctx, q, itemID).Scan(&bookID)
	if err == nil {
		return bookID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, errors.Wrap(err, "mark returned")
	}

	var kind string
	err = tx.QueryRow(ctx, `SELECT kind FROM order_items WHERE id = $1`, itemID).Scan(&kind)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return 0, ErrNotFound
	case err != nil:
		return 0, errors.Wrap(err, "item kind")
	default:
		return 0, errors.Wrapf(ErrNotRented, "item %d is %s", itemID, kind)
	}
}

func (r *repo) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id DESC`)
}

func (r *repo) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY id DESC`, customerID)
}

func (r *repo) listOrders(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *repo) Owner(ctx context.Context, orderID int64) (int64, error) {
	var owner int64
	err := r.db.QueryRow(ctx, `SELECT customer_id FROM orders WHERE id = $1`, orderID).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, errors.Wrap(err, "order owner")
	}
	return owner, nil
}

func (r *repo) Items(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	const q = `
			SELECT
			oi.id       AS item_id,
			oi.order_id AS order_id,
			oi.book_id  AS book_id,
			b.title     AS title,
			oi.kind     AS kind,
			oi.price    AS price
			FROM order_items oi
			JOIN books b ON b.id = oi.book_id
			WHERE oi.order_id = $1
			ORDER BY oi.id`
	rows, err := r.db.Query(ctx, q, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}
	defer rows.Close()

	out := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		var kind string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.BookID, &it.Title, &kind, &it.Price); err != nil {
			return nil, errors.Wrap(err, "scan item")
		}
		it.Kind = model.ItemKind(kind)
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var status string
	if err := row.Scan(&o.ID, &o.CustomerID, &o.TotalCost, &status, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}
