package ordersvc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jasonlau05/bookstore/model"
	"github.com/jasonlau05/bookstore/repository/events"
	orderrepo "github.com/jasonlau05/bookstore/repository/order"
	"github.com/jasonlau05/bookstore/service/inventory"
	"github.com/jasonlau05/bookstore/util/apperr"
	"github.com/jasonlau05/bookstore/util/database"
)

// CatalogInvalidator drops cached catalog reads after stock moves.
type CatalogInvalidator interface {
	InvalidateCatalog(ctx context.Context)
}

type Service interface {
	// PlaceOrder turns a cart into one pending order, all or nothing.
	PlaceOrder(ctx context.Context, customerID int64, lines []model.CartLine) (*model.PlacedOrder, error)

	MarkPaid(ctx context.Context, orderID int64) (*model.Order, error)
	// ReturnRental marks a rented item returned and restocks its book.
	ReturnRental(ctx context.Context, itemID int64) error

	ListOrders(ctx context.Context) ([]model.Order, error)
	ListMyOrders(ctx context.Context, p model.Principal, customerID int64) ([]model.Order, error)
	OrderItems(ctx context.Context, p model.Principal, orderID int64) ([]model.OrderItem, error)
}

type service struct {
	db     database.Pool
	r      orderrepo.Repo
	ledger *inventory.Ledger
	pub    events.Publisher
	cat    CatalogInvalidator
	log    *slog.Logger
}

type Option func(*service)

func WithPublisher(p events.Publisher) Option { return func(s *service) { s.pub = p } }

func WithCatalog(c CatalogInvalidator) Option { return func(s *service) { s.cat = c } }

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

func New(db database.Pool, r orderrepo.Repo, ledger *inventory.Ledger, opts ...Option) Service {
	s := &service{db: db, r: r, ledger: ledger, pub: events.Discard{}, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func validateCart(lines []model.CartLine) error {
	if len(lines) == 0 {
		return apperr.New(apperr.Validation, "cart is empty")
	}
	seen := make(map[int64]bool, len(lines))
	for _, l := range lines {
		switch {
		case l.BookID <= 0:
			return apperr.Newf(apperr.Validation, "invalid book id %d", l.BookID)
		case !l.Kind.Purchasable():
			return apperr.Newf(apperr.Validation, "invalid kind %q for book %d", l.Kind, l.BookID)
		case !model.ValidPrice(l.Price):
			return apperr.Newf(apperr.Validation, "invalid price %s for book %d", l.Price, l.BookID)
		case seen[l.BookID]:
			return apperr.Newf(apperr.Validation, "book %d is in the cart twice", l.BookID)
		}
		seen[l.BookID] = true
	}
	return nil
}

func (s *service) PlaceOrder(ctx context.Context, customerID int64, lines []model.CartLine) (*model.PlacedOrder, error) {
	if err := validateCart(lines); err != nil {
		return nil, err
	}

	// Prices come from the cart snapshot.
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price)
	}
	if total.GreaterThan(model.MaxPrice) {
		return nil, apperr.New(apperr.Validation, "order total is too large")
	}

	var orderID int64
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		orderID, err = s.r.InsertOrder(ctx, tx, customerID, total)
		if err != nil {
			return apperr.Storage(err, "could not create order")
		}
		for _, l := range lines {
			if err := s.ledger.Take(ctx, tx, l.BookID, l.Kind); err != nil {
				return err
			}
			if _, err := s.r.InsertItem(ctx, tx, orderID, l); err != nil {
				return apperr.Storage(err, "could not create order item")
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err, "could not place order")
	}

	s.afterStockChange(ctx)
	if err := s.pub.OrderPlaced(ctx, events.OrderPlaced{
		OrderID:    orderID,
		CustomerID: customerID,
		TotalCost:  total,
		Items:      lines,
		At:         time.Now().UTC(),
	}); err != nil {
		s.log.Warn("publish order.placed failed", "order_id", orderID, "err", err)
	}

	return &model.PlacedOrder{OrderID: orderID, TotalCost: total}, nil
}

func (s *service) MarkPaid(ctx context.Context, orderID int64) (*model.Order, error) {
	o, err := s.r.MarkPaid(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "order %d not found", orderID)
		}
		return nil, apperr.Storage(err, "could not update order")
	}
	return o, nil
}

func (s *service) ReturnRental(ctx context.Context, itemID int64) error {
	var bookID int64
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		bookID, err = s.r.MarkItemReturned(ctx, tx, itemID)
		switch {
		case errors.Is(err, orderrepo.ErrNotFound):
			return apperr.Newf(apperr.NotFound, "order item %d not found", itemID)
		case errors.Is(err, orderrepo.ErrNotRented):
			return apperr.Newf(apperr.NotRented, "order item %d is not rented", itemID)
		case err != nil:
			return apperr.Storage(err, "could not update order item")
		}
		return s.ledger.Restock(ctx, tx, bookID)
	})
	if err != nil {
		return apperr.Storage(err, "could not return rental")
	}

	s.afterStockChange(ctx)
	if err := s.pub.RentalReturned(ctx, events.RentalReturned{
		ItemID: itemID,
		BookID: bookID,
		At:     time.Now().UTC(),
	}); err != nil {
		s.log.Warn("publish rental.returned failed", "item_id", itemID, "err", err)
	}
	return nil
}

func (s *service) afterStockChange(ctx context.Context) {
	if s.cat != nil {
		s.cat.InvalidateCatalog(ctx)
	}
}

func (s *service) ListOrders(ctx context.Context) ([]model.Order, error) {
	out, err := s.r.ListAll(ctx)
	if err != nil {
		return nil, apperr.Storage(err, "could not list orders")
	}
	return out, nil
}

func (s *service) ListMyOrders(ctx context.Context, p model.Principal, customerID int64) ([]model.Order, error) {
	if p.UserID != customerID {
		return nil, apperr.New(apperr.Forbidden, "orders belong to another customer")
	}
	out, err := s.r.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperr.Storage(err, "could not list orders")
	}
	return out, nil
}

func (s *service) OrderItems(ctx context.Context, p model.Principal, orderID int64) ([]model.OrderItem, error) {
	owner, err := s.r.Owner(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "order %d not found", orderID)
		}
		return nil, apperr.Storage(err, "could not load order")
	}
	if !p.IsManager() && owner != p.UserID {
		return nil, apperr.New(apperr.Forbidden, "order belongs to another customer")
	}

	items, err := s.r.Items(ctx, orderID)
	if err != nil {
		return nil, apperr.Storage(err, "could not list order items")
	}
	return items, nil
}
