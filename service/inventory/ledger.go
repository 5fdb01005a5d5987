// Package inventory owns every change to book stock counts.
package inventory

import (
	"context"

	"github.com/jasonlau05/bookstore/model"
	"github.com/jasonlau05/bookstore/util/apperr"
	"github.com/jasonlau05/bookstore/util/database"
)

// Stock is the storage the ledger moves quantities through.
type Stock interface {
	Exists(ctx context.Context, tx database.DBTX, id int64) (bool, error)
	DecrementStock(ctx context.Context, tx database.DBTX, id int64, status string) (bool, error)
	IncrementStock(ctx context.Context, tx database.DBTX, id int64, status string) (bool, error)
}

type Ledger struct{ s Stock }

func NewLedger(s Stock) *Ledger { return &Ledger{s: s} }

// statusAfter is the book status a checkout line leaves behind.
func statusAfter(kind model.ItemKind) (string, error) {
	switch kind {
	case model.KindBuy:
		return model.BookSold, nil
	case model.KindRent:
		return model.BookRented, nil
	default:
		return "", apperr.Newf(apperr.Validation, "invalid kind %q", kind)
	}
}

// Take removes one copy of bookID on tx and marks the book sold or rented.
// The decrement is conditional on quantity > 0, so concurrent takes of the
// last copy leave exactly one winner.
func (l *Ledger) Take(ctx context.Context, tx database.DBTX, bookID int64, kind model.ItemKind) error {
	status, err := statusAfter(kind)
	if err != nil {
		return err
	}
	ok, err := l.s.DecrementStock(ctx, tx, bookID, status)
	if err != nil {
		return apperr.Storage(err, "could not update stock")
	}
	if ok {
		return nil
	}

	exists, err := l.s.Exists(ctx, tx, bookID)
	if err != nil {
		return apperr.Storage(err, "could not update stock")
	}
	if !exists {
		return apperr.Newf(apperr.NotFound, "book %d not found", bookID)
	}
	return apperr.Newf(apperr.OutOfStock, "book %d is out of stock", bookID)
}

// Restock puts one copy of bookID back on tx; the book is in stock again.
func (l *Ledger) Restock(ctx context.Context, tx database.DBTX, bookID int64) error {
	ok, err := l.s.IncrementStock(ctx, tx, bookID, model.BookInStock)
	if err != nil {
		return apperr.Storage(err, "could not update stock")
	}
	if !ok {
		return apperr.Newf(apperr.NotFound, "book %d not found", bookID)
	}
	return nil
}
