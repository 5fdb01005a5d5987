// service/book/bookService_test.go
package booksvc_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jasonlau05/bookstore/model"
	bookrepo "github.com/jasonlau05/bookstore/repository/book"
	booksvc "github.com/jasonlau05/bookstore/service/book"
	"github.com/jasonlau05/bookstore/util/apperr"
	"github.com/jasonlau05/bookstore/util/database"
)

type repoMock struct {
	listFn   func(ctx context.Context, query string) ([]model.Book, error)
	detailFn func(ctx context.Context, id int64) (*model.Book, error)
	patchFn  func(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error)
}

var _ bookrepo.Repo = (*repoMock)(nil)

func (m *repoMock) List(ctx context.Context, query string) ([]model.Book, error) {
	return m.listFn(ctx, query)
}
func (m *repoMock) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return m.detailFn(ctx, id)
}
func (m *repoMock) Patch(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error) {
	return m.patchFn(ctx, id, p)
}
func (m *repoMock) Exists(ctx context.Context, tx database.DBTX, id int64) (bool, error) {
	return true, nil
}
func (m *repoMock) DecrementStock(ctx context.Context, tx database.DBTX, id int64, status string) (bool, error) {
	return true, nil
}
func (m *repoMock) IncrementStock(ctx context.Context, tx database.DBTX, id int64, status string) (bool, error) {
	return true, nil
}

type memCache struct {
	entries     map[string][]model.Book
	version     int64
	getErr      error
	invalidated int
}

func entryKey(ver int64, query string) string { return fmt.Sprintf("%d:%s", ver, query) }

func (c *memCache) Version(ctx context.Context) (int64, error) {
	return c.version, nil
}

func (c *memCache) Get(ctx context.Context, ver int64, query string) ([]model.Book, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	b, ok := c.entries[entryKey(ver, query)]
	return b, ok, nil
}

func (c *memCache) Set(ctx context.Context, ver int64, query string, books []model.Book) error {
	c.entries[entryKey(ver, query)] = books
	return nil
}

func (c *memCache) Invalidate(ctx context.Context) error {
	c.version++
	c.invalidated++
	return nil
}

func TestList_CacheAside(t *testing.T) {
	ctx := context.Background()
	calls := 0
	m := &repoMock{listFn: func(ctx context.Context, query string) ([]model.Book, error) {
		calls++
		require.Equal(t, "dune", query)
		return []model.Book{{ID: 1, Title: "Dune"}}, nil
	}}
	cache := &memCache{entries: map[string][]model.Book{}}
	s := booksvc.New(m, booksvc.WithCache(cache))

	got, err := s.List(ctx, "  dune ")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.List(ctx, "dune")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, calls)

	s.InvalidateCatalog(ctx)
	_, err = s.List(ctx, "dune")
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestList_InvalidationDuringReadIsNotCached(t *testing.T) {
	ctx := context.Background()
	cache := &memCache{entries: map[string][]model.Book{}}
	var s booksvc.Service
	calls := 0
	m := &repoMock{listFn: func(ctx context.Context, query string) ([]model.Book, error) {
		calls++
		if calls == 1 {
			// a patch commits while the first listing is in flight
			s.InvalidateCatalog(ctx)
			return []model.Book{{ID: 1, Quantity: 5}}, nil
		}
		return []model.Book{{ID: 1, Quantity: 4}}, nil
	}}
	s = booksvc.New(m, booksvc.WithCache(cache))

	got, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 5, got[0].Quantity)

	got, err = s.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 4, got[0].Quantity)
	require.Equal(t, 2, calls)
}

func TestList_CacheFailureFallsThrough(t *testing.T) {
	m := &repoMock{listFn: func(ctx context.Context, query string) ([]model.Book, error) {
		return []model.Book{{ID: 1}}, nil
	}}
	cache := &memCache{entries: map[string][]model.Book{}, getErr: errors.New("redis down")}
	s := booksvc.New(m, booksvc.WithCache(cache))

	got, err := s.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestList_StorageFailure(t *testing.T) {
	m := &repoMock{listFn: func(ctx context.Context, query string) ([]model.Book, error) {
		return nil, errors.New("db down")
	}}
	_, err := booksvc.New(m).List(context.Background(), "")
	require.Equal(t, apperr.StorageFailure, apperr.CodeOf(err))
}

func TestDetail(t *testing.T) {
	m := &repoMock{detailFn: func(ctx context.Context, id int64) (*model.Book, error) {
		if id == 42 {
			return &model.Book{ID: 42}, nil
		}
		return nil, bookrepo.ErrNotFound
	}}
	s := booksvc.New(m)

	b, err := s.Detail(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), b.ID)

	_, err = s.Detail(context.Background(), 1)
	require.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestUpdateFields(t *testing.T) {
	ctx := context.Background()
	qty := 4
	neg := -1
	price := decimal.RequireFromString("-2.00")
	subCent := decimal.RequireFromString("2.005")
	huge := decimal.RequireFromString("100000000")

	m := &repoMock{patchFn: func(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error) {
		switch {
		case id == 404:
			return nil, bookrepo.ErrNotFound
		case p == (model.BookPatch{}):
			return nil, bookrepo.ErrEmptyPatch
		}
		return &model.Book{ID: id, Quantity: *p.Quantity}, nil
	}}
	cache := &memCache{entries: map[string][]model.Book{entryKey(0, ""): {{ID: 1}}}}
	s := booksvc.New(m, booksvc.WithCache(cache))

	b, err := s.UpdateFields(ctx, 1, model.BookPatch{Quantity: &qty})
	require.NoError(t, err)
	require.Equal(t, 4, b.Quantity)
	require.Equal(t, 1, cache.invalidated)

	_, err = s.UpdateFields(ctx, 1, model.BookPatch{})
	require.Equal(t, apperr.NoFieldsProvided, apperr.CodeOf(err))

	_, err = s.UpdateFields(ctx, 404, model.BookPatch{Quantity: &qty})
	require.Equal(t, apperr.NotFound, apperr.CodeOf(err))

	_, err = s.UpdateFields(ctx, 1, model.BookPatch{Quantity: &neg})
	require.Equal(t, apperr.Validation, apperr.CodeOf(err))

	_, err = s.UpdateFields(ctx, 1, model.BookPatch{BuyPrice: &price})
	require.Equal(t, apperr.Validation, apperr.CodeOf(err))

	_, err = s.UpdateFields(ctx, 1, model.BookPatch{RentPrice: &subCent})
	require.Equal(t, apperr.Validation, apperr.CodeOf(err))

	_, err = s.UpdateFields(ctx, 1, model.BookPatch{BuyPrice: &huge})
	require.Equal(t, apperr.Validation, apperr.CodeOf(err))

	require.Equal(t, 1, cache.invalidated)
}
