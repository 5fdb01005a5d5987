package booksvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/jasonlau05/bookstore/model"
	bookrepo "github.com/jasonlau05/bookstore/repository/book"
	"github.com/jasonlau05/bookstore/util/apperr"
)

// Cache is a read-through copy of catalog listings keyed by search query
// and generation. Invalidate moves to a new generation, so a listing read
// before it can only be stored under the old one.
type Cache interface {
	Version(ctx context.Context) (int64, error)
	Get(ctx context.Context, ver int64, query string) ([]model.Book, bool, error)
	Set(ctx context.Context, ver int64, query string, books []model.Book) error
	Invalidate(ctx context.Context) error
}

type Service interface {
	List(ctx context.Context, query string) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	UpdateFields(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error)

	// InvalidateCatalog drops cached listings. Failures are only logged.
	InvalidateCatalog(ctx context.Context)
}

type service struct {
	r     bookrepo.Repo
	cache Cache
	log   *slog.Logger
	group singleflight.Group
}

type Option func(*service)

func WithCache(c Cache) Option { return func(s *service) { s.cache = c } }

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

func New(r bookrepo.Repo, opts ...Option) Service {
	s := &service{r: r, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) List(ctx context.Context, query string) ([]model.Book, error) {
	query = strings.TrimSpace(query)
	cached := s.cache != nil
	var ver int64
	if cached {
		var err error
		if ver, err = s.cache.Version(ctx); err != nil {
			s.log.Warn("catalog cache read failed", "err", err)
			cached = false
		}
	}
	if cached {
		books, ok, err := s.cache.Get(ctx, ver, query)
		if err != nil {
			s.log.Warn("catalog cache read failed", "err", err)
		} else if ok {
			return books, nil
		}
	}

	v, err, _ := s.group.Do(fmt.Sprintf("%d\x00%s", ver, query), func() (any, error) {
		books, err := s.r.List(ctx, query)
		if err != nil {
			return nil, err
		}
		if cached {
			if err := s.cache.Set(ctx, ver, query, books); err != nil {
				s.log.Warn("catalog cache write failed", "err", err)
			}
		}
		return books, nil
	})
	if err != nil {
		return nil, apperr.Storage(err, "could not list books")
	}
	return v.([]model.Book), nil
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, bookrepo.ErrNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "book %d not found", id)
		}
		return nil, apperr.Storage(err, "could not load book")
	}
	return b, nil
}

func (s *service) UpdateFields(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error) {
	if p.Quantity != nil && *p.Quantity < 0 {
		return nil, apperr.New(apperr.Validation, "quantity must not be negative")
	}
	if (p.BuyPrice != nil && !model.ValidPrice(*p.BuyPrice)) || (p.RentPrice != nil && !model.ValidPrice(*p.RentPrice)) {
		return nil, apperr.New(apperr.Validation, "price must be whole cents between 0 and 99999999.99")
	}

	b, err := s.r.Patch(ctx, id, p)
	switch {
	case errors.Is(err, bookrepo.ErrEmptyPatch):
		return nil, apperr.New(apperr.NoFieldsProvided, "no fields provided")
	case errors.Is(err, bookrepo.ErrNotFound):
		return nil, apperr.Newf(apperr.NotFound, "book %d not found", id)
	case err != nil:
		return nil, apperr.Storage(err, "could not update book")
	}

	s.InvalidateCatalog(ctx)
	return b, nil
}

func (s *service) InvalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("catalog cache invalidate failed", "err", err)
	}
}
