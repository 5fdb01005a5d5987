package catalogcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/jasonlau05/bookstore/model"
)

// DefaultKey prefixes every catalog key. Listings live under
// <prefix>:<version>:<query>; bumping <prefix>:version orphans them all.
const DefaultKey = "catalog:books"

type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache) versionKey() string { return c.prefix + ":version" }

func (c *Cache) entryKey(ver int64, query string) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, ver, query)
}

// Version returns the current catalog generation, 0 before the first
// invalidation.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey()).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, errors.Wrap(err, "catalog cache version")
	}
	return v, nil
}

// Get returns the listing cached for query in generation ver; ok is false
// on a miss.
func (c *Cache) Get(ctx context.Context, ver int64, query string) ([]model.Book, bool, error) {
	raw, err := c.client.Get(ctx, c.entryKey(ver, query)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "catalog cache get")
	}
	var books []model.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, false, errors.Wrap(err, "catalog cache decode")
	}
	return books, true, nil
}

// Set stores a listing read during generation ver. A write that lands
// after an invalidation goes to an orphaned key and is never read.
func (c *Cache) Set(ctx context.Context, ver int64, query string, books []model.Book) error {
	raw, err := json.Marshal(books)
	if err != nil {
		return errors.Wrap(err, "catalog cache encode")
	}
	if err := c.client.Set(ctx, c.entryKey(ver, query), raw, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "catalog cache set")
	}
	return nil
}

// Invalidate starts a new generation.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.versionKey()).Err()
}
