package catalog

import (
	"context"
	"time"

	"bookbot/internal/book"

	"github.com/patrickmn/go-cache"
)

// CachedLookup memoizes GetByID. Books seen in search results are cached too,
// so resolving a recently listed id never reaches upstream.
type CachedLookup struct {
	next  Gateway
	cache *cache.Cache
}

func NewCachedLookup(next Gateway, ttl time.Duration) *CachedLookup {
	return &CachedLookup{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedLookup) Search(ctx context.Context, q Query) ([]book.Book, error) {
	books, err := c.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		c.cache.SetDefault(b.ID, b)
	}
	return books, nil
}

func (c *CachedLookup) GetByID(ctx context.Context, id string) (book.Book, error) {
	if x, found := c.cache.Get(id); found {
		return x.(book.Book), nil
	}
	b, err := c.next.GetByID(ctx, id)
	if err != nil {
		return book.Book{}, err
	}
	c.cache.SetDefault(id, b)
	return b, nil
}
