package catalog

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks bookbot/internal/catalog Gateway

import (
	"context"
	"errors"

	"bookbot/internal/book"
)

var (
	// ErrNotFound is returned by GetByID when the catalog has no such volume.
	ErrNotFound = errors.New("book not found in catalog")
	// ErrUnavailable is returned while the catalog is failing fast.
	ErrUnavailable = errors.New("catalog unavailable")
)

// Kind selects the catalog field a search term applies to.
type Kind string

const (
	KindTitle   Kind = "title"
	KindAuthor  Kind = "author"
	KindSubject Kind = "subject"
	KindAny     Kind = "any"
)

// Order selects the catalog result ordering.
type Order string

const (
	OrderRelevance Order = "relevance"
	OrderNewest    Order = "newest"
)

// Query is a bounded catalog search.
type Query struct {
	Kind       Kind
	Term       string
	MaxResults int
	Order      Order
}

// Gateway is the catalog search surface the conversation core depends on.
type Gateway interface {
	Search(ctx context.Context, q Query) ([]book.Book, error)
	GetByID(ctx context.Context, id string) (book.Book, error)
}
