package catalog

import (
	"context"
	"errors"
	"fmt"

	"bookbot/internal/book"
	"bookbot/internal/platform/googlebooks"
)

type VolumesClient interface {
	Search(ctx context.Context, q string, maxResults int, orderBy string) (*googlebooks.VolumesResponse, error)
	GetVolume(ctx context.Context, id string) (*googlebooks.Volume, error)
}

// GoogleBooks adapts the Google Books volumes API to Gateway.
type GoogleBooks struct {
	client VolumesClient
}

func NewGoogleBooks(client VolumesClient) *GoogleBooks {
	return &GoogleBooks{client: client}
}

func (g *GoogleBooks) Search(ctx context.Context, q Query) ([]book.Book, error) {
	res, err := g.client.Search(ctx, searchTerm(q), q.MaxResults, string(q.Order))
	if err != nil {
		return nil, fmt.Errorf("search %s %q: %w", q.Kind, q.Term, err)
	}

	books := make([]book.Book, 0, len(res.Items))
	for _, v := range res.Items {
		books = append(books, toBook(v))
	}
	return books, nil
}

func (g *GoogleBooks) GetByID(ctx context.Context, id string) (book.Book, error) {
	v, err := g.client.GetVolume(ctx, id)
	if err != nil {
		if errors.Is(err, googlebooks.ErrNotFound) {
			return book.Book{}, ErrNotFound
		}
		return book.Book{}, fmt.Errorf("get volume %s: %w", id, err)
	}
	return toBook(*v), nil
}

func searchTerm(q Query) string {
	switch q.Kind {
	case KindTitle:
		return "intitle:" + q.Term
	case KindAuthor:
		return "inauthor:" + q.Term
	case KindSubject:
		return "subject:" + q.Term
	default:
		if q.Term == "" {
			return "*"
		}
		return q.Term
	}
}

func toBook(v googlebooks.Volume) book.Book {
	info := v.VolumeInfo
	return book.New(
		v.ID,
		info.Title,
		info.Authors,
		info.Description,
		info.PublishedDate,
		info.AverageRating,
		info.PageCount,
		info.Thumbnail(),
	)
}
