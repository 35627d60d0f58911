package catalog

import (
	"context"
	"errors"
	"time"

	"bookbot/internal/book"
)

// Recorder receives one observation per catalog call.
type Recorder interface {
	ObserveCatalog(op, kind, outcome string, d time.Duration)
}

type Instrumented struct {
	next     Gateway
	recorder Recorder
}

func NewInstrumented(next Gateway, recorder Recorder) *Instrumented {
	return &Instrumented{next: next, recorder: recorder}
}

func (i *Instrumented) Search(ctx context.Context, q Query) ([]book.Book, error) {
	start := time.Now()
	books, err := i.next.Search(ctx, q)
	outcome := outcomeOf(err)
	if err == nil && len(books) == 0 {
		outcome = "empty"
	}
	i.recorder.ObserveCatalog("search", string(q.Kind), outcome, time.Since(start))
	return books, err
}

func (i *Instrumented) GetByID(ctx context.Context, id string) (book.Book, error) {
	start := time.Now()
	b, err := i.next.GetByID(ctx, id)
	i.recorder.ObserveCatalog("get_by_id", "", outcomeOf(err), time.Since(start))
	return b, err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnavailable):
		return "rejected"
	default:
		return "error"
	}
}
