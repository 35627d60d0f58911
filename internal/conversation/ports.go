package conversation

import (
	"context"
	"time"

	"bookbot/internal/book"
	"bookbot/internal/history"
	"bookbot/internal/session"
)

// Output is everything one event produced, in order. MessageID is the chat
// message the pressed button belongs to, zero for text events.
type Output struct {
	UserID     session.UserID
	CallbackID string
	MessageID  int64
	Messages   []Message
}

// Presenter renders core output on a chat transport.
type Presenter interface {
	Present(ctx context.Context, out Output) error
}

type SessionStore interface {
	Acquire(id session.UserID) (*session.Session, func())
	Len() int
}

type FavoritesStore interface {
	Add(userID session.UserID, b book.Book) bool
	Remove(userID session.UserID, bookID string) bool
	List(userID session.UserID) []book.Book
}

type HistoryLog interface {
	Append(userID session.UserID, label string, books []book.Book) history.Entry
	FindByLabel(userID session.UserID, label string) (history.Entry, bool)
	List(userID session.UserID) []history.Entry
	SortLatest(userID session.UserID, sortFn func([]book.Book)) (history.Entry, bool)
}

// Metrics observes handled events.
type Metrics interface {
	ObserveEvent(kind, from, to string, d time.Duration)
	SetSessions(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveEvent(string, string, string, time.Duration) {}
func (noopMetrics) SetSessions(int)                                    {}
