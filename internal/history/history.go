// Package history records each user's past searches together with the
// results they returned.
package history

import (
	"sync"
	"time"

	"bookbot/internal/book"
	"bookbot/internal/session"
)

// Entry is a labelled snapshot of one search's results. Only a re-sort
// changes the order of Books after it is appended.
type Entry struct {
	Label      string
	Books      []book.Book
	SearchedAt time.Time
}

func (e Entry) clone() Entry {
	books := make([]book.Book, len(e.Books))
	copy(books, e.Books)
	e.Books = books
	return e
}

// Log is a per-user, append-only list of entries. Entries are never evicted.
type Log struct {
	logs sync.Map // session.UserID -> *userLog
	now  func() time.Time
}

type userLog struct {
	mu      sync.Mutex
	entries []*Entry
}

func NewLog() *Log {
	return &Log{now: time.Now}
}

func (l *Log) user(userID session.UserID) *userLog {
	if u, ok := l.logs.Load(userID); ok {
		return u.(*userLog)
	}
	u, _ := l.logs.LoadOrStore(userID, &userLog{})
	return u.(*userLog)
}

// Append always adds a new entry, even when label repeats an earlier one.
func (l *Log) Append(userID session.UserID, label string, books []book.Book) Entry {
	e := Entry{Label: label, Books: books, SearchedAt: l.now()}.clone()

	u := l.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	u.entries = append(u.entries, &e)
	return e.clone()
}

// MostRecent returns the last appended entry.
func (l *Log) MostRecent(userID session.UserID) (Entry, bool) {
	u := l.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.entries) == 0 {
		return Entry{}, false
	}
	return u.entries[len(u.entries)-1].clone(), true
}

// FindByLabel returns the first entry carrying exactly label.
func (l *Log) FindByLabel(userID session.UserID, label string) (Entry, bool) {
	u := l.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, e := range u.entries {
		if e.Label == label {
			return e.clone(), true
		}
	}
	return Entry{}, false
}

// List returns all entries, oldest first.
func (l *Log) List(userID session.UserID) []Entry {
	u := l.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]Entry, len(u.entries))
	for i, e := range u.entries {
		out[i] = e.clone()
	}
	return out
}

// SortLatest reorders the most recent entry's books in place with sortFn and
// returns the result.
func (l *Log) SortLatest(userID session.UserID, sortFn func([]book.Book)) (Entry, bool) {
	u := l.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.entries) == 0 {
		return Entry{}, false
	}
	latest := u.entries[len(u.entries)-1]
	sortFn(latest.Books)
	return latest.clone(), true
}
