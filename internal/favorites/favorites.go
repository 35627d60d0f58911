package favorites

import (
	"sync"

	"bookbot/internal/book"
	"bookbot/internal/session"
)

// Store keeps each user's bookmarked books, unique by id and in insertion order.
type Store struct {
	lists sync.Map // session.UserID -> *list
}

type list struct {
	mu    sync.Mutex
	books []book.Book
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) list(userID session.UserID) *list {
	if l, ok := s.lists.Load(userID); ok {
		return l.(*list)
	}
	l, _ := s.lists.LoadOrStore(userID, &list{})
	return l.(*list)
}

// Add appends b unless a book with the same id is already present.
// It reports whether the list changed.
func (s *Store) Add(userID session.UserID, b book.Book) bool {
	l := s.list(userID)
	l.mu.Lock()
	defer l.mu.Unlock()

	if indexOf(l.books, b.ID) >= 0 {
		return false
	}
	l.books = append(l.books, b)
	return true
}

// Remove deletes the book with the given id. It reports whether the list changed.
func (s *Store) Remove(userID session.UserID, bookID string) bool {
	l := s.list(userID)
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOf(l.books, bookID)
	if i < 0 {
		return false
	}
	l.books = append(l.books[:i:i], l.books[i+1:]...)
	return true
}

// List returns a copy of the user's favorites in insertion order.
func (s *Store) List(userID session.UserID) []book.Book {
	l := s.list(userID)
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]book.Book, len(l.books))
	copy(out, l.books)
	return out
}

func (s *Store) Contains(userID session.UserID, bookID string) bool {
	l := s.list(userID)
	l.mu.Lock()
	defer l.mu.Unlock()
	return indexOf(l.books, bookID) >= 0
}

func indexOf(books []book.Book, id string) int {
	for i, b := range books {
		if b.ID == id {
			return i
		}
	}
	return -1
}
