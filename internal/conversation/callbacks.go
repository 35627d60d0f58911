package conversation

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bookbot/internal/book"
	"bookbot/internal/catalog"
	"bookbot/internal/ranking"
	"bookbot/internal/session"
)

// dispatchAction handles button presses. They are valid in any state; only
// Back and RemoveFavorite move the user.
func (s *Service) dispatchAction(t *turn, state session.State, action Action) session.State {
	switch a := action.(type) {
	case AddFavorite:
		s.addFavorite(t, a.BookID)
		return state
	case RemoveFavorite:
		if s.favorites.Remove(t.userID, a.BookID) {
			t.send(toast(msgRemoved))
		} else {
			t.send(toast(msgRemoveMissing))
		}
		return s.showFavorites(t)
	case Back:
		return s.showMainMenu(t)
	case SelectHistory:
		e, ok := s.history.FindByLabel(t.userID, a.Label)
		if !ok || len(e.Books) == 0 {
			t.send(textMessage(msgEntryMissing))
			return state
		}
		s.showEntry(t, e.Label, e.Books)
		return state
	case SortByRating:
		s.sortLatest(t, ranking.ByRating, msgSortedByRating)
		return state
	case SortByDate:
		s.sortLatest(t, ranking.ByDate, msgSortedByDate)
		return state
	default:
		t.log.Warn("unhandled action", zap.String("action", fmt.Sprintf("%T", action)))
		return state
	}
}

func (s *Service) addFavorite(t *turn, bookID string) {
	b, err := s.resolve(t, bookID)
	if err != nil {
		t.log.Info("could not resolve book", zap.String("book_id", bookID), zap.Error(err))
		t.send(toast(msgAddFailed))
		return
	}
	s.favorites.Add(t.userID, b)
	t.send(toast(msgAdded), clearButtons())
}

// resolve finds a book among the user's search results, newest first, and
// asks the catalog only when the id is not there.
func (s *Service) resolve(t *turn, bookID string) (book.Book, error) {
	entries := s.history.List(t.userID)
	for i := len(entries) - 1; i >= 0; i-- {
		for _, b := range entries[i].Books {
			if b.ID == bookID {
				return b, nil
			}
		}
	}
	b, err := s.gateway.GetByID(t.ctx, bookID)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		t.log.Error("catalog lookup failed", zap.String("book_id", bookID), zap.Error(err))
	}
	return b, err
}

func (s *Service) showEntry(t *turn, label string, books []book.Book) {
	t.send(resultsHeader(fmt.Sprintf("📜 %d results for %s:", len(books), label), true))
	s.sendTop(t, books)
}

func (s *Service) sortLatest(t *turn, sortFn func([]book.Book), header string) {
	e, ok := s.history.SortLatest(t.userID, sortFn)
	if !ok || len(e.Books) == 0 {
		t.send(textMessage(msgNothingToSort))
		return
	}
	t.send(textMessage(header))
	s.sendTop(t, e.Books)
}
