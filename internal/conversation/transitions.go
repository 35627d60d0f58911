package conversation

import (
	"fmt"
	"strings"

	"bookbot/internal/catalog"
	"bookbot/internal/session"
)

// transitionFunc renders the reaction to an input and returns the next state.
type transitionFunc func(s *Service, t *turn) session.State

type transitionKey struct {
	state session.State
	input input
}

// transitions is the text-input table. A state without a specific entry for
// an input falls back to its inputAny entry.
var transitions = map[transitionKey]transitionFunc{
	{session.MainMenu, inputMenu}: (*Service).mainMenuCommand,
	{session.MainMenu, inputAny}:  (*Service).notUnderstood,

	{session.ChoosingGenre, inputBack}:  (*Service).showMainMenu,
	{session.ChoosingGenre, inputGenre}: (*Service).searchGenre,
	{session.ChoosingGenre, inputAny}:   (*Service).repromptGenre,

	{session.SearchingByTitle, inputAny}:  (*Service).searchTitle,
	{session.SearchingByAuthor, inputAny}: (*Service).searchAuthor,
	{session.ComparingBooks, inputAny}:    (*Service).compare,

	{session.ViewingFavorites, inputBack}: (*Service).showMainMenu,
	{session.ViewingFavorites, inputAny}:  (*Service).stayInFavorites,

	{session.ViewingHistory, inputBack}: (*Service).showMainMenu,
	{session.ViewingHistory, inputAny}:  (*Service).historyByText,
}

func (s *Service) lookup(state session.State, in input) transitionFunc {
	if in == inputStart {
		return (*Service).showMainMenu
	}
	if fn, ok := transitions[transitionKey{state, in}]; ok {
		return fn
	}
	if fn, ok := transitions[transitionKey{state, inputAny}]; ok {
		return fn
	}
	return (*Service).showMainMenu
}

func mainMenuCommands() map[string]transitionFunc {
	return map[string]transitionFunc{
		MenuChooseGenre:  (*Service).showGenres,
		MenuNewBooks:     (*Service).newBooks,
		MenuSearchTitle:  prompt(msgEnterTitle, session.SearchingByTitle),
		MenuSearchAuthor: prompt(msgEnterAuthor, session.SearchingByAuthor),
		MenuRandomBook:   (*Service).randomBook,
		MenuFavorites:    (*Service).showFavorites,
		MenuCompare:      prompt(msgEnterComparison, session.ComparingBooks),
		MenuHistory:      (*Service).showHistory,
	}
}

func prompt(text string, next session.State) transitionFunc {
	return func(_ *Service, t *turn) session.State {
		t.send(textMessage(text))
		return next
	}
}

func (s *Service) mainMenuCommand(t *turn) session.State {
	return s.menu[t.text](s, t)
}

func (s *Service) showMainMenu(t *turn) session.State {
	t.send(Message{Kind: KindText, Text: msgChooseOption, Keyboard: MainMenuKeyboard})
	return session.MainMenu
}

func (s *Service) notUnderstood(t *turn) session.State {
	t.send(textMessage(msgNotUnderstood))
	return session.MainMenu
}

func (s *Service) stayInFavorites(t *turn) session.State {
	t.log.Debug("input ignored in current state")
	return session.ViewingFavorites
}

func (s *Service) showGenres(t *turn) session.State {
	t.send(Message{Kind: KindText, Text: msgChooseGenre, Keyboard: genreKeyboard(s.genres.Labels())})
	return session.ChoosingGenre
}

func (s *Service) repromptGenre(t *turn) session.State {
	t.send(textMessage(msgPickGenreFromList))
	return session.ChoosingGenre
}

func (s *Service) searchGenre(t *turn) session.State {
	label := t.text
	subject, _ := s.genres.Subject(label)
	t.send(textMessage(fmt.Sprintf("🔍 Searching for books in %s...", label)))

	books, err := s.search(t, catalog.KindSubject, subject, catalog.OrderNewest)
	switch {
	case err != nil:
		t.send(textMessage(msgSearchFailed))
	case len(books) == 0:
		t.send(textMessage(msgNoGenreBooks))
	default:
		s.showResults(t, labelGenrePrefix+label,
			fmt.Sprintf("📚 Found %d books in %s:", len(books), label), books)
	}
	return session.ChoosingGenre
}

func (s *Service) searchTitle(t *turn) session.State {
	return s.searchBy(t, catalog.KindTitle, labelTitlePrefix, msgTitleNotFound,
		"🔍 Searching for books titled %q...", "📚 Found %d books titled %q:")
}

func (s *Service) searchAuthor(t *turn) session.State {
	return s.searchBy(t, catalog.KindAuthor, labelAuthorPrefix, msgAuthorNotFound,
		"🔍 Searching for books by %q...", "📚 Found %d books by %q:")
}

func (s *Service) searchBy(t *turn, kind catalog.Kind, labelPrefix, notFound, progress, header string) session.State {
	term := t.text
	if term == "" {
		t.send(textMessage(msgNotUnderstood))
		return session.MainMenu
	}
	t.send(textMessage(fmt.Sprintf(progress, term)))

	books, err := s.search(t, kind, term, catalog.OrderRelevance)
	switch {
	case err != nil:
		t.send(textMessage(msgSearchFailed))
	case len(books) == 0:
		t.send(textMessage(notFound))
	default:
		s.showResults(t, labelPrefix+term, fmt.Sprintf(header, len(books), term), books)
	}
	return session.MainMenu
}

func (s *Service) newBooks(t *turn) session.State {
	t.send(textMessage(msgNewBooksProgress))
	books, err := s.search(t, catalog.KindAny, "", catalog.OrderNewest)
	switch {
	case err != nil:
		t.send(textMessage(msgSearchFailed))
	case len(books) == 0:
		t.send(textMessage(msgNoNewBooks))
	default:
		s.showResults(t, labelNewBooks, fmt.Sprintf(msgNewBooksHeader, len(books)), books)
	}
	return session.MainMenu
}

func (s *Service) randomBook(t *turn) session.State {
	t.send(textMessage(msgRandomProgress))
	g := s.genres.Pick(s.pick)
	books, err := s.search(t, catalog.KindSubject, g.Subject, catalog.OrderNewest)
	if err != nil || len(books) == 0 {
		t.send(textMessage(msgRandomNotFound))
		return session.MainMenu
	}
	t.send(bookCard(books[s.pick(len(books))]))
	return session.MainMenu
}

func (s *Service) showFavorites(t *turn) session.State {
	books := s.favorites.List(t.userID)
	if len(books) == 0 {
		t.send(textMessage(msgNoFavorites))
		return s.showMainMenu(t)
	}
	rows := make([][]Button, 0, len(books)+1)
	for i, b := range books {
		rows = append(rows, []Button{{
			Label:  fmt.Sprintf("%d. %s", i+1, b.Title),
			Action: RemoveFavorite{BookID: b.ID},
		}})
	}
	rows = append(rows, backButton())
	t.send(Message{Kind: KindText, Text: msgFavoritesHeader, Buttons: rows})
	return session.ViewingFavorites
}

func (s *Service) showHistory(t *turn) session.State {
	entries := s.history.List(t.userID)
	if len(entries) == 0 {
		t.send(textMessage(msgHistoryEmpty))
		return s.showMainMenu(t)
	}
	rows := make([][]Button, 0, len(entries)+1)
	for i, e := range entries {
		rows = append(rows, []Button{{
			Label:  fmt.Sprintf("%d. %s (%d books)", i+1, e.Label, len(e.Books)),
			Action: SelectHistory{Label: e.Label},
		}})
	}
	rows = append(rows, backButton())
	t.send(Message{Kind: KindText, Text: msgHistoryHeader, Buttons: rows})
	return session.ViewingHistory
}

func (s *Service) historyByText(t *turn) session.State {
	if e, ok := s.history.FindByLabel(t.userID, t.text); ok && len(e.Books) > 0 {
		s.showEntry(t, e.Label, e.Books)
		return session.ViewingHistory
	}
	t.log.Debug("input ignored in current state")
	return session.ViewingHistory
}

func (s *Service) compare(t *turn) session.State {
	parts := strings.Split(t.text, ",")
	if len(parts) != 2 {
		t.send(textMessage(msgEnterComparison))
		return session.ComparingBooks
	}
	first, second := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if first == "" || second == "" {
		t.send(textMessage(msgEnterComparison))
		return session.ComparingBooks
	}
	t.send(textMessage(fmt.Sprintf("📊 Comparing %q and %q...", first, second)))

	a, err := s.search(t, catalog.KindTitle, first, catalog.OrderRelevance)
	if err != nil {
		t.send(textMessage(msgSearchFailed))
		return session.MainMenu
	}
	if len(a) == 0 {
		t.send(textMessage(msgComparisonMissing))
		return session.MainMenu
	}
	b, err := s.search(t, catalog.KindTitle, second, catalog.OrderRelevance)
	if err != nil {
		t.send(textMessage(msgSearchFailed))
		return session.MainMenu
	}
	if len(b) == 0 {
		t.send(textMessage(msgComparisonMissing))
		return session.MainMenu
	}
	t.send(textMessage(comparisonText(a[0], b[0])))
	return session.MainMenu
}
