package conversation

import (
	"fmt"
	"strings"

	"bookbot/internal/book"
)

// Reply-keyboard labels. Incoming text is matched against these exactly.
const (
	StartCommand = "/start"

	MenuChooseGenre  = "📚 Choose genre"
	MenuNewBooks     = "🆕 New books"
	MenuSearchTitle  = "🔍 Search by title"
	MenuSearchAuthor = "👨‍💼 Search by author"
	MenuRandomBook   = "🎲 Random book"
	MenuFavorites    = "❤️ Favorites"
	MenuCompare      = "📊 Compare books"
	MenuHistory      = "📜 Search history"
	BackLabel        = "⬅️ Back"
)

const (
	msgChooseOption      = "Choose an option:"
	msgChooseGenre       = "Choose a genre:"
	msgPickGenreFromList = "Please choose a genre from the list."
	msgEnterTitle        = "Enter a book title:"
	msgEnterAuthor       = "Enter an author name:"
	msgEnterComparison   = "Enter two book titles separated by a comma, for example: Dune, Neuromancer"
	msgNotUnderstood     = "Sorry, I didn't understand. Choose an option from the menu."
	msgSearchFailed      = "Could not complete the search. Please try again later."
	msgTitleNotFound     = "No books found with that title."
	msgAuthorNotFound    = "No books found by that author."
	msgNoGenreBooks      = "No books found in this genre."
	msgNoNewBooks        = "No new books found."
	msgRandomNotFound    = "Could not find a random book. Try again."
	msgRandomProgress    = "🎲 Looking for a random book..."
	msgNewBooksProgress  = "🆕 Looking for the newest books..."
	msgNoFavorites       = "You have no favorite books yet."
	msgFavoritesHeader   = "❤️ Your favorite books (tap one to remove it):"
	msgHistoryEmpty      = "Your search history is empty."
	msgHistoryHeader     = "📜 Your search history:"
	msgEntryMissing      = "Could not find this history entry."
	msgNothingToSort     = "There are no results to sort."
	msgComparisonMissing = "Could not find one of the books."
	msgAdded             = "Added to favorites ❤️"
	msgAddFailed         = "Could not add this book."
	msgRemoved           = "Removed from favorites"
	msgRemoveMissing     = "This book is not in your favorites."
	msgSortedByRating    = "⭐ Results sorted by rating:"
	msgSortedByDate      = "📅 Results sorted by publication date:"
	msgNewBooksHeader    = "🆕 Found %d new books:"

	labelNewBooks     = "New books"
	labelTitlePrefix  = "Title: "
	labelAuthorPrefix = "Author: "
	labelGenrePrefix  = "Genre: "

	buttonAddFavorite  = "❤️ Add to favorites"
	buttonSortByRating = "⭐ Sort by rating"
	buttonSortByDate   = "📅 Sort by date"

	notAvailable = "n/a"
)

// MainMenuKeyboard is the reply keyboard of the main menu.
var MainMenuKeyboard = [][]string{
	{MenuChooseGenre, MenuNewBooks},
	{MenuSearchTitle, MenuSearchAuthor},
	{MenuRandomBook, MenuFavorites},
	{MenuCompare, MenuHistory},
}

// Kind tells a presenter how to render a Message.
type Kind int

const (
	// KindText is plain text with optional keyboards.
	KindText Kind = iota
	// KindBook is a book card; Text is unset.
	KindBook
	// KindToast is a short acknowledgement of a button press.
	KindToast
	// KindClearButtons strips the inline buttons of the pressed message.
	KindClearButtons
)

// Button is an inline button carrying an action.
type Button struct {
	Label  string
	Action Action
}

// Message is one rendering request. Buttons and Keyboard are optional.
type Message struct {
	Kind     Kind
	Text     string
	Book     book.Book
	Buttons  [][]Button
	Keyboard [][]string
}

func textMessage(text string) Message { return Message{Kind: KindText, Text: text} }

func toast(text string) Message { return Message{Kind: KindToast, Text: text} }

func clearButtons() Message { return Message{Kind: KindClearButtons} }

func bookCard(b book.Book) Message {
	return Message{
		Kind:    KindBook,
		Book:    b,
		Buttons: [][]Button{{{Label: buttonAddFavorite, Action: AddFavorite{BookID: b.ID}}}},
	}
}

func sortButtons() []Button {
	return []Button{
		{Label: buttonSortByRating, Action: SortByRating{}},
		{Label: buttonSortByDate, Action: SortByDate{}},
	}
}

func backButton() []Button {
	return []Button{{Label: BackLabel, Action: Back{}}}
}

func resultsHeader(text string, withBack bool) Message {
	rows := [][]Button{sortButtons()}
	if withBack {
		rows = append(rows, backButton())
	}
	return Message{Kind: KindText, Text: text, Buttons: rows}
}

func genreKeyboard(labels []string) [][]string {
	var rows [][]string
	for i := 0; i < len(labels); i += 2 {
		rows = append(rows, labels[i:min(i+2, len(labels))])
	}
	return append(rows, []string{BackLabel})
}

func comparisonText(first, second book.Book) string {
	var sb strings.Builder
	sb.WriteString("📊 Book comparison:\n\n")
	fmt.Fprintf(&sb, "📖 1. %s vs 2. %s\n\n", first.Title, second.Title)
	fmt.Fprintf(&sb, "⭐ Rating: %s vs %s\n", first.RatingText(notAvailable), second.RatingText(notAvailable))
	fmt.Fprintf(&sb, "📅 Published: %s vs %s\n", orNA(first.PublishedDate), orNA(second.PublishedDate))
	fmt.Fprintf(&sb, "📝 Pages: %s vs %s\n\n", first.PagesText(notAvailable), second.PagesText(notAvailable))
	sb.WriteString("🔍 Short description:\n")
	fmt.Fprintf(&sb, "1. %s\n", excerpt(first, 100))
	fmt.Fprintf(&sb, "2. %s", excerpt(second, 100))
	return sb.String()
}

// excerpt cuts the description to n runes, marking truncation with "...".
func excerpt(b book.Book, n int) string {
	if b.Description == "" {
		return "No description."
	}
	e := b.Excerpt(n)
	if e != b.Description {
		e += "..."
	}
	return e
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
