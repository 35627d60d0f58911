package session

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// UserID is the chat identity a session belongs to.
type UserID int64

func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }

// State is the user's position in the conversation.
type State int32

const (
	MainMenu State = iota
	ChoosingGenre
	SearchingByTitle
	SearchingByAuthor
	ViewingFavorites
	ComparingBooks
	ViewingHistory
)

var stateNames = [...]string{
	MainMenu:          "main_menu",
	ChoosingGenre:     "choosing_genre",
	SearchingByTitle:  "searching_by_title",
	SearchingByAuthor: "searching_by_author",
	ViewingFavorites:  "viewing_favorites",
	ComparingBooks:    "comparing_books",
	ViewingHistory:    "viewing_history",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}

// Session is one user's conversation record. It lives for the process lifetime.
type Session struct {
	UserID    UserID
	CreatedAt time.Time

	// mu is held for the whole handling of one event.
	mu    sync.Mutex
	state atomic.Int32
}

func newSession(id UserID, now time.Time) *Session {
	s := &Session{UserID: id, CreatedAt: now}
	s.state.Store(int32(MainMenu))
	return s
}

func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) SetState(st State) { s.state.Store(int32(st)) }
