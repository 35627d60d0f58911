package conversation

import (
	"fmt"
	"strings"

	"bookbot/internal/genre"
	"bookbot/internal/session"
)

// Event is one inbound user interaction. Exactly one of Text and Action is set.
type Event struct {
	ID         string
	UserID     session.UserID
	Text       string
	Action     Action
	CallbackID string
	// MessageID identifies the message carrying the pressed button.
	MessageID  int64
}

func (e Event) kind() string {
	if e.Action != nil {
		return "callback"
	}
	return "text"
}

type input int

const (
	inputStart input = iota
	inputBack
	inputMenu
	inputGenre
	// inputAny matches whatever a state has no specific entry for.
	inputAny
)

func (s *Service) classify(text string) input {
	switch text {
	case StartCommand:
		return inputStart
	case BackLabel:
		return inputBack
	}
	if _, ok := s.menu[text]; ok {
		return inputMenu
	}
	if _, ok := s.genres.Subject(text); ok {
		return inputGenre
	}
	return inputAny
}

// ValidateGenres rejects genre labels that classify would read as a command,
// since such a genre could never be chosen.
func ValidateGenres(v *genre.Vocabulary) error {
	menu := mainMenuCommands()
	for _, label := range v.Labels() {
		_, isMenu := menu[label]
		if isMenu || label == StartCommand || label == BackLabel {
			return fmt.Errorf("genre %q: label is reserved for a command", label)
		}
	}
	return nil
}

func normalize(text string) string { return strings.TrimSpace(text) }
