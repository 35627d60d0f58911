package conversation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned for callback payloads outside the action contract.
var ErrUnknownAction = errors.New("unknown callback action")

const (
	prefixAdd     = "add_"
	prefixRemove  = "remove_"
	prefixHistory = "history_"

	payloadBack         = "back"
	payloadSortByRating = "sort_by_rating"
	payloadSortByDate   = "sort_by_date"
)

// Action is a button press. The concrete types are AddFavorite, RemoveFavorite,
// Back, SelectHistory, SortByRating and SortByDate.
type Action interface {
	// Encode returns the callback payload; ParseAction(a.Encode()) == a.
	Encode() string
	isAction()
}

type AddFavorite struct{ BookID string }

type RemoveFavorite struct{ BookID string }

type Back struct{}

type SelectHistory struct{ Label string }

type SortByRating struct{}

type SortByDate struct{}

func (a AddFavorite) Encode() string    { return prefixAdd + a.BookID }
func (a RemoveFavorite) Encode() string { return prefixRemove + a.BookID }
func (Back) Encode() string             { return payloadBack }
func (a SelectHistory) Encode() string  { return prefixHistory + a.Label }
func (SortByRating) Encode() string     { return payloadSortByRating }
func (SortByDate) Encode() string       { return payloadSortByDate }

func (AddFavorite) isAction()    {}
func (RemoveFavorite) isAction() {}
func (Back) isAction()           {}
func (SelectHistory) isAction()  {}
func (SortByRating) isAction()   {}
func (SortByDate) isAction()     {}

// ParseAction decodes a callback payload at the transport boundary.
func ParseAction(payload string) (Action, error) {
	switch payload {
	case payloadBack:
		return Back{}, nil
	case payloadSortByRating:
		return SortByRating{}, nil
	case payloadSortByDate:
		return SortByDate{}, nil
	}

	prefixed := []struct {
		prefix string
		build  func(string) Action
	}{
		{prefixAdd, func(v string) Action { return AddFavorite{BookID: v} }},
		{prefixRemove, func(v string) Action { return RemoveFavorite{BookID: v} }},
		{prefixHistory, func(v string) Action { return SelectHistory{Label: v} }},
	}
	for _, p := range prefixed {
		if v, ok := strings.CutPrefix(payload, p.prefix); ok {
			if v == "" {
				return nil, fmt.Errorf("%w: empty value in %q", ErrUnknownAction, payload)
			}
			return p.build(v), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, payload)
}
