package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookbot/internal/book"
	"bookbot/internal/conversation"
	"bookbot/internal/testutil"
)

type call struct {
	method string
	req    any
}

type fakeSender struct {
	calls    []call
	photoErr error
}

func (f *fakeSender) SendMessage(_ context.Context, req SendMessageRequest) error {
	f.calls = append(f.calls, call{"sendMessage", req})
	return nil
}

func (f *fakeSender) SendPhoto(_ context.Context, req SendPhotoRequest) error {
	f.calls = append(f.calls, call{"sendPhoto", req})
	return f.photoErr
}

func (f *fakeSender) AnswerCallbackQuery(_ context.Context, req AnswerCallbackQueryRequest) error {
	f.calls = append(f.calls, call{"answerCallbackQuery", req})
	return nil
}

func (f *fakeSender) EditMessageReplyMarkup(_ context.Context, req EditMessageReplyMarkupRequest) error {
	f.calls = append(f.calls, call{"editMessageReplyMarkup", req})
	return nil
}

func (f *fakeSender) methods() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.method
	}
	return out
}

func TestPresenter_TextWithReplyKeyboard(t *testing.T) {
	s := &fakeSender{}
	p := NewPresenter(s, zap.NewNop())

	err := p.Present(context.Background(), conversation.Output{
		UserID:   9,
		Messages: []conversation.Message{{Kind: conversation.KindText, Text: "Choose an option:", Keyboard: conversation.MainMenuKeyboard}},
	})

	require.NoError(t, err)
	require.Len(t, s.calls, 1)
	req := s.calls[0].req.(SendMessageRequest)
	assert.Equal(t, int64(9), req.ChatID)
	kb, ok := req.ReplyMarkup.(*ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, kb.ResizeKeyboard)
	assert.Equal(t, conversation.MenuChooseGenre, kb.Keyboard[0][0].Text)
}

func TestPresenter_BookCardPhotoAndFallback(t *testing.T) {
	card := conversation.Message{
		Kind:    conversation.KindBook,
		Book:    testutil.Dune,
		Buttons: [][]conversation.Button{{{Label: "add", Action: conversation.AddFavorite{BookID: testutil.Dune.ID}}}},
	}

	s := &fakeSender{}
	require.NoError(t, NewPresenter(s, zap.NewNop()).Present(context.Background(), conversation.Output{UserID: 1, Messages: []conversation.Message{card}}))
	assert.Equal(t, []string{"sendPhoto"}, s.methods())
	photo := s.calls[0].req.(SendPhotoRequest)
	assert.Equal(t, "HTML", photo.ParseMode)
	assert.True(t, strings.HasPrefix(photo.Photo, "https://"))
	inline := photo.ReplyMarkup.(*InlineKeyboardMarkup)
	assert.Equal(t, "add_"+testutil.Dune.ID, inline.InlineKeyboard[0][0].CallbackData)

	s = &fakeSender{photoErr: errors.New("wrong file identifier")}
	require.NoError(t, NewPresenter(s, zap.NewNop()).Present(context.Background(), conversation.Output{UserID: 1, Messages: []conversation.Message{card}}))
	assert.Equal(t, []string{"sendPhoto", "sendMessage"}, s.methods())

	s = &fakeSender{}
	card.Book = testutil.Neuromancer
	require.NoError(t, NewPresenter(s, zap.NewNop()).Present(context.Background(), conversation.Output{UserID: 1, Messages: []conversation.Message{card}}))
	assert.Equal(t, []string{"sendMessage"}, s.methods())
}

func TestPresenter_CallbackAnsweredOnce(t *testing.T) {
	s := &fakeSender{}
	p := NewPresenter(s, zap.NewNop())

	err := p.Present(context.Background(), conversation.Output{
		UserID:     1,
		CallbackID: "cb",
		Messages: []conversation.Message{
			{Kind: conversation.KindToast, Text: "Removed"},
			{Kind: conversation.KindText, Text: "list"},
			{Kind: conversation.KindToast, Text: "ignored"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"answerCallbackQuery", "sendMessage"}, s.methods())
	assert.Equal(t, "Removed", s.calls[0].req.(AnswerCallbackQueryRequest).Text)
}

func TestPresenter_CallbackWithoutToastStillAnswered(t *testing.T) {
	s := &fakeSender{}
	p := NewPresenter(s, zap.NewNop())

	err := p.Present(context.Background(), conversation.Output{
		UserID:     1,
		CallbackID: "cb",
		Messages:   []conversation.Message{{Kind: conversation.KindText, Text: "menu"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"sendMessage", "answerCallbackQuery"}, s.methods())
	assert.Empty(t, s.calls[1].req.(AnswerCallbackQueryRequest).Text)
}

func TestPresenter_DropsOversizedCallbackData(t *testing.T) {
	s := &fakeSender{}
	p := NewPresenter(s, zap.NewNop())
	long := conversation.SelectHistory{Label: "Title: " + strings.Repeat("x", 80)}

	err := p.Present(context.Background(), conversation.Output{
		UserID: 1,
		Messages: []conversation.Message{{
			Kind: conversation.KindText,
			Text: "history",
			Buttons: [][]conversation.Button{
				{{Label: "1. long", Action: long}},
				{{Label: "⬅️ Back", Action: conversation.Back{}}},
			},
		}},
	})

	require.NoError(t, err)
	inline := s.calls[0].req.(SendMessageRequest).ReplyMarkup.(*InlineKeyboardMarkup)
	require.Len(t, inline.InlineKeyboard, 1)
	assert.Equal(t, "back", inline.InlineKeyboard[0][0].CallbackData)
}

func TestBookCaption(t *testing.T) {
	rating := 3.5
	b := book.New("x", "Tom & Jerry <3", []string{"A", "B"}, strings.Repeat("é", 250), "", &rating, nil, "")

	caption := BookCaption(b)

	assert.Contains(t, caption, "<b>Tom &amp; Jerry &lt;3</b>")
	assert.Contains(t, caption, "👤 A, B")
	assert.Contains(t, caption, "⭐ Rating: 3.5")
	assert.Contains(t, caption, "📅 Published: n/a")
	assert.Contains(t, caption, "📝 Pages: n/a")
	assert.Contains(t, caption, strings.Repeat("é", 200)+"...")
	assert.NotContains(t, caption, strings.Repeat("é", 201))
}

func TestPresenter_ClearsButtonsOfPressedMessage(t *testing.T) {
	s := &fakeSender{}
	p := NewPresenter(s, zap.NewNop())
	added := []conversation.Message{
		{Kind: conversation.KindToast, Text: "Added to favorites ❤️"},
		{Kind: conversation.KindClearButtons},
	}

	err := p.Present(context.Background(), conversation.Output{UserID: 3, CallbackID: "cb", MessageID: 77, Messages: added})

	require.NoError(t, err)
	assert.Equal(t, []string{"answerCallbackQuery", "editMessageReplyMarkup"}, s.methods())
	assert.Equal(t, EditMessageReplyMarkupRequest{ChatID: 3, MessageID: 77}, s.calls[1].req)

	s.calls = nil
	err = p.Present(context.Background(), conversation.Output{UserID: 3, CallbackID: "cb", Messages: added})

	require.NoError(t, err)
	assert.Equal(t, []string{"answerCallbackQuery"}, s.methods())
}
