package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"bookbot/internal/book"
	"bookbot/internal/conversation"
)

const (
	callbackDataLimit = 64
	excerptRunes      = 200
)

// Sender is the subset of the Bot API the presenter needs.
type Sender interface {
	SendMessage(ctx context.Context, req SendMessageRequest) error
	SendPhoto(ctx context.Context, req SendPhotoRequest) error
	AnswerCallbackQuery(ctx context.Context, req AnswerCallbackQueryRequest) error
	EditMessageReplyMarkup(ctx context.Context, req EditMessageReplyMarkupRequest) error
}

// Presenter renders conversation output as Bot API calls.
type Presenter struct {
	sender Sender
	logger *zap.Logger
}

func NewPresenter(sender Sender, logger *zap.Logger) *Presenter {
	return &Presenter{sender: sender, logger: logger}
}

// Present sends every message in order. A failed message does not stop the
// rest; all failures are returned joined.
func (p *Presenter) Present(ctx context.Context, out conversation.Output) error {
	chatID := int64(out.UserID)
	answered := false
	var errs []error

	for _, m := range out.Messages {
		var err error
		switch m.Kind {
		case conversation.KindToast:
			if out.CallbackID == "" || answered {
				continue
			}
			answered = true
			err = p.sender.AnswerCallbackQuery(ctx, AnswerCallbackQueryRequest{CallbackQueryID: out.CallbackID, Text: m.Text})
		case conversation.KindClearButtons:
			if out.MessageID == 0 {
				continue
			}
			err = p.sender.EditMessageReplyMarkup(ctx, EditMessageReplyMarkupRequest{ChatID: chatID, MessageID: out.MessageID})
		case conversation.KindBook:
			err = p.sendBook(ctx, chatID, m)
		default:
			err = p.sender.SendMessage(ctx, SendMessageRequest{
				ChatID:      chatID,
				Text:        m.Text,
				ReplyMarkup: p.markup(m),
			})
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if out.CallbackID != "" && !answered {
		if err := p.sender.AnswerCallbackQuery(ctx, AnswerCallbackQueryRequest{CallbackQueryID: out.CallbackID}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sendBook sends a photo card when the book has a thumbnail and falls back to
// a text card when there is none or the photo is rejected.
func (p *Presenter) sendBook(ctx context.Context, chatID int64, m conversation.Message) error {
	caption := BookCaption(m.Book)
	markup := p.markup(m)
	if m.Book.ThumbnailURL != "" {
		err := p.sender.SendPhoto(ctx, SendPhotoRequest{
			ChatID:      chatID,
			Photo:       m.Book.ThumbnailURL,
			Caption:     caption,
			ParseMode:   "HTML",
			ReplyMarkup: markup,
		})
		if err == nil {
			return nil
		}
		p.logger.Warn("photo card rejected, sending text", zap.String("book_id", m.Book.ID), zap.Error(err))
	}
	return p.sender.SendMessage(ctx, SendMessageRequest{
		ChatID:      chatID,
		Text:        caption,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
}

func (p *Presenter) markup(m conversation.Message) any {
	if len(m.Buttons) > 0 {
		return p.inlineKeyboard(m.Buttons)
	}
	if len(m.Keyboard) > 0 {
		return replyKeyboard(m.Keyboard)
	}
	return nil
}

func (p *Presenter) inlineKeyboard(rows [][]conversation.Button) *InlineKeyboardMarkup {
	kb := &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{}}
	for _, row := range rows {
		var out []InlineKeyboardButton
		for _, b := range row {
			data := b.Action.Encode()
			if len(data) > callbackDataLimit {
				p.logger.Warn("callback data too long, dropping button", zap.String("label", b.Label))
				continue
			}
			out = append(out, InlineKeyboardButton{Text: b.Label, CallbackData: data})
		}
		if len(out) > 0 {
			kb.InlineKeyboard = append(kb.InlineKeyboard, out)
		}
	}
	return kb
}

func replyKeyboard(rows [][]string) *ReplyKeyboardMarkup {
	kb := &ReplyKeyboardMarkup{ResizeKeyboard: true}
	for _, row := range rows {
		buttons := make([]KeyboardButton, len(row))
		for i, label := range row {
			buttons[i] = KeyboardButton{Text: label}
		}
		kb.Keyboard = append(kb.Keyboard, buttons)
	}
	return kb
}

// BookCaption renders a book card in Bot API HTML.
func BookCaption(b book.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 <b>%s</b>\n", html.EscapeString(b.Title))
	fmt.Fprintf(&sb, "👤 %s\n", html.EscapeString(b.Authors))
	fmt.Fprintf(&sb, "⭐ Rating: %s\n", b.RatingText("n/a"))
	published := b.PublishedDate
	if published == "" {
		published = "n/a"
	}
	fmt.Fprintf(&sb, "📅 Published: %s\n", html.EscapeString(published))
	fmt.Fprintf(&sb, "📝 Pages: %s", b.PagesText("n/a"))
	if b.Description != "" {
		desc := b.Excerpt(excerptRunes)
		if desc != b.Description {
			desc += "..."
		}
		fmt.Fprintf(&sb, "\n\n%s", html.EscapeString(desc))
	}
	return sb.String()
}
