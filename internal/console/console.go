package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"bookbot/internal/conversation"
	"bookbot/internal/session"
)

var (
	botColor    = color.New(color.FgCyan)
	titleColor  = color.New(color.FgYellow, color.Bold)
	buttonColor = color.New(color.FgGreen)
	toastColor  = color.New(color.FgMagenta, color.Italic)
	menuColor   = color.New(color.FgBlue)
)

// Presenter prints conversation output to a terminal. Inline buttons are
// numbered so the next input line can press them with "#N".
type Presenter struct {
	mu      sync.Mutex
	w       io.Writer
	buttons []conversation.Button
}

func NewPresenter(w io.Writer) *Presenter {
	return &Presenter{w: w}
}

func (p *Presenter) Present(_ context.Context, out conversation.Output) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if replacesButtons(out) {
		p.buttons = p.buttons[:0]
	}
	for _, m := range out.Messages {
		switch m.Kind {
		case conversation.KindToast:
			toastColor.Fprintf(p.w, "  (%s)\n", m.Text)
			continue
		case conversation.KindClearButtons:
			continue
		case conversation.KindBook:
			p.printBook(m)
		default:
			botColor.Fprintln(p.w, m.Text)
		}
		for _, row := range m.Keyboard {
			menuColor.Fprintf(p.w, "  | %s |\n", strings.Join(row, " | "))
		}
		for _, row := range m.Buttons {
			for _, b := range row {
				p.buttons = append(p.buttons, b)
				buttonColor.Fprintf(p.w, "  [#%d] %s\n", len(p.buttons), b.Label)
			}
		}
	}
	return nil
}

// replacesButtons reports whether out prints a new screen. Toasts and markup
// edits leave the previous buttons pressable.
func replacesButtons(out conversation.Output) bool {
	for _, m := range out.Messages {
		if m.Kind != conversation.KindToast && m.Kind != conversation.KindClearButtons {
			return true
		}
	}
	return false
}

func (p *Presenter) printBook(m conversation.Message) {
	b := m.Book
	titleColor.Fprintf(p.w, "📖 %s\n", b.Title)
	fmt.Fprintf(p.w, "   👤 %s\n", b.Authors)
	fmt.Fprintf(p.w, "   ⭐ %s  📅 %s  📝 %s\n", b.RatingText("n/a"), orNA(b.PublishedDate), b.PagesText("n/a"))
	if b.Description != "" {
		fmt.Fprintf(p.w, "   %s\n", b.Excerpt(200))
	}
}

// Press returns the action of button n (1-based) from the last output.
func (p *Presenter) Press(n int) (conversation.Action, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 1 || n > len(p.buttons) {
		return nil, false
	}
	return p.buttons[n-1].Action, true
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

// Handler is the conversation core as the console sees it.
type Handler interface {
	Handle(ctx context.Context, ev conversation.Event) error
}

// Run reads lines from r as one user's chat until EOF or ctx is done.
// "#N" presses button N; any other line is sent as text.
func Run(ctx context.Context, r io.Reader, w io.Writer, p *Presenter, h Handler, userID session.UserID) error {
	scanner := bufio.NewScanner(r)
	if err := h.Handle(ctx, conversation.Event{ID: uuid.NewString(), UserID: userID, Text: conversation.StartCommand}); err != nil {
		return err
	}
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev := conversation.Event{ID: uuid.NewString(), UserID: userID, Text: line}
		if n, err := strconv.Atoi(strings.TrimPrefix(line, "#")); err == nil && strings.HasPrefix(line, "#") {
			action, ok := p.Press(n)
			if !ok {
				color.Red("no button #%d", n)
				continue
			}
			ev = conversation.Event{ID: ev.ID, UserID: userID, Action: action, CallbackID: ev.ID}
		}
		if err := h.Handle(ctx, ev); err != nil {
			color.Red("error: %v", err)
		}
	}
}
