package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookbot/internal/conversation"
	"bookbot/internal/session"
)

type fakeUpdater struct {
	mu       sync.Mutex
	batches  [][]Update
	offsets  []int64
	answered []string
}

func (f *fakeUpdater) GetUpdates(ctx context.Context, offset int64, _ time.Duration) ([]Update, error) {
	f.mu.Lock()
	f.offsets = append(f.offsets, offset)
	if len(f.batches) > 0 {
		next := f.batches[0]
		f.batches = f.batches[1:]
		f.mu.Unlock()
		if next == nil {
			return nil, errors.New("bad gateway")
		}
		return next, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeUpdater) AnswerCallbackQuery(_ context.Context, req AnswerCallbackQueryRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, req.CallbackQueryID)
	return nil
}

type recordingHandler struct {
	mu     sync.Mutex
	events []conversation.Event
	done   chan struct{}
	want   int
}

func (h *recordingHandler) Handle(_ context.Context, ev conversation.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	if len(h.events) == h.want {
		close(h.done)
	}
	return nil
}

func (h *recordingHandler) byUser(id session.UserID) []conversation.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []conversation.Event
	for _, ev := range h.events {
		if ev.UserID == id {
			out = append(out, ev)
		}
	}
	return out
}

func textUpdate(id, chat int64, text string) Update {
	return Update{UpdateID: id, Message: &Message{MessageID: id, Chat: Chat{ID: chat}, Text: text}}
}

func callbackUpdate(id, chat int64, cbID, data string) Update {
	return Update{UpdateID: id, CallbackQuery: &CallbackQuery{ID: cbID, From: User{ID: chat}, Data: data}}
}

func TestPoller_DispatchesInOrderPerUser(t *testing.T) {
	updater := &fakeUpdater{batches: [][]Update{
		{
			textUpdate(1, 100, "/start"),
			textUpdate(2, 200, "/start"),
			callbackUpdate(3, 100, "cb3", "sort_by_rating"),
			callbackUpdate(4, 100, "cb4", "bogus"),
			{UpdateID: 5},
		},
		nil,
		{textUpdate(6, 100, "📜 Search history")},
	}}
	handler := &recordingHandler{done: make(chan struct{}), want: 4}
	p := NewPoller(updater, handler, zap.NewNop(), 4, time.Second)
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	select {
	case <-handler.done:
	case <-time.After(5 * time.Second):
		t.Fatal("events were not dispatched")
	}
	cancel()
	require.NoError(t, <-errCh)

	first := handler.byUser(100)
	require.Len(t, first, 3)
	start, sort, hist := -1, -1, -1
	for i, ev := range first {
		assert.NotEmpty(t, ev.ID)
		switch {
		case ev.Text == "/start":
			start = i
		case ev.Action == conversation.SortByRating{}:
			sort = i
			assert.Equal(t, "cb3", ev.CallbackID)
		case ev.Text == "📜 Search history":
			hist = i
		}
	}
	assert.True(t, start >= 0 && start < sort, "events of one batch keep their order")
	assert.NotEqual(t, -1, hist)
	assert.Len(t, handler.byUser(200), 1)

	updater.mu.Lock()
	defer updater.mu.Unlock()
	assert.Equal(t, []string{"cb4"}, updater.answered)
	assert.Equal(t, []int64{0, 6, 6, 7}, updater.offsets)
}

type gateHandler struct {
	mu      sync.Mutex
	order   []string
	release chan struct{}
}

func (h *gateHandler) Handle(_ context.Context, ev conversation.Event) error {
	if ev.Text == "first" {
		<-h.release
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.order = append(h.order, ev.Text)
	return nil
}

func (h *gateHandler) handled() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.order...)
}

func TestPoller_KeepsUserOrderAcrossBatches(t *testing.T) {
	updater := &fakeUpdater{batches: [][]Update{
		{textUpdate(1, 100, "first"), textUpdate(2, 100, "second")},
		{textUpdate(3, 100, "third"), textUpdate(4, 200, "other")},
	}}
	handler := &gateHandler{release: make(chan struct{})}
	p := NewPoller(updater, handler, zap.NewNop(), 4, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	// The third poll starts only after the second batch was dispatched.
	require.Eventually(t, func() bool {
		updater.mu.Lock()
		defer updater.mu.Unlock()
		return len(updater.offsets) == 3
	}, 5*time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return len(handler.handled()) == 1 }, 5*time.Second, time.Millisecond)
	assert.Equal(t, []string{"other"}, handler.handled())

	close(handler.release)
	require.Eventually(t, func() bool { return len(handler.handled()) == 4 }, 5*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{"other", "first", "second", "third"}, handler.handled())
	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Empty(t, p.queues)
}

func TestPoller_CallbackCarriesMessageID(t *testing.T) {
	p := NewPoller(&fakeUpdater{}, nil, zap.NewNop(), 1, time.Second)

	ev, err := p.toEvent(Update{UpdateID: 1, CallbackQuery: &CallbackQuery{
		ID:      "cb",
		From:    User{ID: 5},
		Message: &Message{MessageID: 42, Chat: Chat{ID: 5}},
		Data:    "add_dune01",
	}})

	require.NoError(t, err)
	assert.Equal(t, session.UserID(5), ev.UserID)
	assert.Equal(t, int64(42), ev.MessageID)
	assert.Equal(t, conversation.AddFavorite{BookID: "dune01"}, ev.Action)
}
