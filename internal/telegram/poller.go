package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bookbot/internal/conversation"
	"bookbot/internal/session"
)

// Handler is the conversation core as the poller sees it.
type Handler interface {
	Handle(ctx context.Context, ev conversation.Event) error
}

// Updater is the inbound half of the Bot API.
type Updater interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
	AnswerCallbackQuery(ctx context.Context, req AnswerCallbackQueryRequest) error
}

type Poller struct {
	updater Updater
	handler Handler
	logger  *zap.Logger
	workers int
	timeout time.Duration
	backoff time.Duration

	mu     sync.Mutex
	queues map[session.UserID][]conversation.Event
}

func NewPoller(updater Updater, handler Handler, logger *zap.Logger, workers int, timeout time.Duration) *Poller {
	return &Poller{
		updater: updater,
		handler: handler,
		logger:  logger,
		workers: max(1, workers),
		timeout: timeout,
		backoff: 3 * time.Second,
		queues:  map[session.UserID][]conversation.Event{},
	}
}

// Run long-polls until ctx is done. Events are fanned out to at most workers
// goroutines. A user has at most one goroutine at a time, which drains that
// user's queue, so a user's events keep their order across batches.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	// In-flight events finish after shutdown starts.
	handleCtx := context.WithoutCancel(ctx)
	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	defer func() { _ = g.Wait() }()

	for {
		updates, err := p.updater.GetUpdates(ctx, offset, p.timeout)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			p.logger.Warn("get updates failed", zap.Error(err))
			select {
			case <-time.After(p.backoff):
				continue
			case <-ctx.Done():
				return nil
			}
		}

		for _, batch := range p.group(ctx, updates) {
			if !p.enqueue(batch) {
				continue
			}
			userID := batch[0].UserID
			g.Go(func() error {
				p.drain(handleCtx, userID)
				return nil
			})
		}
		for _, u := range updates {
			offset = max(offset, u.UpdateID+1)
		}
	}
}

// enqueue appends a user's events to their queue. It reports whether the
// user has no active drainer and one must be started.
func (p *Poller) enqueue(batch []conversation.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	userID := batch[0].UserID
	if _, active := p.queues[userID]; active {
		p.queues[userID] = append(p.queues[userID], batch...)
		return false
	}
	p.queues[userID] = batch
	return true
}

func (p *Poller) drain(ctx context.Context, userID session.UserID) {
	for {
		p.mu.Lock()
		pending := p.queues[userID]
		if len(pending) == 0 {
			delete(p.queues, userID)
			p.mu.Unlock()
			return
		}
		p.queues[userID] = []conversation.Event{}
		p.mu.Unlock()

		for _, ev := range pending {
			if err := p.handler.Handle(ctx, ev); err != nil {
				p.logger.Error("handle event", zap.String("event_id", ev.ID), zap.Error(err))
			}
		}
	}
}

// group converts updates to events and splits them per user, keeping order.
func (p *Poller) group(ctx context.Context, updates []Update) [][]conversation.Event {
	index := map[session.UserID]int{}
	var batches [][]conversation.Event
	for _, u := range updates {
		ev, err := p.toEvent(u)
		if err != nil {
			p.logger.Info("dropping update", zap.Int64("update_id", u.UpdateID), zap.Error(err))
			if u.CallbackQuery != nil {
				_ = p.updater.AnswerCallbackQuery(ctx, AnswerCallbackQueryRequest{CallbackQueryID: u.CallbackQuery.ID})
			}
			continue
		}
		i, ok := index[ev.UserID]
		if !ok {
			i = len(batches)
			index[ev.UserID] = i
			batches = append(batches, nil)
		}
		batches[i] = append(batches[i], ev)
	}
	return batches
}

var errUnsupportedUpdate = errors.New("unsupported update")

func (p *Poller) toEvent(u Update) (conversation.Event, error) {
	switch {
	case u.CallbackQuery != nil:
		action, err := conversation.ParseAction(u.CallbackQuery.Data)
		if err != nil {
			return conversation.Event{}, err
		}
		userID := u.CallbackQuery.From.ID
		var messageID int64
		if u.CallbackQuery.Message != nil {
			userID = u.CallbackQuery.Message.Chat.ID
			messageID = u.CallbackQuery.Message.MessageID
		}
		return conversation.Event{
			ID:         uuid.NewString(),
			UserID:     session.UserID(userID),
			Action:     action,
			CallbackID: u.CallbackQuery.ID,
			MessageID:  messageID,
		}, nil
	case u.Message != nil && u.Message.Text != "":
		return conversation.Event{
			ID:     uuid.NewString(),
			UserID: session.UserID(u.Message.Chat.ID),
			Text:   u.Message.Text,
		}, nil
	default:
		return conversation.Event{}, errUnsupportedUpdate
	}
}
