package conversation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"bookbot/internal/book"
	"bookbot/internal/catalog"
	"bookbot/internal/genre"
	"bookbot/internal/session"
)

const (
	defaultMaxResults = 10
	topResults        = 5
)

// Service drives the conversation: one Handle call per inbound event.
type Service struct {
	sessions  SessionStore
	favorites FavoritesStore
	history   HistoryLog
	gateway   catalog.Gateway
	genres    *genre.Vocabulary
	presenter Presenter
	logger    *zap.Logger
	metrics   Metrics

	maxResults int
	pick       func(n int) int
	menu       map[string]transitionFunc
}

type Option func(*Service)

// WithMaxResults bounds every catalog search.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithRandom replaces the source used for random genre and book picks.
func WithRandom(pick func(n int) int) Option {
	return func(s *Service) { s.pick = pick }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(
	sessions SessionStore,
	favorites FavoritesStore,
	history HistoryLog,
	gateway catalog.Gateway,
	genres *genre.Vocabulary,
	presenter Presenter,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		sessions:   sessions,
		favorites:  favorites,
		history:    history,
		gateway:    gateway,
		genres:     genres,
		presenter:  presenter,
		logger:     logger,
		metrics:    noopMetrics{},
		maxResults: defaultMaxResults,
		pick:       rand.IntN,
	}
	s.menu = mainMenuCommands()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// turn accumulates the output of a single event.
type turn struct {
	ctx    context.Context
	userID session.UserID
	text   string
	log    *zap.Logger
	out    []Message
}

func (t *turn) send(msgs ...Message) { t.out = append(t.out, msgs...) }

// Handle processes one event under the user's session lock. Events of the
// same user are applied one at a time, in arrival order of lock acquisition.
func (s *Service) Handle(ctx context.Context, ev Event) (err error) {
	start := time.Now()
	sess, release := s.sessions.Acquire(ev.UserID)
	defer release()

	log := s.logger.With(
		zap.String("event_id", ev.ID),
		zap.Stringer("user_id", ev.UserID),
		zap.String("event", ev.kind()),
	)
	from := sess.State()
	t := &turn{ctx: ctx, userID: ev.UserID, text: normalize(ev.Text), log: log}

	dispatched := false
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		log.Error("panic while handling event", zap.Any("panic", r), zap.Stack("stack"))
		err = fmt.Errorf("handle event %s: panic: %v", ev.ID, r)
		if dispatched {
			return
		}
		out := Output{
			UserID:     ev.UserID,
			CallbackID: ev.CallbackID,
			MessageID:  ev.MessageID,
			Messages:   []Message{textMessage(msgSearchFailed)},
		}
		if perr := s.presenter.Present(ctx, out); perr != nil {
			log.Warn("present failure notice", zap.Error(perr))
		}
	}()

	var to session.State
	if ev.Action != nil {
		to = s.dispatchAction(t, from, ev.Action)
	} else {
		to = s.dispatchText(t, from)
	}
	sess.SetState(to)
	dispatched = true

	elapsed := time.Since(start)
	s.metrics.ObserveEvent(ev.kind(), from.String(), to.String(), elapsed)
	s.metrics.SetSessions(s.sessions.Len())
	log.Info("event handled",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("messages", len(t.out)),
		zap.Duration("elapsed", elapsed),
	)

	if len(t.out) == 0 && ev.CallbackID == "" {
		return nil
	}
	out := Output{UserID: ev.UserID, CallbackID: ev.CallbackID, MessageID: ev.MessageID, Messages: t.out}
	if err := s.presenter.Present(ctx, out); err != nil {
		log.Warn("present output", zap.Error(err))
		return fmt.Errorf("present output: %w", err)
	}
	return nil
}

func (s *Service) dispatchText(t *turn, state session.State) session.State {
	return s.lookup(state, s.classify(t.text))(s, t)
}

// search runs a bounded catalog query. A nil error with no books means the
// catalog had nothing; an error means the catalog could not answer.
func (s *Service) search(t *turn, kind catalog.Kind, term string, order catalog.Order) ([]book.Book, error) {
	books, err := s.gateway.Search(t.ctx, catalog.Query{
		Kind:       kind,
		Term:       term,
		MaxResults: s.maxResults,
		Order:      order,
	})
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		t.log.Error("catalog search failed",
			zap.String("kind", string(kind)),
			zap.String("term", term),
			zap.Error(err),
		)
		return nil, err
	}
	return books, nil
}

// showResults records a search in history and renders its header and the
// first results.
func (s *Service) showResults(t *turn, label, header string, books []book.Book) {
	s.history.Append(t.userID, label, books)
	t.send(resultsHeader(header, false))
	s.sendTop(t, books)
}

func (s *Service) sendTop(t *turn, books []book.Book) {
	for _, b := range books[:min(topResults, len(books))] {
		t.send(bookCard(b))
	}
}
