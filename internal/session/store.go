package session

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store owns one Session per user. Lookups go through the cache's own lock;
// event handling is serialized per user only, so users never block each other.
type Store struct {
	cache *cache.Cache
	now   func() time.Time
}

func NewStore() *Store {
	// Sessions never expire, so there is nothing to janitor.
	return &Store{
		cache: cache.New(cache.NoExpiration, 0),
		now:   time.Now,
	}
}

// GetOrCreate returns the user's session, creating it in MainMenu on first contact.
func (s *Store) GetOrCreate(id UserID) *Session {
	key := id.String()
	if x, found := s.cache.Get(key); found {
		return x.(*Session)
	}

	sess := newSession(id, s.now())
	if err := s.cache.Add(key, sess, cache.NoExpiration); err != nil {
		// Another event for the same user created it first.
		x, _ := s.cache.Get(key)
		return x.(*Session)
	}
	return sess
}

// Acquire locks the user's session for the duration of one event. The returned
// release func is safe to call more than once.
func (s *Store) Acquire(id UserID) (*Session, func()) {
	sess := s.GetOrCreate(id)
	sess.mu.Lock()

	var once sync.Once
	return sess, func() {
		once.Do(sess.mu.Unlock)
	}
}

func (s *Store) GetState(id UserID) State {
	return s.GetOrCreate(id).State()
}

func (s *Store) SetState(id UserID, st State) {
	s.GetOrCreate(id).SetState(st)
}

// Len reports the number of known sessions.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
