// Package session keeps one in-memory collection per browser session.
// Nothing is persisted; sessions expire after a period of inactivity and the
// least recently used session is evicted once the store is full.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/codyseavey/pokecard-lookup/internal/collection"
	"github.com/codyseavey/pokecard-lookup/internal/logging"
	"github.com/codyseavey/pokecard-lookup/internal/metrics"
)

// Session is one visitor's collection. Callers go through With so access to
// the collection is serialized.
type Session struct {
	ID string

	mu         sync.Mutex
	collection *collection.Collection
}

// With runs fn with exclusive access to the session's collection.
func (s *Session) With(fn func(c *collection.Collection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.collection)
}

type Store struct {
	cache  *expirable.LRU[string, *Session]
	logger *zap.Logger
}

// NewStore creates a store holding at most size sessions, each idle for at
// most ttl.
func NewStore(size int, ttl time.Duration, logger *zap.Logger) *Store {
	logger = logging.OrNop(logger)
	onEvict := func(id string, _ *Session) {
		metrics.CollectionSessions.Dec()
		logger.Debug("session evicted", zap.String("session", id))
	}
	return &Store{
		cache:  expirable.NewLRU[string, *Session](size, onEvict, ttl),
		logger: logger,
	}
}

// Get returns the live session with id and refreshes its expiry.
func (st *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, false
	}
	// re-adding an existing key resets its ttl
	st.cache.Add(id, s)
	return s, true
}

// GetOrCreate returns the session with id, or a fresh session with a new id
// when id is empty, unknown or expired. Client supplied ids are never
// adopted.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	if s, ok := st.Get(id); ok {
		return s, false
	}

	s = &Session{
		ID:         uuid.NewString(),
		collection: collection.New(),
	}
	st.cache.Add(s.ID, s)
	metrics.CollectionSessions.Inc()
	st.logger.Debug("session created", zap.String("session", s.ID))
	return s, true
}

// Len is the number of live sessions.
func (st *Store) Len() int {
	return st.cache.Len()
}
