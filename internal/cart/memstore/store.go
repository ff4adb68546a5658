// Package memstore keeps at most one live cart session per store owner in
// process memory. Nothing survives a Clear or a process restart; persisted
// state belongs to billing.
package memstore

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tillpoint/internal/cart"
	"go.uber.org/fx"
)

// Module provides the cart session store.
var Module = fx.Module("cart.store",
	fx.Provide(New),
)

// Store hands out cart sessions keyed by owner. The mutex guards the map
// only; each session stays single-writer per the engine's contract.
type Store struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*cart.Session
}

func New() *Store {
	return &Store{
		sessions: make(map[snowflake.ID]*cart.Session),
	}
}

// Get returns the owner's live session, creating an empty one on first use.
func (s *Store) Get(userID snowflake.ID) *cart.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		session = cart.NewSession()
		s.sessions[userID] = session
	}
	return session
}

// Drop discards the owner's session entirely.
func (s *Store) Drop(userID snowflake.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
