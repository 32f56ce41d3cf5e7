package user

import (
	"errors"
	"sync"
)

// ErrDuplicateID is returned by Add when the identity is already registered.
var ErrDuplicateID = errors.New("user: duplicate id")

// Store is the process-wide registry of known users, keyed by identity. It
// makes no ordering guarantees across entries.
type Store struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewStore creates an empty user registry.
func NewStore() *Store {
	return &Store{users: make(map[string]*User)}
}

// Get returns the user for the given identity, or nil if unknown.
func (s *Store) Get(id string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[id]
}

// Add registers a new user. It fails if the identity is already present;
// the connection-accept path uses Resolve instead so that check-then-add is
// atomic.
func (s *Store) Add(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return ErrDuplicateID
	}
	s.users[u.ID] = u
	return nil
}

// BulkAdd registers several users at once, overwriting existing rows.
func (s *Store) BulkAdd(users []*User) {
	s.mu.Lock()
	for _, u := range users {
		s.users[u.ID] = u
	}
	s.mu.Unlock()
}

// Resolve returns the user for the given identity, creating it with the
// provided constructor if absent. The lookup and insert happen under one
// lock so repeated connections from the same peer never produce duplicate
// rows.
func (s *Store) Resolve(id string, create func() *User) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u
	}
	u := create()
	s.users[id] = u
	return u
}

// Remove deletes the user row for the given identity, if present.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.users, id)
	s.mu.Unlock()
}

// All returns a snapshot of every registered user.
func (s *Store) All() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out
}

// Len returns the number of registered users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Clear closes every held transport and empties the registry. Called on
// process shutdown.
func (s *Store) Clear() {
	s.mu.Lock()
	users := s.users
	s.users = make(map[string]*User)
	s.mu.Unlock()

	for _, u := range users {
		u.CloseConn()
	}
}
