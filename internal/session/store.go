package session

import (
	"errors"
	"fmt"
	"ggarquitectos-site/internal/models"
	"ggarquitectos-site/internal/token"
	"log/slog"
	"sync"
)

var (
	ErrInvalidLogin = errors.New("session: login requires a token and a user")
)

// State is an immutable snapshot of the session. Authenticated is true exactly
// when Token is set, and User is non-nil exactly when Authenticated.
type State struct {
	Token         string              `json:"token,omitempty"`
	User          *models.UserSummary `json:"user,omitempty"`
	Authenticated bool                `json:"authenticated"`
}

type Persister interface {
	Load() (State, error)
	Save(State) error
}

type storeListener struct {
	id uint64
	fn func(State)
}

// Store holds the single client session. Mutations and the notifications they
// trigger are serialized, so listeners always observe committed states in order.
// Listeners run while the store is locked for writing and must not call Login or
// Logout themselves.
type Store struct {
	writeMu sync.Mutex

	mu        sync.RWMutex
	state     State
	nextID    uint64
	listeners []storeListener

	persister Persister
	logger    *slog.Logger
}

// NewStore restores any persisted session. A restored token that cannot be
// decoded is dropped.
func NewStore(logger *slog.Logger, persister Persister) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		persister: persister,
		logger:    logger,
	}

	if persister == nil {
		return s
	}

	restored, err := persister.Load()
	if err != nil {
		logger.Warn("Failed to restore session", "error", err)
		return s
	}

	if restored.Token == "" {
		return s
	}

	user := restored.User
	if user == nil {
		user, _ = token.UserSummary(restored.Token)
	}

	if _, ok := token.Decode(restored.Token); !ok || user == nil {
		logger.Warn("Dropping unreadable persisted session")
		if err := persister.Save(State{}); err != nil {
			logger.Warn("Failed to clear persisted session", "error", err)
		}
		return s
	}

	s.state = newState(restored.Token, user)
	logger.Debug("Restored session", "user", user.Email)

	return s
}

func newState(tok string, user *models.UserSummary) State {
	u := *user
	return State{
		Token:         tok,
		User:          &u,
		Authenticated: true,
	}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Authenticated
}

// Login replaces the session with token and user and notifies listeners once.
func (s *Store) Login(tok string, user *models.UserSummary) error {
	if tok == "" || user == nil {
		return ErrInvalidLogin
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.commit(newState(tok, user))
	s.logger.Info("Session started", "user", user.Email)

	return nil
}

// Logout clears the session. It returns false, without notifying anyone, when
// there was no session to clear.
func (s *Store) Logout() bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.IsAuthenticated() {
		return false
	}

	s.commit(State{})
	s.logger.Info("Session ended")

	return true
}

// commit must be called with writeMu held.
func (s *Store) commit(next State) {
	s.mu.Lock()
	s.state = next
	snapshot := s.snapshot()
	listeners := s.listeners
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Save(snapshot); err != nil {
			s.logger.Error("Failed to persist session", "error", err)
		}
	}

	for _, l := range listeners {
		s.notify(l, snapshot)
	}
}

func (s *Store) notify(l storeListener, st State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Session listener panicked", "error", fmt.Sprint(r))
		}
	}()

	l.fn(st)
}

// Subscribe registers fn for every committed change and returns a func that
// removes it. fn is not called with the current state.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, storeListener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			next := make([]storeListener, 0, len(s.listeners))
			for _, l := range s.listeners {
				if l.id != id {
					next = append(next, l)
				}
			}
			s.listeners = next
		})
	}
}
