// Package session holds the client-side authentication state: the token,
// the derived authenticated flag, its persistence and the hydration gate.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle of a Store.
type State int

const (
	StateUninitialized State = iota
	StateHydrating
	StateReadyAuthenticated
	StateReadyUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHydrating:
		return "hydrating"
	case StateReadyAuthenticated:
		return "ready-authenticated"
	case StateReadyUnauthenticated:
		return "ready-unauthenticated"
	}
	return "unknown"
}

var (
	ErrEmptyToken = errors.New("empty token")
	ErrClosed     = errors.New("session store closed")
)

// Session is a snapshot of the authentication state.
// IsAuthenticated is always Token != "".
type Session struct {
	Token           string
	IsAuthenticated bool
	Source          string
}

// Store owns the session. Construct one per process and pass it to the
// HTTP layer and the UI root.
type Store struct {
	mu        sync.RWMutex
	persist   Persister
	log       *zap.Logger
	now       func() time.Time
	gate      *Gate
	state     State
	sess      Session
	dirty     bool // mutated while hydrating
	closed    bool
	listeners map[int]func(Session)
	nextID    int
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persist:   p,
		log:       zap.NewNop(),
		now:       time.Now,
		gate:      NewGate(),
		listeners: map[int]func(Session){},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Gate exposes the hydration readiness signal.
func (s *Store) Gate() *Gate { return s.gate }

// Hydrate loads the persisted session. Only the first call does work;
// later calls wait for it to finish. A missing or unreadable record
// leaves the store ready and unauthenticated.
func (s *Store) Hydrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return s.gate.Wait(ctx)
	}
	s.state = StateHydrating
	s.mu.Unlock()

	rec, found, err := s.persist.Load()
	if err != nil {
		s.log.Warn("session hydrate failed, starting logged out", zap.Error(err))
		found = false
	}

	s.mu.Lock()
	if !s.dirty {
		s.sess = Session{}
		if found && rec.Token != "" {
			s.sess = Session{Token: rec.Token, IsAuthenticated: true, Source: rec.Source}
		}
	}
	s.state = readyState(s.sess)
	snap := s.sess
	s.mu.Unlock()

	s.log.Debug("session hydrated",
		zap.Bool("authenticated", snap.IsAuthenticated),
		zap.String("source", snap.Source))
	s.gate.open()
	s.notify(snap)
	return nil
}

// Login stores token and marks the session authenticated.
func (s *Store) Login(token string) error {
	token = StripBearer(strings.TrimSpace(token))
	if token == "" {
		return ErrEmptyToken
	}
	return s.set(Session{Token: token, IsAuthenticated: true, Source: SourceFile}, true)
}

// Logout clears the session. A token supplied through DROPWISE_TOKEN is
// only cleared in memory.
func (s *Store) Logout() {
	s.mu.RLock()
	fromEnv := s.sess.Source == SourceEnv
	s.mu.RUnlock()
	_ = s.set(Session{}, !fromEnv)
}

func (s *Store) set(next Session, persist bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.sess = next
	switch s.state {
	case StateHydrating:
		s.dirty = true
	case StateReadyAuthenticated, StateReadyUnauthenticated:
		s.state = readyState(next)
	}
	s.mu.Unlock()

	if persist {
		rec := Record{Token: next.Token, IsAuthenticated: next.IsAuthenticated, SavedAt: s.now()}
		// fire-and-forget: the in-memory state stands even if the write fails
		if err := s.persist.Save(rec); err != nil {
			s.log.Error("session persist failed", zap.Error(err))
		}
	}
	s.notify(next)
	return nil
}

// Token returns the current bearer token or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Token
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.IsAuthenticated
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn for every change. The returned func removes it.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close disposes the store. Further mutations fail with ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.listeners = map[int]func(Session){}
	s.mu.Unlock()
}

func (s *Store) notify(snap Session) {
	s.mu.RLock()
	fns := make([]func(Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func readyState(sess Session) State {
	if sess.IsAuthenticated {
		return StateReadyAuthenticated
	}
	return StateReadyUnauthenticated
}
