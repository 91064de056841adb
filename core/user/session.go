package user

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	NowFunc = time.Now // mockable

	ErrSessionEnded = errors.New("session has ended")
)

// Session is the identity context handed to session-scoped components.
// It is started once the principal is known and ended on sign-out or idle expiry;
// components register teardown hooks with OnEnd.
type Session struct {
	mu        sync.Mutex
	id        string
	principal Principal
	loading   bool
	started   time.Time
	lastSeen  time.Time
	ended     bool
	hooks     []func()
}

// NewSession returns a session in the loading state, before its principal is resolved.
func NewSession() *Session {
	return &Session{id: uuid.New().String(), loading: true}
}

// StartSession is a shortcut for NewSession followed by Start.
func StartSession(p Principal) (*Session, error) {
	s := NewSession()
	if err := s.Start(p); err != nil {
		return nil, err
	}
	return s, nil
}

// Start binds the principal and leaves the loading state.
func (s *Session) Start(p Principal) error {
	if p.IsZero() {
		return errors.New("starting session: empty principal")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrSessionEnded
	}
	now := NowFunc()
	s.principal = p
	s.loading = false
	s.started = now
	s.lastSeen = now
	return nil
}

// SetPrincipal replaces the principal of a started session, e.g. after a role change.
// The principal id cannot change.
func (s *Session) SetPrincipal(p Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.ended:
		return ErrSessionEnded
	case s.loading:
		return errors.New("session not started")
	case p.ID != s.principal.ID:
		return errors.New("session principal cannot change identity")
	}
	s.principal = p
	return nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Principal() Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loading && !s.ended
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended {
		s.lastSeen = NowFunc()
	}
}

func (s *Session) IdleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// OnEnd registers fn to run when the session ends. Hooks run in reverse order of registration.
// If the session already ended, fn runs immediately.
func (s *Session) OnEnd(fn func()) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		fn()
		return
	}
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// End tears the session down. Calling it more than once is a no-op.
func (s *Session) End() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}
