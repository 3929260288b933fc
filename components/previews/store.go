package previews

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formpreview/pkg/field"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/sections"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("previews: session not found")
	// ErrTooManySessions is returned when the store is full.
	ErrTooManySessions = errors.New("previews: too many sessions")
)

// Session is one preview being edited.
type Session struct {
	ID       string
	Title    string
	Coord    *preview.Coordinator
	Defs     field.Set
	Sections []sections.Section

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) >= ttl
}

// Store keeps sessions in memory with sliding expiry.
type Store struct {
	ttl   time.Duration
	max   int
	clock func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore builds a store. maxSessions of zero is unlimited.
func NewStore(ttl time.Duration, maxSessions int, clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		ttl:      ttl,
		max:      maxSessions,
		clock:    clock,
		sessions: make(map[string]*Session),
	}
}

// Add assigns an id to s and stores it.
func (st *Store) Add(s *Session) error {
	now := st.clock()

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.max > 0 && len(st.sessions) >= st.max {
		st.sweepLocked(now)
		if len(st.sessions) >= st.max {
			return ErrTooManySessions
		}
	}
	s.ID = uuid.NewString()
	s.touch(now)
	st.sessions[s.ID] = s
	return nil
}

// Get returns a live session and extends its lifetime.
func (st *Store) Get(id string) (*Session, error) {
	now := st.clock()

	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if st.ttl > 0 && s.expired(now, st.ttl) {
		delete(st.sessions, id)
		return nil, ErrSessionNotFound
	}
	s.touch(now)
	return s, nil
}

// Delete drops a session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Sweep removes expired sessions and reports how many were dropped.
func (st *Store) Sweep() int {
	now := st.clock()
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sweepLocked(now)
}

// Len reports the number of stored sessions, expired or not.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) sweepLocked(now time.Time) int {
	if st.ttl <= 0 {
		return 0
	}
	n := 0
	for id, s := range st.sessions {
		if s.expired(now, st.ttl) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}
