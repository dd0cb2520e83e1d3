package ui

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type sessionEntry struct {
	model    *Model
	lastSeen time.Time
}

// Sessions maps session ids to their Model. State lives only in memory and
// idles out after ttl.
type Sessions struct {
	mu        sync.Mutex
	ttl       time.Duration
	items     map[string]*sessionEntry
	lastSweep time.Time
	now       func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Sessions{ttl: ttl, items: make(map[string]*sessionEntry), now: time.Now}
}

// Get returns the model for id, starting a fresh session under a new id
// when id is unknown or expired.
func (s *Sessions) Get(id string) (*Model, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)

	if e, ok := s.items[id]; ok && now.Sub(e.lastSeen) <= s.ttl {
		e.lastSeen = now
		return e.model, id
	}
	id = uuid.NewString()
	m := &Model{}
	s.items[id] = &sessionEntry{model: m, lastSeen: now}
	return m, id
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Sessions) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.ttl/2 {
		return
	}
	s.lastSweep = now
	for id, e := range s.items {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.items, id)
		}
	}
}
