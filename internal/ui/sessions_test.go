package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionsReuseKnownID(t *testing.T) {
	s := NewSessions(time.Minute)

	m1, id := s.Get("")
	assert.NotEmpty(t, id)
	m1.SetCaseName("Smith v. Jones")

	m2, id2 := s.Get(id)
	assert.Equal(t, id, id2)
	assert.Same(t, m1, m2)
	assert.Equal(t, "Smith v. Jones", m2.CaseName())
}

func TestSessionsUnknownIDStartsFresh(t *testing.T) {
	s := NewSessions(time.Minute)

	m, id := s.Get("forged")
	assert.NotEqual(t, "forged", id)
	assert.Empty(t, m.CaseName())
}

func TestSessionsExpire(t *testing.T) {
	now := time.Unix(0, 0)
	s := NewSessions(time.Minute)
	s.now = func() time.Time { return now }

	m, id := s.Get("")
	m.SetQuestion("stale")

	now = now.Add(2 * time.Minute)
	fresh, newID := s.Get(id)

	assert.NotEqual(t, id, newID)
	assert.Empty(t, fresh.Question())
	assert.Equal(t, 1, s.Len())
}
