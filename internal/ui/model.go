// Package ui renders the assistant's single page and drives its two remote
// calls: creating a case and asking a question.
package ui

import "sync"

// Model is the transient state of one browser session. Each field has a
// single writer: form binding writes the case name and question, a settled
// ask writes the answer. Overlapping asks are not serialized; the last one
// to settle wins.
type Model struct {
	mu       sync.RWMutex
	caseName string
	question string
	answer   string
}

// View is a consistent copy of a Model for rendering.
type View struct {
	CaseName string
	Question string
	Answer   string
	Notice   *Notice
}

func (m *Model) CaseName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.caseName
}

func (m *Model) SetCaseName(v string) {
	m.mu.Lock()
	m.caseName = v
	m.mu.Unlock()
}

func (m *Model) Question() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.question
}

func (m *Model) SetQuestion(v string) {
	m.mu.Lock()
	m.question = v
	m.mu.Unlock()
}

func (m *Model) Answer() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.answer
}

func (m *Model) setAnswer(v string) {
	m.mu.Lock()
	m.answer = v
	m.mu.Unlock()
}

func (m *Model) View(n *Notice) View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return View{CaseName: m.caseName, Question: m.question, Answer: m.answer, Notice: n}
}
