package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"legal-assistant/internal/client"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) CreateCase(ctx context.Context, name string) (client.CreateCaseResponse, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(client.CreateCaseResponse), args.Error(1)
}

func (m *mockAPI) Ask(ctx context.Context, caseName, query string) (client.AskResponse, error) {
	args := m.Called(ctx, caseName, query)
	return args.Get(0).(client.AskResponse), args.Error(1)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestControllerCreateCase(t *testing.T) {
	api := new(mockAPI)
	api.On("CreateCase", mock.Anything, "Smith v. Jones").
		Return(client.CreateCaseResponse{Message: "Case created"}, nil).Once()

	m := &Model{}
	m.SetCaseName("Smith v. Jones")
	notice := NewController(api, discard()).CreateCase(context.Background(), m)

	require.NotNil(t, notice)
	assert.Equal(t, NoticeInfo, notice.Kind)
	assert.Equal(t, "Case created", notice.Text)
	assert.Empty(t, m.Answer())
	api.AssertExpectations(t)
}

func TestControllerCreateCaseSendsEmptyName(t *testing.T) {
	api := new(mockAPI)
	api.On("CreateCase", mock.Anything, "").
		Return(client.CreateCaseResponse{}, &client.APIError{StatusCode: 400, Message: "invalid request"}).Once()

	notice := NewController(api, discard()).CreateCase(context.Background(), &Model{})

	require.NotNil(t, notice)
	assert.Equal(t, NoticeError, notice.Kind)
	assert.Contains(t, notice.Text, "invalid request")
	api.AssertExpectations(t)
}

func TestControllerAskQuestion(t *testing.T) {
	api := new(mockAPI)
	api.On("Ask", mock.Anything, "Smith v. Jones", "What is consideration?").
		Return(client.AskResponse{Answer: "Consideration is..."}, nil).Once()

	m := &Model{}
	m.SetCaseName("Smith v. Jones")
	m.SetQuestion("What is consideration?")
	notice := NewController(api, discard()).AskQuestion(context.Background(), m)

	assert.Nil(t, notice)
	assert.Equal(t, "Consideration is...", m.Answer())
	api.AssertExpectations(t)
}

func TestControllerAskFailureKeepsPreviousAnswer(t *testing.T) {
	api := new(mockAPI)
	api.On("Ask", mock.Anything, "", "q").
		Return(client.AskResponse{}, errors.New("connection refused")).Once()

	m := &Model{}
	m.setAnswer("earlier answer")
	m.SetQuestion("q")
	notice := NewController(api, discard()).AskQuestion(context.Background(), m)

	require.NotNil(t, notice)
	assert.Equal(t, NoticeError, notice.Kind)
	assert.Contains(t, notice.Text, "connection refused")
	assert.Equal(t, "earlier answer", m.Answer())
}

// gatedAPI holds each Ask until its query's gate is released.
type gatedAPI struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	arrived chan string
}

func (g *gatedAPI) CreateCase(context.Context, string) (client.CreateCaseResponse, error) {
	return client.CreateCaseResponse{}, nil
}

func (g *gatedAPI) Ask(_ context.Context, _, query string) (client.AskResponse, error) {
	g.mu.Lock()
	gate := g.gates[query]
	g.mu.Unlock()
	g.arrived <- query
	<-gate
	return client.AskResponse{Answer: "answer to " + query}, nil
}

func TestOverlappingAsksLastToSettleWins(t *testing.T) {
	api := &gatedAPI{
		gates:   map[string]chan struct{}{"first": make(chan struct{}), "second": make(chan struct{})},
		arrived: make(chan string, 2),
	}
	ctrl := NewController(api, discard())
	m := &Model{}

	var wg sync.WaitGroup
	ask := func() {
		defer wg.Done()
		ctrl.AskQuestion(context.Background(), m)
	}

	m.SetQuestion("first")
	wg.Add(1)
	go ask()
	require.Equal(t, "first", <-api.arrived)

	m.SetQuestion("second")
	wg.Add(1)
	go ask()
	require.Equal(t, "second", <-api.arrived)

	// Both requests are in flight; the first one settles last.
	close(api.gates["second"])
	require.Eventually(t, func() bool { return m.Answer() == "answer to second" }, time.Second, time.Millisecond)
	close(api.gates["first"])
	wg.Wait()

	assert.Equal(t, "answer to first", m.Answer())
}
