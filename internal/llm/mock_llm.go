package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Answer(ctx context.Context, question, contextText string) (string, error) {
	args := m.Called(ctx, question, contextText)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Counter(ctx context.Context, opponentText, contextText string) (string, error) {
	args := m.Called(ctx, opponentText, contextText)
	return args.String(0), args.Error(1)
}

// MockCompleter is a mock implementation of Completer using testify/mock.
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}
