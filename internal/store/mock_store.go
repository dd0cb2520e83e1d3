package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"legal-assistant/internal/embeddings"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateCase(ctx context.Context, name string) (Case, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(Case), args.Error(1)
}

func (m *MockStore) GetCase(ctx context.Context, name string) (Case, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(Case), args.Error(1)
}

func (m *MockStore) ListCases(ctx context.Context) ([]Case, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Case), args.Error(1)
}

func (m *MockStore) CreateDocument(ctx context.Context, caseID uuid.UUID, filename string) (Document, error) {
	args := m.Called(ctx, caseID, filename)
	return args.Get(0).(Document), args.Error(1)
}

func (m *MockStore) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Document), args.Error(1)
}

func (m *MockStore) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) DeleteDocuments(ctx context.Context, caseID uuid.UUID, filename string) (int, error) {
	args := m.Called(ctx, caseID, filename)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) SaveChunks(ctx context.Context, docID uuid.UUID, chunks []Chunk) ([]Chunk, error) {
	args := m.Called(ctx, docID, chunks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Chunk), args.Error(1)
}

func (m *MockStore) DeleteChunks(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

func (m *MockStore) SaveEmbeddings(ctx context.Context, embs []Embedding) error {
	args := m.Called(ctx, embs)
	return args.Error(0)
}

func (m *MockStore) TopK(ctx context.Context, caseID uuid.UUID, vector embeddings.Vector, k int) ([]SearchResult, error) {
	args := m.Called(ctx, caseID, vector, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SearchResult), args.Error(1)
}
