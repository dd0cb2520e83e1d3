package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"legal-assistant/internal/embeddings"
)

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

var (
	ErrCaseNotFound     = errors.New("case not found")
	ErrDocumentNotFound = errors.New("document not found")
)

// Case is a named context that documents are filed under and questions are asked against.
type Case struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type Document struct {
	ID        uuid.UUID
	CaseID    uuid.UUID
	Filename  string
	Status    DocumentStatus
	CreatedAt time.Time
}

type Chunk struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Index      int
	Text       string
	TokenCount int
}

type Embedding struct {
	ChunkID uuid.UUID
	Vector  embeddings.Vector
	Model   string
}

type SearchResult struct {
	Chunk Chunk
	Score float32
}

// Store defines the persistence contract for cases and their indexed documents.
type Store interface {
	// CreateCase returns the existing case when name is already taken.
	CreateCase(ctx context.Context, name string) (Case, error)
	GetCase(ctx context.Context, name string) (Case, error)
	ListCases(ctx context.Context) ([]Case, error)

	CreateDocument(ctx context.Context, caseID uuid.UUID, filename string) (Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (Document, error)
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error
	// DeleteDocuments removes every document of caseID named filename, with its chunks.
	DeleteDocuments(ctx context.Context, caseID uuid.UUID, filename string) (int, error)

	SaveChunks(ctx context.Context, docID uuid.UUID, chunks []Chunk) ([]Chunk, error)
	// DeleteChunks removes docID's chunks and their embeddings.
	DeleteChunks(ctx context.Context, docID uuid.UUID) error
	SaveEmbeddings(ctx context.Context, embs []Embedding) error
	// TopK returns the k chunks of caseID closest to vector, best first.
	TopK(ctx context.Context, caseID uuid.UUID, vector embeddings.Vector, k int) ([]SearchResult, error)
}

// CaseNames is a convenience for listing endpoints that only need names.
func CaseNames(cases []Case) []string {
	names := make([]string, 0, len(cases))
	for _, c := range cases {
		names = append(names, c.Name)
	}
	return names
}
