package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"legal-assistant/internal/embeddings"
)

// MemoryStore keeps everything in process. It backs STORE_PROVIDER=memory for
// local runs; nothing survives a restart.
type MemoryStore struct {
	mu         sync.RWMutex
	cases      map[string]Case
	documents  map[uuid.UUID]Document
	chunks     map[uuid.UUID]Chunk
	embeddings map[uuid.UUID]Embedding
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		cases:      make(map[string]Case),
		documents:  make(map[uuid.UUID]Document),
		chunks:     make(map[uuid.UUID]Chunk),
		embeddings: make(map[uuid.UUID]Embedding),
	}
}

func (s *MemoryStore) CreateCase(_ context.Context, name string) (Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cases[name]; ok {
		return c, nil
	}
	c := Case{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	s.cases[name] = c
	return c, nil
}

func (s *MemoryStore) GetCase(_ context.Context, name string) (Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[name]
	if !ok {
		return Case{}, ErrCaseNotFound
	}
	return c, nil
}

func (s *MemoryStore) ListCases(_ context.Context) ([]Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Case, 0, len(s.cases))
	for _, c := range s.cases {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateDocument(_ context.Context, caseID uuid.UUID, filename string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasCase(caseID) {
		return Document{}, ErrCaseNotFound
	}
	d := Document{ID: uuid.New(), CaseID: caseID, Filename: filename, Status: StatusProcessing, CreatedAt: time.Now()}
	s.documents[d.ID] = d
	return d, nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id uuid.UUID) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[id]
	if !ok {
		return Document{}, ErrDocumentNotFound
	}
	return d, nil
}

func (s *MemoryStore) UpdateDocumentStatus(_ context.Context, id uuid.UUID, status DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return ErrDocumentNotFound
	}
	d.Status = status
	s.documents[id] = d
	return nil
}

func (s *MemoryStore) DeleteDocuments(_ context.Context, caseID uuid.UUID, filename string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, d := range s.documents {
		if d.CaseID != caseID || d.Filename != filename {
			continue
		}
		for cid, c := range s.chunks {
			if c.DocumentID == id {
				delete(s.chunks, cid)
				delete(s.embeddings, cid)
			}
		}
		delete(s.documents, id)
		n++
	}
	return n, nil
}

func (s *MemoryStore) DeleteChunks(_ context.Context, docID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cid, c := range s.chunks {
		if c.DocumentID == docID {
			delete(s.chunks, cid)
			delete(s.embeddings, cid)
		}
	}
	return nil
}

func (s *MemoryStore) SaveChunks(_ context.Context, docID uuid.UUID, chunks []Chunk) ([]Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[docID]; !ok {
		return nil, ErrDocumentNotFound
	}
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		c.ID = uuid.New()
		c.DocumentID = docID
		s.chunks[c.ID] = c
		out = append(out, c)
	}
	return out, nil
}

func (s *MemoryStore) SaveEmbeddings(_ context.Context, embs []Embedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range embs {
		s.embeddings[e.ChunkID] = e
	}
	return nil
}

func (s *MemoryStore) TopK(_ context.Context, caseID uuid.UUID, vector embeddings.Vector, k int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []SearchResult
	for cid, e := range s.embeddings {
		c, ok := s.chunks[cid]
		if !ok {
			continue
		}
		if d, ok := s.documents[c.DocumentID]; !ok || d.CaseID != caseID || d.Status == StatusFailed {
			continue
		}
		results = append(results, SearchResult{Chunk: c, Score: embeddings.CosineSimilarity(vector, e.Vector)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DocumentChunks returns docID's stored chunks in order, with or without embeddings.
func (s *MemoryStore) DocumentChunks(docID uuid.UUID) []Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Chunk
	for _, c := range s.chunks {
		if c.DocumentID == docID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (s *MemoryStore) hasCase(id uuid.UUID) bool {
	for _, c := range s.cases {
		if c.ID == id {
			return true
		}
	}
	return false
}
