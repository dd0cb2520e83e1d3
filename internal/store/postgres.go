package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"legal-assistant/internal/embeddings"
)

type PostgresStore struct {
	db  *sql.DB
	dim int
}

// NewPostgres opens dsn and migrates the schema. dim is the embedding width
// of the configured embedding model.
func NewPostgres(dsn string, dim int) (*PostgresStore, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dim)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db, dim: dim}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Advisory lock keeps the api and indexer from migrating concurrently.
	const lockID = 727274001

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cases (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			case_id UUID REFERENCES cases(id) ON DELETE CASCADE,
			filename TEXT,
			status TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS documents_case_idx ON documents(case_id, filename);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id UUID PRIMARY KEY,
			document_id UUID REFERENCES documents(id) ON DELETE CASCADE,
			ord INT,
			text TEXT,
			token_count INT
		);`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS embeddings (
			chunk_id UUID PRIMARY KEY REFERENCES chunks(id) ON DELETE CASCADE,
			vector vector(%d),
			model TEXT
		);`, s.dim),
		`CREATE INDEX IF NOT EXISTS embeddings_vector_idx
			ON embeddings USING ivfflat (vector vector_cosine_ops)
			WITH (lists = 100);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateCase(ctx context.Context, name string) (Case, error) {
	c := Case{ID: uuid.New(), Name: name}
	// The no-op update makes RETURNING yield the existing row on conflict.
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO cases(id, name) VALUES($1,$2)
		ON CONFLICT (name) DO UPDATE SET name=excluded.name
		RETURNING id, created_at`, c.ID, name).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return Case{}, fmt.Errorf("create case %q: %w", name, err)
	}
	return c, nil
}

func (s *PostgresStore) GetCase(ctx context.Context, name string) (Case, error) {
	c := Case{Name: name}
	err := s.db.QueryRowContext(ctx, `SELECT id, created_at FROM cases WHERE name=$1`, name).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Case{}, ErrCaseNotFound
		}
		return Case{}, fmt.Errorf("get case %q: %w", name, err)
	}
	return c, nil
}

func (s *PostgresStore) ListCases(ctx context.Context) ([]Case, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM cases ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Case
	for rows.Next() {
		var c Case
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateDocument(ctx context.Context, caseID uuid.UUID, filename string) (Document, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, `INSERT INTO documents(id, case_id, filename, status) VALUES($1,$2,$3,$4)`,
		id, caseID, filename, StatusProcessing)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, CaseID: caseID, Filename: filename, Status: StatusProcessing, CreatedAt: time.Now()}, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	d := Document{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT case_id, filename, status, created_at FROM documents WHERE id=$1`, id).
		Scan(&d.CaseID, &d.Filename, &d.Status, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return d, nil
}

func (s *PostgresStore) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteDocuments(ctx context.Context, caseID uuid.UUID, filename string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE case_id=$1 AND filename=$2`, caseID, filename)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *PostgresStore) SaveChunks(ctx context.Context, docID uuid.UUID, chunks []Chunk) ([]Chunk, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		cid := uuid.New()
		_, err := tx.ExecContext(ctx, `INSERT INTO chunks(id, document_id, ord, text, token_count) VALUES($1,$2,$3,$4,$5)`,
			cid, docID, c.Index, c.Text, c.TokenCount)
		if err != nil {
			return nil, err
		}
		c.ID = cid
		c.DocumentID = docID
		out = append(out, c)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) DeleteChunks(ctx context.Context, docID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id=$1`, docID)
	return err
}

func (s *PostgresStore) SaveEmbeddings(ctx context.Context, embs []Embedding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, emb := range embs {
		if len(emb.Vector) != s.dim {
			return fmt.Errorf("embedding for chunk %s has %d dims, want %d", emb.ChunkID, len(emb.Vector), s.dim)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO embeddings(chunk_id, vector, model)
			VALUES($1,$2::vector,$3)
			ON CONFLICT (chunk_id) DO UPDATE SET vector=excluded.vector, model=excluded.model`,
			emb.ChunkID, vectorToString(emb.Vector), emb.Model)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) TopK(ctx context.Context, caseID uuid.UUID, vector embeddings.Vector, k int) ([]SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			c.id,
			c.document_id,
			c.ord,
			c.text,
			c.token_count,
			1 - (e.vector <=> $1::vector) AS similarity
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		JOIN documents d ON d.id = c.document_id
		WHERE d.case_id = $2 AND d.status = ANY($4)
		ORDER BY e.vector <=> $1::vector
		LIMIT $3
	`, vectorToString(vector), caseID, k, pq.Array(searchableStatuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Chunk.ID, &r.Chunk.DocumentID, &r.Chunk.Index, &r.Chunk.Text, &r.Chunk.TokenCount, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Chunks of failed documents never reach the model.
var searchableStatuses = []string{string(StatusProcessing), string(StatusReady)}

// vectorToString converts a Vector ([]float32) to pgvector array format.
// Format: "[0.1,0.2,0.3,...]"
func vectorToString(v embeddings.Vector) string {
	if len(v) == 0 {
		return "[]"
	}
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
