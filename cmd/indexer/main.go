package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"legal-assistant/internal/app"
	"legal-assistant/internal/chunker"
	"legal-assistant/internal/httputil"
	"legal-assistant/internal/pdftext"
	"legal-assistant/internal/queue"
	"legal-assistant/internal/store"
	"legal-assistant/internal/watcher"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.BuildIndexer(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Cache.Close()
	deps.Log.Info("indexer starting")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeIngest, taskHandler(deps))
	})

	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps.Log, deps.Config.Port, "indexer")
	})

	if dir := deps.Config.InboxDir; dir != "" {
		w := watcher.New(dir,
			func(ctx context.Context, caseName, path string) error {
				return ingestFile(ctx, deps, caseName, path)
			},
			func(ctx context.Context, caseName, path string) error {
				return removeFile(ctx, deps, caseName, path)
			},
			deps.Log)
		g.Go(func() error {
			if err := w.Scan(ctx); err != nil {
				return err
			}
			return w.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		deps.Log.Error("indexer stopped", "err", err)
		os.Exit(1)
	}
}

func taskHandler(deps app.Deps) queue.Handler {
	return func(ctx context.Context, task queue.Task) error {
		var payload queue.IngestPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("decode ingest payload: %w", err)
		}
		return handleIngest(ctx, deps, payload)
	}
}

// handleIngest indexes one document and marks it ready. Any failure marks it
// failed and is returned so the queue can retry.
func handleIngest(ctx context.Context, deps app.Deps, payload queue.IngestPayload) error {
	log := deps.Log.With("document_id", payload.DocumentID, "case_name", payload.CaseName)
	if err := indexDocument(ctx, deps, payload); err != nil {
		if upErr := deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusFailed); upErr != nil {
			log.Error("failed to mark document failed", "err", upErr)
		}
		return err
	}
	if err := deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusReady); err != nil {
		return err
	}
	// Answers given before this document existed are stale.
	if err := deps.Cache.InvalidateCase(ctx, payload.CaseName); err != nil {
		log.Warn("failed to invalidate cached answers", "err", err)
	}
	log.Info("document indexed", "filename", payload.Filename)
	return nil
}

// indexDocument embeds before writing anything, then replaces the document's
// chunks. Chunks left by an earlier attempt are cleared first, and chunks
// whose embeddings could not be saved are removed again.
func indexDocument(ctx context.Context, deps app.Deps, payload queue.IngestPayload) error {
	chunks, err := chunker.ChunkText(payload.Content, chunker.Options{
		ChunkSize: deps.Config.ChunkSize,
		Overlap:   deps.Config.ChunkOverlap,
	})
	if err != nil {
		return fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("document %s has no text", payload.Filename)
	}

	texts := make([]string, len(chunks))
	storeChunks := make([]store.Chunk, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
		storeChunks[i] = store.Chunk{Index: c.Index, Text: c.Text, TokenCount: c.TokenCount}
	}
	vectors, err := deps.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := deps.Store.DeleteChunks(ctx, payload.DocumentID); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	saved, err := deps.Store.SaveChunks(ctx, payload.DocumentID, storeChunks)
	if err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	embs := make([]store.Embedding, len(saved))
	for i, c := range saved {
		embs[i] = store.Embedding{ChunkID: c.ID, Vector: vectors[i], Model: deps.Config.EmbeddingModel}
	}
	if err := deps.Store.SaveEmbeddings(ctx, embs); err != nil {
		if delErr := deps.Store.DeleteChunks(ctx, payload.DocumentID); delErr != nil {
			deps.Log.Error("failed to remove chunks without embeddings", "document_id", payload.DocumentID, "err", delErr)
		}
		return fmt.Errorf("save embeddings: %w", err)
	}
	return nil
}

// ingestFile indexes an inbox file, creating its case on demand and
// replacing any earlier document with the same name.
func ingestFile(ctx context.Context, deps app.Deps, caseName, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	filename := filepath.Base(path)
	text, err := pdftext.Extract(filename, content)
	if err != nil {
		return fmt.Errorf("extract %s: %w", filename, err)
	}

	c, err := deps.Store.CreateCase(ctx, caseName)
	if err != nil {
		return fmt.Errorf("create case %s: %w", caseName, err)
	}
	removed, err := deps.Store.DeleteDocuments(ctx, c.ID, filename)
	if err != nil {
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	if removed > 0 {
		deps.Log.Info("replacing previous version", "case_name", caseName, "filename", filename, "removed", removed)
	}
	doc, err := deps.Store.CreateDocument(ctx, c.ID, filename)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return handleIngest(ctx, deps, queue.IngestPayload{
		DocumentID: doc.ID,
		CaseID:     c.ID,
		CaseName:   c.Name,
		Filename:   filename,
		Content:    text,
	})
}

// removeFile drops every indexed document named after path from its case.
func removeFile(ctx context.Context, deps app.Deps, caseName, path string) error {
	c, err := deps.Store.GetCase(ctx, caseName)
	if errors.Is(err, store.ErrCaseNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get case %s: %w", caseName, err)
	}
	filename := filepath.Base(path)
	removed, err := deps.Store.DeleteDocuments(ctx, c.ID, filename)
	if err != nil {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	if removed == 0 {
		return nil
	}
	if err := deps.Cache.InvalidateCase(ctx, caseName); err != nil {
		deps.Log.Warn("failed to invalidate cached answers", "case_name", caseName, "err", err)
	}
	deps.Log.Info("document removed", "case_name", caseName, "filename", filename, "removed", removed)
	return nil
}
