package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"legal-assistant/internal/app"
	"legal-assistant/internal/cache"
	"legal-assistant/internal/httputil"
	"legal-assistant/internal/llm"
	"legal-assistant/internal/pdftext"
	"legal-assistant/internal/queue"
	"legal-assistant/internal/store"
)

const defaultTopK = 3

// errEmbed marks retrieval failures caused by the embedding provider.
var errEmbed = errors.New("embedding failed")

type createCaseRequest struct {
	CaseName string `json:"case_name" validate:"required,max=200"`
}

type askRequest struct {
	CaseName string `json:"case_name" validate:"max=200"`
	Query    string `json:"query" validate:"required,max=4000"`
}

type generalAskRequest struct {
	Query string `json:"query" validate:"required,max=4000"`
}

type counterRequest struct {
	CaseName     string `json:"case_name" validate:"required,max=200"`
	OpponentText string `json:"opponent_text" validate:"required,max=8000"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Cache.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := httputil.ListenAndServe(ctx, deps.Log, srv, "api"); err != nil {
		deps.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log)
	r.Post("/cases/create", createCaseHandler(deps))
	r.Get("/cases", listCasesHandler(deps))
	r.Post("/cases/{name}/documents", uploadHandler(deps))
	r.Post("/ask", askHandler(deps))
	r.Post("/general/ask", generalAskHandler(deps))
	r.Post("/counter", counterHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}

// decode reads a JSON body into v and validates it, writing the 400 itself.
func decode(log *slog.Logger, w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.Fail(log, w, "invalid payload", err, http.StatusBadRequest)
		return false
	}
	if err := httputil.Validator.Struct(v); err != nil {
		httputil.ValidationError(log, w, err)
		return false
	}
	return true
}

func createCaseHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCaseRequest
		if !decode(deps.Log, w, r, &req) {
			return
		}
		c, err := deps.Store.CreateCase(r.Context(), req.CaseName)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to create case", err, http.StatusInternalServerError)
			return
		}
		deps.Log.Info("case created", "case_name", c.Name, "case_id", c.ID)
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"message":     fmt.Sprintf("Case '%s' created", c.Name),
			"active_case": c.Name,
		})
	}
}

func listCasesHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cases, err := deps.Store.ListCases(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list cases", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"cases": store.CaseNames(cases)})
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		c, ok := lookupCase(deps, w, r, chi.URLParam(r, "name"))
		if !ok {
			return
		}

		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		if !allowedUpload(header.Filename, header.Header.Get("Content-Type")) {
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF and TXT allowed)", nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		text, err := pdftext.Extract(header.Filename, content)
		if err != nil {
			httputil.Fail(deps.Log, w, "could not extract text from file", err, http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(text) == "" {
			httputil.Fail(deps.Log, w, "file contains no text", nil, http.StatusBadRequest)
			return
		}

		doc, err := deps.Store.CreateDocument(ctx, c.ID, header.Filename)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist document", err, http.StatusInternalServerError)
			return
		}

		body, err := json.Marshal(queue.IngestPayload{
			DocumentID: doc.ID,
			CaseID:     c.ID,
			CaseName:   c.Name,
			Filename:   header.Filename,
			Content:    text,
		})
		if err != nil {
			fail(deps, ctx, w, "marshal payload failed", err, doc.ID, http.StatusInternalServerError)
			return
		}
		task := queue.Task{ID: uuid.New(), Type: queue.TaskTypeIngest, Payload: body, MaxAttempts: 5}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			fail(deps, ctx, w, "failed to enqueue document; please retry", err, doc.ID, http.StatusInternalServerError)
			return
		}

		deps.Log.Info("document queued", "case_name", c.Name, "document_id", doc.ID, "filename", header.Filename)
		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"document_id": doc.ID.String(),
			"status":      doc.Status,
		})
	}
}

// allowedUpload accepts PDF and TXT files. A missing Content-Type is
// inferred from the extension.
func allowedUpload(filename, contentType string) bool {
	want := pdftext.ContentType(filename)
	if want == "" {
		return false
	}
	if contentType == "" || contentType == "application/octet-stream" {
		return true
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mediaType) == want
}

// fail marks the document failed before reporting the error.
func fail(deps app.Deps, ctx context.Context, w http.ResponseWriter, message string, err error, docID uuid.UUID, status int) {
	log := deps.Log.With("document_id", docID)
	if docID != uuid.Nil {
		if upErr := deps.Store.UpdateDocumentStatus(ctx, docID, store.StatusFailed); upErr != nil {
			log.Error("failed to mark document failed", "err", upErr)
		}
	}
	httputil.Fail(log, w, message, err, status)
}

func askHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if !decode(deps.Log, w, r, &req) {
			return
		}
		ctx := r.Context()

		var caseID uuid.UUID
		if req.CaseName != "" {
			c, ok := lookupCase(deps, w, r, req.CaseName)
			if !ok {
				return
			}
			caseID = c.ID
		}

		key := cache.Key(req.CaseName, req.Query)
		if cached, err := deps.Cache.GetAnswer(ctx, key); err != nil {
			deps.Log.Warn("cache lookup failed", "err", err)
		} else if cached != nil {
			deps.Log.Info("cache hit", "case_name", req.CaseName)
			httputil.WriteJSON(w, http.StatusOK, map[string]any{
				"query":  req.Query,
				"answer": cached.Answer,
				"cached": true,
			})
			return
		}

		var contextText string
		if caseID != uuid.Nil {
			var err error
			contextText, err = retrieveContext(ctx, deps, caseID, req.Query)
			if err != nil {
				httputil.Fail(deps.Log, w, "retrieval failed", err, retrievalStatus(err))
				return
			}
		}

		answer, err := deps.LLM.Answer(ctx, req.Query, contextText)
		if err != nil {
			httputil.Fail(deps.Log, w, "llm failed", err, http.StatusBadGateway)
			return
		}

		ttl := time.Duration(deps.Config.CacheTTL) * time.Second
		if err := deps.Cache.SetAnswer(ctx, key, &cache.Answer{Query: req.Query, Answer: answer}, ttl); err != nil {
			deps.Log.Warn("failed to cache answer", "err", err)
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"query":  req.Query,
			"answer": answer,
			"cached": false,
		})
	}
}

func generalAskHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generalAskRequest
		if !decode(deps.Log, w, r, &req) {
			return
		}
		answer, err := deps.LLM.Answer(r.Context(), req.Query, "")
		if err != nil {
			httputil.Fail(deps.Log, w, "llm failed", err, http.StatusBadGateway)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"query":  req.Query,
			"answer": answer,
		})
	}
}

func counterHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req counterRequest
		if !decode(deps.Log, w, r, &req) {
			return
		}
		ctx := r.Context()

		c, ok := lookupCase(deps, w, r, req.CaseName)
		if !ok {
			return
		}
		contextText, err := retrieveContext(ctx, deps, c.ID, llm.CounterQuestion(req.OpponentText))
		if err != nil {
			httputil.Fail(deps.Log, w, "retrieval failed", err, retrievalStatus(err))
			return
		}
		suggestion, err := deps.LLM.Counter(ctx, req.OpponentText, contextText)
		if err != nil {
			httputil.Fail(deps.Log, w, "llm failed", err, http.StatusBadGateway)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"opponent":           req.OpponentText,
			"suggested_response": suggestion,
		})
	}
}

// lookupCase resolves name, answering 404 for unknown cases.
func lookupCase(deps app.Deps, w http.ResponseWriter, r *http.Request, name string) (store.Case, bool) {
	c, err := deps.Store.GetCase(r.Context(), name)
	switch {
	case errors.Is(err, store.ErrCaseNotFound):
		httputil.Fail(deps.Log, w, fmt.Sprintf("case '%s' not found", name), err, http.StatusNotFound)
		return store.Case{}, false
	case err != nil:
		httputil.Fail(deps.Log, w, "failed to load case", err, http.StatusInternalServerError)
		return store.Case{}, false
	}
	return c, true
}

// retrieveContext embeds text and joins the case's closest chunks with blank lines.
func retrieveContext(ctx context.Context, deps app.Deps, caseID uuid.UUID, text string) (string, error) {
	vec, err := deps.Embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errEmbed, err)
	}
	k := deps.Config.TopK
	if k <= 0 {
		k = defaultTopK
	}
	results, err := deps.Store.TopK(ctx, caseID, vec, k)
	if err != nil {
		return "", fmt.Errorf("search case: %w", err)
	}
	texts := make([]string, 0, len(results))
	for _, res := range results {
		texts = append(texts, res.Chunk.Text)
	}
	return strings.Join(texts, "\n\n"), nil
}

// retrievalStatus is 502 when the embedding provider failed and 500 otherwise.
func retrievalStatus(err error) int {
	if errors.Is(err, errEmbed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
