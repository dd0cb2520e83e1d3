package ui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-assistant/internal/client"
)

// fakeBackend stands in for the assistant API and counts the calls it sees.
type fakeBackend struct {
	creates atomic.Int32
	asks    atomic.Int32
	lastAsk atomic.Value
	answer  string
	fail    atomic.Bool
}

func (f *fakeBackend) handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/cases/create", func(w http.ResponseWriter, r *http.Request) {
		f.creates.Add(1)
		var req struct {
			CaseName string `json:"case_name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message":     "Case '" + req.CaseName + "' created",
			"active_case": req.CaseName,
		})
	})
	r.Post("/ask", func(w http.ResponseWriter, r *http.Request) {
		f.asks.Add(1)
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lastAsk.Store(req)
		if f.fail.Load() {
			http.Error(w, `{"error":"llm unavailable"}`, http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"query": req["query"], "answer": f.answer})
	})
	return r
}

type harness struct {
	backend *fakeBackend
	router  http.Handler
	cookie  *http.Cookie
}

func newHarness(t *testing.T, backend *fakeBackend) *harness {
	t.Helper()
	api := httptest.NewServer(backend.handler())
	t.Cleanup(api.Close)

	c := client.New(api.URL, &http.Client{Timeout: 5 * time.Second})
	srv := NewServer(NewController(c, discard()), NewSessions(time.Minute), discard())
	r := chi.NewRouter()
	srv.Routes(r)
	return &harness{backend: backend, router: r}
}

func (h *harness) do(t *testing.T, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			h.cookie = c
		}
	}
	return rec
}

func TestIndexInitialPage(t *testing.T) {
	h := newHarness(t, &fakeBackend{})

	rec := h.do(t, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Legal AI Assistant")
	assert.Contains(t, body, `placeholder="Enter case name"`)
	assert.Contains(t, body, `placeholder="Ask a legal question"`)
	assert.NotContains(t, body, `id="answer"`)
	assert.NotContains(t, body, `id="notice"`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.NotNil(t, h.cookie)
	assert.True(t, h.cookie.HttpOnly)
}

func TestCreateCaseShowsServerMessage(t *testing.T) {
	backend := &fakeBackend{}
	h := newHarness(t, backend)

	rec := h.do(t, http.MethodPost, "/cases/create", url.Values{"case_name": {"Smith v. Jones"}, "query": {""}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), backend.creates.Load())
	assert.Equal(t, int32(0), backend.asks.Load())
	body := rec.Body.String()
	assert.Contains(t, body, `<dialog id="notice" class="info">`)
	assert.NotContains(t, body, `<dialog open`)
	assert.Contains(t, body, `document.getElementById('notice').showModal()`)
	assert.Contains(t, body, "Case &#39;Smith v. Jones&#39; created")
	assert.NotContains(t, body, `id="answer"`)
}

func TestAskRendersAnswerPanel(t *testing.T) {
	backend := &fakeBackend{answer: "Consideration is something of value exchanged."}
	h := newHarness(t, backend)

	rec := h.do(t, http.MethodPost, "/ask", url.Values{"case_name": {"Smith v. Jones"}, "query": {"What is consideration?"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), backend.asks.Load())
	assert.Equal(t, map[string]string{"case_name": "Smith v. Jones", "query": "What is consideration?"}, backend.lastAsk.Load())
	body := rec.Body.String()
	assert.Contains(t, body, "💡 Answer:")
	assert.Contains(t, body, "Consideration is something of value exchanged.")
	assert.NotContains(t, body, `id="notice"`)
	assert.Contains(t, body, `value="What is consideration?"`)
}

func TestAskEmptyAnswerHidesPanel(t *testing.T) {
	h := newHarness(t, &fakeBackend{answer: ""})

	rec := h.do(t, http.MethodPost, "/ask", url.Values{"case_name": {""}, "query": {"hello"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `id="answer"`)
}

func TestAskFailureKeepsAnswerAndShowsError(t *testing.T) {
	backend := &fakeBackend{answer: "first answer"}
	h := newHarness(t, backend)

	h.do(t, http.MethodPost, "/ask", url.Values{"case_name": {"c"}, "query": {"q1"}})
	backend.fail.Store(true)
	rec := h.do(t, http.MethodPost, "/ask", url.Values{"case_name": {"c"}, "query": {"q2"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(2), backend.asks.Load())
	body := rec.Body.String()
	assert.Contains(t, body, `<dialog id="notice" class="error">`)
	assert.Contains(t, body, "llm unavailable")
	assert.Contains(t, body, "first answer")
}

func TestSessionStatePersistsAcrossRequests(t *testing.T) {
	h := newHarness(t, &fakeBackend{answer: "an answer"})

	h.do(t, http.MethodPost, "/ask", url.Values{"case_name": {"Smith v. Jones"}, "query": {"q"}})
	rec := h.do(t, http.MethodGet, "/", nil)

	body := rec.Body.String()
	assert.Contains(t, body, `value="Smith v. Jones"`)
	assert.Contains(t, body, "an answer")
}

func TestAnswerIsEscaped(t *testing.T) {
	h := newHarness(t, &fakeBackend{answer: "<script>alert(1)</script>"})

	rec := h.do(t, http.MethodPost, "/ask", url.Values{"query": {"q"}})

	body := rec.Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

// gatedBackend holds each ask until its query is released.
type gatedBackend struct {
	arrived chan string
	release map[string]chan struct{}
}

func (g *gatedBackend) handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/ask", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		g.arrived <- req["query"]
		<-g.release[req["query"]]
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"query": req["query"], "answer": "answer to " + req["query"]})
	})
	return r
}

func askRequest(cookie *http.Cookie, query string) *http.Request {
	form := url.Values{"case_name": {"Smith v. Jones"}, "query": {query}}
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.AddCookie(cookie)
	return req
}

func TestOverlappingFetchAsksShowLastSettledAnswer(t *testing.T) {
	g := &gatedBackend{
		arrived: make(chan string, 2),
		release: map[string]chan struct{}{"first": make(chan struct{}), "second": make(chan struct{})},
	}
	api := httptest.NewServer(g.handler())
	defer api.Close()

	c := client.New(api.URL, &http.Client{Timeout: 5 * time.Second})
	srv := NewServer(NewController(c, discard()), NewSessions(time.Minute), discard())
	router := chi.NewRouter()
	srv.Routes(router)

	h := &harness{router: router}
	h.do(t, http.MethodGet, "/", nil)
	require.NotNil(t, h.cookie)

	settled := make(chan *httptest.ResponseRecorder, 2)
	send := func(query string) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, askRequest(h.cookie, query))
		settled <- rec
	}
	go send("first")
	require.Equal(t, "first", <-g.arrived)
	go send("second")
	require.Equal(t, "second", <-g.arrived)

	// The browser applies each reply to the panel in the order they arrive.
	var shown string
	apply := func(rec *httptest.ResponseRecorder) askResult {
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var res askResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		shown = res.Answer
		return res
	}

	close(g.release["second"])
	res := apply(<-settled)
	assert.Equal(t, "answer to second", res.Answer)
	assert.Nil(t, res.Notice)

	close(g.release["first"])
	apply(<-settled)

	assert.Equal(t, "answer to first", shown)
	page := h.do(t, http.MethodGet, "/", nil)
	assert.Contains(t, page.Body.String(), "answer to first")
}

func TestAskFetchFailureReturnsNotice(t *testing.T) {
	backend := &fakeBackend{answer: "kept"}
	h := newHarness(t, backend)
	h.do(t, http.MethodPost, "/ask", url.Values{"query": {"q1"}})
	backend.fail.Store(true)

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, askRequest(h.cookie, "q2"))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	var res askResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "kept", res.Answer)
	require.NotNil(t, res.Notice)
	assert.Equal(t, NoticeError, res.Notice.Kind)
	assert.Contains(t, res.Notice.Text, "llm unavailable")
}

func TestPageSendsAsksWithFetch(t *testing.T) {
	h := newHarness(t, &fakeBackend{})

	body := h.do(t, http.MethodGet, "/", nil).Body.String()

	assert.Contains(t, body, `id="page"`)
	assert.Contains(t, body, "fetch(")
	assert.Contains(t, body, `id="ask-notice"`)
}
