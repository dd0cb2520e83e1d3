package ui

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"legal-assistant/internal/httputil"
)

const sessionCookie = "legal_session"

//go:embed templates/index.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Server serves the page and the two form actions.
type Server struct {
	ctrl     *Controller
	sessions *Sessions
	log      *slog.Logger
}

func NewServer(ctrl *Controller, sessions *Sessions, log *slog.Logger) *Server {
	return &Server{ctrl: ctrl, sessions: sessions, log: log}
}

// Routes mounts the page handlers on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.index)
	r.Post("/cases/create", s.createCase)
	r.Post("/ask", s.ask)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	m := s.session(w, r)
	s.render(w, m.View(nil))
}

func (s *Server) createCase(w http.ResponseWriter, r *http.Request) {
	m := s.session(w, r)
	if !s.bind(w, r, m) {
		return
	}
	notice := s.ctrl.CreateCase(r.Context(), m)
	s.render(w, m.View(notice))
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	m := s.session(w, r)
	if !s.bind(w, r, m) {
		return
	}
	notice := s.ctrl.AskQuestion(r.Context(), m)
	v := m.View(notice)
	if wantsJSON(r) {
		httputil.WriteJSON(w, http.StatusOK, askResult{Answer: v.Answer, Notice: v.Notice})
		return
	}
	s.render(w, v)
}

// askResult is the fetch-driven reply to an ask: the session's answer as of
// this request settling, plus any error notice.
type askResult struct {
	Answer string  `json:"answer"`
	Notice *Notice `json:"notice,omitempty"`
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// bind copies the submitted inputs into the model. Both inputs live in one
// form, so either button submits both.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, m *Model) bool {
	if err := r.ParseForm(); err != nil {
		s.log.Warn("bad form submission", "err", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	if _, ok := r.PostForm["case_name"]; ok {
		m.SetCaseName(r.PostForm.Get("case_name"))
	}
	if _, ok := r.PostForm["query"]; ok {
		m.SetQuestion(r.PostForm.Get("query"))
	}
	return true
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) *Model {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	m, newID := s.sessions.Get(id)
	if newID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return m
}

func (s *Server) render(w http.ResponseWriter, v View) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, v); err != nil {
		s.log.Error("render page failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
