package ui

import (
	"context"
	"log/slog"

	"legal-assistant/internal/client"
)

// API is the part of the assistant API the page calls.
type API interface {
	CreateCase(ctx context.Context, name string) (client.CreateCaseResponse, error)
	Ask(ctx context.Context, caseName, query string) (client.AskResponse, error)
}

type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is a modal message the user has to dismiss.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

type Controller struct {
	api API
	log *slog.Logger
}

func NewController(api API, log *slog.Logger) *Controller {
	return &Controller{api: api, log: log}
}

// CreateCase sends the current case name, even when empty, and returns the
// server's confirmation as a notice. Failures become error notices; nothing
// is retried.
func (c *Controller) CreateCase(ctx context.Context, m *Model) *Notice {
	name := m.CaseName()
	resp, err := c.api.CreateCase(ctx, name)
	if err != nil {
		c.log.Error("create case failed", "case_name", name, "status", client.StatusCode(err), "err", err)
		return &Notice{Kind: NoticeError, Text: "Could not create case: " + err.Error()}
	}
	c.log.Info("case created", "case_name", name)
	return &Notice{Kind: NoticeInfo, Text: resp.Message}
}

// AskQuestion sends the current case name and question. On success the
// answer replaces the model's answer and no notice is returned; on failure
// the answer is left untouched.
func (c *Controller) AskQuestion(ctx context.Context, m *Model) *Notice {
	caseName, query := m.CaseName(), m.Question()
	resp, err := c.api.Ask(ctx, caseName, query)
	if err != nil {
		c.log.Error("ask failed", "case_name", caseName, "status", client.StatusCode(err), "err", err)
		return &Notice{Kind: NoticeError, Text: "Could not get an answer: " + err.Error()}
	}
	m.setAnswer(resp.Answer)
	return nil
}
