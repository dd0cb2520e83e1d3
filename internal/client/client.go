// Package client is the typed HTTP contract with the legal assistant API.
//
// Every call returns its decoded response or an error; nothing is retried.
// Non-2xx responses surface as *APIError so callers can tell server
// rejections from transport failures.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// maxErrorBody bounds how much of a failed response is kept in APIError.
const maxErrorBody = 4 << 10

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type CreateCaseRequest struct {
	CaseName string `json:"case_name"`
}

type CreateCaseResponse struct {
	Message    string `json:"message"`
	ActiveCase string `json:"active_case,omitempty"`
}

type AskRequest struct {
	CaseName string `json:"case_name"`
	Query    string `json:"query"`
}

type AskResponse struct {
	Query  string `json:"query,omitempty"`
	Answer string `json:"answer"`
	Cached bool   `json:"cached,omitempty"`
}

type GeneralAskRequest struct {
	Query string `json:"query"`
}

type CounterRequest struct {
	CaseName     string `json:"case_name"`
	OpponentText string `json:"opponent_text"`
}

type CounterResponse struct {
	Opponent          string `json:"opponent"`
	SuggestedResponse string `json:"suggested_response"`
}

type ListCasesResponse struct {
	Cases []string `json:"cases"`
}

type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

// StatusCode extracts the HTTP status from an *APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// CreateCase sends name as-is; an empty name is sent too.
func (c *Client) CreateCase(ctx context.Context, name string) (CreateCaseResponse, error) {
	var out CreateCaseResponse
	err := c.postJSON(ctx, "/cases/create", CreateCaseRequest{CaseName: name}, &out)
	return out, err
}

func (c *Client) Ask(ctx context.Context, caseName, query string) (AskResponse, error) {
	var out AskResponse
	err := c.postJSON(ctx, "/ask", AskRequest{CaseName: caseName, Query: query}, &out)
	return out, err
}

func (c *Client) AskGeneral(ctx context.Context, query string) (AskResponse, error) {
	var out AskResponse
	err := c.postJSON(ctx, "/general/ask", GeneralAskRequest{Query: query}, &out)
	return out, err
}

func (c *Client) Counter(ctx context.Context, caseName, opponentText string) (CounterResponse, error) {
	var out CounterResponse
	err := c.postJSON(ctx, "/counter", CounterRequest{CaseName: caseName, OpponentText: opponentText}, &out)
	return out, err
}

func (c *Client) ListCases(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cases", nil)
	if err != nil {
		return nil, err
	}
	var out ListCasesResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Cases, nil
}

// UploadDocument streams body as a multipart "file" part into caseName.
func (c *Client) UploadDocument(ctx context.Context, caseName, filename string, body io.Reader) (UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResponse{}, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return UploadResponse{}, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return UploadResponse{}, err
	}

	endpoint := c.baseURL + "/cases/" + url.PathEscape(caseName) + "/documents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return UploadResponse{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResponse
	err = c.do(req, &out)
	return out, err
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
