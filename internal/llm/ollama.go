package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaClient generates answers with a model served by a local Ollama daemon.
type OllamaClient struct {
	model  string
	client *api.Client
}

func NewOllamaClient(baseURL, model string, httpClient *http.Client) (*OllamaClient, error) {
	if model == "" {
		model = "llama2"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OllamaClient{model: model, client: api.NewClient(u, httpClient)}, nil
}

func (c *OllamaClient) Complete(ctx context.Context, system, user string) (string, error) {
	stream := false
	var out strings.Builder
	err := c.client.Generate(ctx, &api.GenerateRequest{
		Model:   c.model,
		System:  system,
		Prompt:  user,
		Stream:  &stream,
		Options: map[string]any{"temperature": defaultChatTemperature},
	}, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return out.String(), nil
}
