package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultChatTimeout     = 60 * time.Second
	defaultChatTemperature = 0.2
)

// OpenAIClient completes prompts through the Chat Completions API of OpenAI
// or any compatible endpoint.
type OpenAIClient struct {
	model  openai.ChatModel
	client openai.Client
}

// NewOpenAIClient targets api.openai.com unless baseURL is set.
func NewOpenAIClient(apiKey, baseURL string, model openai.ChatModel) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{model: model, client: openai.NewClient(opts...)}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(defaultChatTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
