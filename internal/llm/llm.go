package llm

import "context"

// Client is the legal assistant's view of a language model.
type Client interface {
	// Answer responds to question. An empty contextText asks a general
	// legal question with no retrieved material.
	Answer(ctx context.Context, question, contextText string) (string, error)
	// Counter suggests counter points to an opposing argument.
	Counter(ctx context.Context, opponentText, contextText string) (string, error)
}

// Completer is a single system+user prompt completion against a provider.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
