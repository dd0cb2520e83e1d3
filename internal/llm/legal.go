package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("llm: empty response")

const (
	contextSystemPrompt = `You are a helpful legal assistant. Your task is to provide an answer based ONLY on the provided legal context.
If the information is not present in the context, state that you cannot find a relevant answer.`

	generalSystemPrompt = `You are a helpful legal assistant for the Indian legal system. When asked about a number, prioritize its meaning as a legal section (e.g., Indian Penal Code) over any other meaning.`
)

// Legal builds the assistant's prompts on top of any Completer.
type Legal struct {
	completer Completer
}

func NewLegal(c Completer) *Legal {
	return &Legal{completer: c}
}

func (l *Legal) Answer(ctx context.Context, question, contextText string) (string, error) {
	system, user := answerPrompt(question, contextText)
	return l.complete(ctx, system, user)
}

func (l *Legal) Counter(ctx context.Context, opponentText, contextText string) (string, error) {
	question := CounterQuestion(opponentText)
	system, user := answerPrompt(question, contextText)
	return l.complete(ctx, system, user)
}

func (l *Legal) complete(ctx context.Context, system, user string) (string, error) {
	if l == nil || l.completer == nil {
		return "", fmt.Errorf("nil llm completer")
	}
	out, err := l.completer.Complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// CounterQuestion phrases an opponent's argument as a question for the model.
func CounterQuestion(opponentText string) string {
	return fmt.Sprintf("The opponent argued: %s. Suggest counter points using available legal context.", opponentText)
}

func answerPrompt(question, contextText string) (string, string) {
	if strings.TrimSpace(contextText) == "" {
		return generalSystemPrompt, fmt.Sprintf(
			"A lawyer asked a general legal question: %q\n\nAnswer the question concisely based on your general knowledge.",
			question)
	}
	return contextSystemPrompt, fmt.Sprintf(
		"Relevant context from legal documents:\n%s\n\nA lawyer asked: %q\n\nAnswer concisely, citing legal statutes, precedents, or arguments from the provided context if possible.",
		contextText, question)
}
