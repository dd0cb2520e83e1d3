package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"legal-assistant/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

const (
	TaskTypeIngest TaskType = "ingest"
)

// Task represents a unit of work passed from the api to the indexer.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Type        TaskType  `json:"type"`
	Payload     []byte    `json:"payload"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	NotBefore   time.Time `json:"not_before"`
}

// IngestPayload asks the indexer to chunk and embed an extracted document.
type IngestPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	CaseID     uuid.UUID `json:"case_id"`
	CaseName   string    `json:"case_name"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
}

type Handler func(context.Context, Task) error

// Queue exposes a minimal contract to enqueue and consume tasks.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
}

// EnqueueWithRetry attempts to enqueue with retries and exponential backoff.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		err := q.Enqueue(ctx, task)
		if err == nil {
			return nil
		}
		if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base)):
		}
	}
	return nil
}
