package queue

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockQueue is a testify mock that also keeps every task passed to Enqueue,
// successful or not, for assertions on payloads.
type MockQueue struct {
	mock.Mock

	mu    sync.Mutex
	tasks []Task
}

func (m *MockQueue) Enqueue(ctx context.Context, task Task) error {
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()
	return m.Called(ctx, task).Error(0)
}

func (m *MockQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	return m.Called(ctx, taskType, handler).Error(0)
}

// IngestPayloads decodes the payload of every ingest task enqueued so far.
func (m *MockQueue) IngestPayloads() ([]IngestPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []IngestPayload
	for _, t := range m.tasks {
		if t.Type != TaskTypeIngest {
			continue
		}
		var p IngestPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
