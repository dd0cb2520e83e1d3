package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"WARNING", slog.LevelWarn},
		{" Debug ", slog.LevelDebug},
		{"invalid", slog.LevelInfo}, // Defaults to info
		{"", slog.LevelInfo},        // Defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := NewWithWriter(tt.level, &bytes.Buffer{})
			require.NotNil(t, log)
			assert.True(t, log.Enabled(context.Background(), tt.expected))
			if tt.expected > slog.LevelDebug {
				assert.False(t, log.Enabled(context.Background(), tt.expected-4))
			}
		})
	}
}

func TestNewWithWriterEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info("case created", "case_name", "Smith v. Jones")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "case created", entry["msg"])
	assert.Equal(t, "Smith v. Jones", entry["case_name"])
}
