package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	// t.Setenv with an empty value would override envDefault, so only unset
	// variables are exercised here.
	cfg := Load()

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"StoreProvider", cfg.StoreProvider, "postgres"},
		{"QueueProvider", cfg.QueueProvider, "nats"},
		{"CacheProvider", cfg.CacheProvider, "redis"},
		{"EmbeddingDim", cfg.EmbeddingDim, 1536},
		{"TopK", cfg.TopK, 3},
		{"ChunkSize", cfg.ChunkSize, 1000},
		{"ChunkOverlap", cfg.ChunkOverlap, 200},
		{"ClientTimeout", cfg.ClientTimeout, 60 * time.Second},
		{"SessionTTL", cfg.SessionTTL, 30 * time.Minute},
		{"UIPort", cfg.UIPort, 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("API_URL", "http://assistant:8000")
	t.Setenv("CLIENT_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://assistant:8000", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.ClientTimeout)
}

func TestLoadProviderOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("EMBEDDING_PROVIDER", "ollama")
	t.Setenv("STORE_PROVIDER", "memory")

	cfg := Load()

	assert.Equal(t, "ollama", cfg.LLMProvider)
	assert.Equal(t, "ollama", cfg.EmbeddingProvider)
	assert.Equal(t, "memory", cfg.StoreProvider)
}
