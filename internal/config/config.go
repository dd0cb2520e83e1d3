package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration shared by the api, indexer, ui and cli binaries.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres"` // "postgres" or "memory" (local runs and tests)
	DBURL         string `env:"DB_URL"`
	EmbeddingDim  int    `env:"EMBEDDING_DIM" envDefault:"1536"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats"`
	QueueURL      string `env:"QUEUE_URL"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"redis"` // "redis" or "none"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds

	// LLM & Embeddings
	LLMProvider       string `env:"LLM_PROVIDER" envDefault:"openai"`       // "openai", "ollama" or "gemini"
	EmbeddingProvider string `env:"EMBEDDING_PROVIDER" envDefault:"openai"` // "openai" or "ollama"
	OpenAIKey         string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `env:"OPENAI_BASE_URL"` // OpenAI-compatible endpoint; empty means api.openai.com
	GeminiKey         string `env:"GEMINI_API_KEY"`
	OllamaURL         string `env:"OLLAMA_URL" envDefault:"http://127.0.0.1:11434"`
	LLMModel          string `env:"LLM_MODEL"`       // empty picks the provider's default
	EmbeddingModel    string `env:"EMBEDDING_MODEL"` // empty picks the provider's default

	// Retrieval
	TopK         int `env:"TOP_K" envDefault:"3"`
	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"200"`

	// Indexer
	InboxDir string `env:"INBOX_DIR"`

	// Client side (ui, legalctl)
	APIURL        string        `env:"API_URL" envDefault:"http://127.0.0.1:8000"`
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT" envDefault:"60s"`
	SessionTTL    time.Duration `env:"UI_SESSION_TTL" envDefault:"30m"`
	UIPort        int           `env:"UI_PORT" envDefault:"3000"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
