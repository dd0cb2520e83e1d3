package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"legal-assistant/internal/cache"
	"legal-assistant/internal/client"
	"legal-assistant/internal/config"
	"legal-assistant/internal/embeddings"
	"legal-assistant/internal/llm"
	"legal-assistant/internal/logger"
	"legal-assistant/internal/queue"
	"legal-assistant/internal/store"
)

// Deps bundles the backend dependencies shared by the api and the indexer.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Queue    queue.Queue
	Cache    cache.Cache
	Embedder embeddings.Embedder
	LLM      llm.Client
}

// ClientDeps bundles what the ui and the cli need to talk to the api.
type ClientDeps struct {
	Config config.Config
	Log    *slog.Logger
	API    *client.Client
}

// Build loads env, config, and every component the api serves from.
func Build(ctx context.Context) (Deps, error) {
	return build(ctx, true)
}

// BuildIndexer is Build without an LLM; the indexer only embeds.
func BuildIndexer(ctx context.Context) (Deps, error) {
	return build(ctx, false)
}

// BuildClient loads env and config and returns an api client honoring
// CLIENT_TIMEOUT. Logs go to logOut.
func BuildClient(logOut io.Writer) (ClientDeps, error) {
	if err := loadEnv(); err != nil {
		return ClientDeps{}, err
	}
	cfg := config.Load()
	log := logger.NewWithWriter(cfg.LogLevel, logOut)
	if cfg.APIURL == "" {
		return ClientDeps{}, errors.New("API_URL is required")
	}
	api := client.New(cfg.APIURL, &http.Client{Timeout: cfg.ClientTimeout})
	return ClientDeps{Config: cfg, Log: log, API: api}, nil
}

func build(ctx context.Context, withLLM bool) (Deps, error) {
	if err := loadEnv(); err != nil {
		return Deps{}, err
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	// Resolved here so embeddings are stamped with the model actually used.
	cfg.LLMModel = modelFor(cfg.LLMModel, cfg.LLMProvider, defaultLLMModels)
	cfg.EmbeddingModel = modelFor(cfg.EmbeddingModel, cfg.EmbeddingProvider, defaultEmbeddingModels)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	deps := Deps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Queue:    q,
		Cache:    buildCache(cfg, log),
		Embedder: embedder,
	}
	if withLLM {
		deps.LLM, err = buildLLM(ctx, cfg, log)
		if err != nil {
			return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
		}
	}
	return deps, nil
}

// loadEnv reads .env when present; a missing file is not an error.
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL, cfg.EmbeddingDim)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store", "embedding_dim", cfg.EmbeddingDim)
		return db, nil
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: postgres, memory)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL, nats.Name("legal-assistant"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

// buildCache never fails: an unreachable Redis degrades to no caching.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("redis unavailable, answers will not be cached", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNoOpCache()
		}
		log.Info("using Redis answer cache", "addr", cfg.RedisAddr)
		return c
	case "none", "":
		return cache.NewNoOpCache()
	default:
		log.Warn("unknown CACHE_PROVIDER, caching disabled", "provider", cfg.CacheProvider)
		return cache.NewNoOpCache()
	}
}

// Model defaults per provider, used when LLM_MODEL or EMBEDDING_MODEL is unset.
var (
	defaultLLMModels = map[string]string{
		"openai": string(openai.ChatModelGPT4oMini),
		"ollama": "llama2",
		"gemini": "gemini-2.5-flash",
	}
	defaultEmbeddingModels = map[string]string{
		"openai": string(openai.EmbeddingModelTextEmbedding3Small),
		"ollama": "nomic-embed-text",
	}
)

func modelFor(model, provider string, defaults map[string]string) string {
	if model != "" {
		return model
	}
	return defaults[provider]
}

func buildLLM(ctx context.Context, cfg config.Config, log *slog.Logger) (llm.Client, error) {
	var (
		completer llm.Completer
		err       error
	)
	model := modelFor(cfg.LLMModel, cfg.LLMProvider, defaultLLMModels)
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		completer, err = llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, openai.ChatModel(model))
	case "ollama":
		completer, err = llm.NewOllamaClient(cfg.OllamaURL, model, nil)
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
		completer, err = llm.NewGeminiClient(ctx, cfg.GeminiKey, model)
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: openai, ollama, gemini)", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s client: %w", cfg.LLMProvider, err)
	}
	log.Info("using LLM", "provider", cfg.LLMProvider, "model", model)
	return llm.NewLegal(completer), nil
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	var (
		embedder embeddings.Embedder
		err      error
	)
	model := modelFor(cfg.EmbeddingModel, cfg.EmbeddingProvider, defaultEmbeddingModels)
	switch cfg.EmbeddingProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
		embedder, err = embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, cfg.OpenAIBaseURL, openai.EmbeddingModel(model))
	case "ollama":
		embedder, err = embeddings.NewOllamaEmbedder(cfg.OllamaURL, model, nil)
	default:
		return nil, fmt.Errorf("invalid EMBEDDING_PROVIDER: %s (valid options: openai, ollama)", cfg.EmbeddingProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s embedder: %w", cfg.EmbeddingProvider, err)
	}
	log.Info("using embedder", "provider", cfg.EmbeddingProvider, "model", model)
	return embedder, nil
}
