package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/customHttpClient"
	"github.com/akolanti/intelliagent/internal/data/redisStore"
	"github.com/akolanti/intelliagent/internal/data/store"
	"github.com/akolanti/intelliagent/internal/domain/pipelineError"
	"github.com/akolanti/intelliagent/internal/rag"
	"github.com/akolanti/intelliagent/internal/rag/embedding"
	"github.com/akolanti/intelliagent/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/intelliagent/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/intelliagent/internal/rag/ingest"
	"github.com/akolanti/intelliagent/internal/rag/llm"
	"github.com/akolanti/intelliagent/internal/rag/llm/gemini"
	"github.com/akolanti/intelliagent/internal/rag/llm/openaiLLM"
	"github.com/akolanti/intelliagent/internal/rag/loader"
	"github.com/akolanti/intelliagent/internal/rag/ocr"
	"github.com/akolanti/intelliagent/internal/rag/splitter"
	"github.com/akolanti/intelliagent/internal/rag/validation"
	"github.com/akolanti/intelliagent/internal/rag/vectorDB"
	"github.com/akolanti/intelliagent/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/intelliagent/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/intelliagent/pkg/logger_i"
)

const startupCheckTimeout = 30 * time.Second

// App is the wired pipeline shared by the HTTP server, the MCP server and the CLI.
type App struct {
	Service  rag.Service
	Settings *config.Settings

	closers []func()
	logger  *logger_i.Logger
}

// Build connects every external service. A wrong embedding dimension is fatal here so
// nothing is indexed into a collection that cannot be queried. Redis is optional and
// falls back to process local stores.
func Build(ctx context.Context, settings *config.Settings) (*App, error) {
	a := &App{Settings: settings, logger: logger_i.NewLogger("app")}
	httpClient := customHttpClient.New()

	locker, documents := a.coordination(ctx, settings.Redis)

	embedder, err := newEmbedder(ctx, settings.Embedding, httpClient)
	if err != nil {
		a.Close()
		return nil, err
	}
	checkCtx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	err = embedding.VerifyDimension(checkCtx, embedder, settings.Embedding.Dimension)
	cancel()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("embedding model check failed: %w", err)
	}
	if settings.Embedding.CacheSize > 0 {
		embedder = embedding.NewCachedEmbedder(embedder, settings.Embedding.CacheSize)
	}

	index, cache, err := a.vectorBackend(ctx, settings)
	if err != nil {
		a.Close()
		return nil, err
	}
	if !settings.RAG.SemanticCache {
		cache = nil
	}
	vectors := vectorDB.NewClient(index, cache, embedder, vectorDB.Options{
		Alias:       settings.Vector.Collection,
		BatchSize:   settings.Vector.BatchSize,
		Concurrency: settings.Embedding.Concurrency,
	})

	answerModel, err := newProvider(ctx, settings.LLM, settings.LLM.Model, httpClient)
	if err != nil {
		a.Close()
		return nil, err
	}

	var validator rag.AnswerValidator
	if settings.RAG.ValidateAnswers {
		validationModel, err := newProvider(ctx, settings.LLM, settings.LLM.ValidationModel, httpClient)
		if err != nil {
			a.Close()
			return nil, err
		}
		validator = validation.New(validationModel, settings.LLM.ValidationTemperature)
	}

	docLoader := loader.New(ocr.NewTesseract(settings.OCR), settings.RAG.MinDigitalTextLength)
	indexer := ingest.New(docLoader, splitter.New(settings.RAG.ChunkSize, settings.RAG.ChunkOverlap), vectors)

	a.Service = rag.NewService(rag.Dependencies{
		Indexer:   indexer,
		Store:     vectors,
		LLM:       answerModel,
		Validator: validator,
		Locker:    locker,
		Documents: documents,
	}, rag.Options{
		TopK:           settings.RAG.TopK,
		Temperature:    settings.LLM.Temperature,
		SemanticCache:  settings.RAG.SemanticCache,
		RequestTimeout: settings.RAG.RequestTimeout,
		LockKey:        "lock:collection:" + settings.Vector.Collection,
	})

	a.logger.Info("Pipeline ready",
		"vectorBackend", settings.Vector.Backend,
		"embedding", settings.Embedding.Provider,
		"llm", settings.LLM.Provider,
		"validation", settings.RAG.ValidateAnswers)
	return a, nil
}

// Close waits for background cache writes and releases connections in reverse order.
func (a *App) Close() {
	if a.Service != nil {
		a.Service.Drain()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) coordination(ctx context.Context, settings config.RedisSettings) (store.Locker, store.DocumentStore) {
	if !settings.Enabled {
		return store.NewInMemoryLocker(), store.NewInMemoryDocumentStore()
	}
	rs, err := redisStore.New(ctx, settings)
	if err != nil {
		a.logger.Error("Redis stores are offline, using in-memory lock and registry", "error", err)
		return store.NewInMemoryLocker(), store.NewInMemoryDocumentStore()
	}
	a.closers = append(a.closers, rs.Close)
	return store.NewRedisLocker(rs, settings.LockTTL), store.NewRedisDocumentStore(rs)
}

func (a *App) vectorBackend(ctx context.Context, settings *config.Settings) (vectorDB.Index, vectorDB.AnswerCache, error) {
	switch settings.Vector.Backend {
	case config.VectorBackendMemory:
		db := memoryDB.New(settings.RAG.CacheSimilarityCutoff)
		return db, db, nil
	case config.VectorBackendQdrant:
		db, err := qdrantDB.New(ctx, settings.Vector, settings.Embedding.Dimension, settings.RAG.CacheSimilarityCutoff)
		if err != nil {
			return nil, nil, pipelineError.New(pipelineError.KindVectorStore, "connect vector store", err)
		}
		a.closers = append(a.closers, db.Close)
		return db, db, nil
	default:
		return nil, nil, pipelineError.New(pipelineError.KindConfiguration, "connect vector store",
			fmt.Errorf("unknown vector backend %q", settings.Vector.Backend))
	}
}

func newEmbedder(ctx context.Context, settings config.EmbeddingSettings, httpClient *http.Client) (embedding.Embedder, error) {
	switch settings.Provider {
	case config.EmbeddingProviderOpenAI:
		return openaiEmbedding.New(settings, httpClient), nil
	case config.EmbeddingProviderGemini:
		e, err := googleEmbedding.New(ctx, settings, httpClient)
		if err != nil {
			return nil, pipelineError.New(pipelineError.KindConfiguration, "create embedder", err)
		}
		return e, nil
	default:
		return nil, pipelineError.New(pipelineError.KindConfiguration, "create embedder",
			fmt.Errorf("unknown embedding provider %q", settings.Provider))
	}
}

func newProvider(ctx context.Context, settings config.LLMSettings, model string, httpClient *http.Client) (llm.Provider, error) {
	switch settings.Provider {
	case config.LLMProviderOpenAI:
		return openaiLLM.New(settings, model, httpClient), nil
	case config.LLMProviderGemini:
		p, err := gemini.New(ctx, settings, model, httpClient)
		if err != nil {
			return nil, pipelineError.New(pipelineError.KindConfiguration, "create llm", err)
		}
		return p, nil
	default:
		return nil, pipelineError.New(pipelineError.KindConfiguration, "create llm",
			fmt.Errorf("unknown llm provider %q", settings.Provider))
	}
}
