package config

import (
	"context"
	"time"
)

type contextKey string

const (
	TRACE_ID_KEY contextKey = "traceId"

	EnvPrefix         = "INTELLIAGENT"
	DefaultConfigName = "intelliagent"

	//server
	ServerListenAddr       = ":8000"
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 180 * time.Second //indexing a scanned pdf runs OCR inside the request
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	MaxUploadBytes         = 32 << 20 //32mb
	TempUploadDir          = "temporary_data"
	FrontendOrigin         = "http://localhost:5173"

	//outbound http
	MaxIdleConns        = 100
	MaxIdleConnsPerHost = 10
	IdleConnTimeout     = 90 * time.Second

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//vectorDB
	QdrantHost          = "localhost"
	QdrantGrpcPort      = 6334
	QdrantUseTLS        = false
	QdrantPoolSize      = 1 //2-5 is preferred for prod according to documentation
	CollectionName      = "intelliagent-collection"
	AnswerCacheName     = "intelliagent-answer-cache"
	UpsertBatchSize     = 100
	EmbedConcurrency    = 4
	VectorBackendQdrant = "qdrant"
	VectorBackendMemory = "memory"

	//embeddings - all-MiniLM-L6-v2 emits 384 floats, the collection is created with the same size
	EmbeddingDimension      = 384
	EmbeddingProviderOpenAI = "openai"
	EmbeddingProviderGemini = "gemini"
	OpenAIEmbeddingBaseURL  = "http://localhost:8080/v1"
	OpenAIEmbeddingModel    = "sentence-transformers/all-MiniLM-L6-v2"
	GoogleEmbeddingModel    = "gemini-embedding-001"
	EmbeddingCacheSize      = 1000

	//llm
	LLMProviderOpenAI     = "openai"
	LLMProviderGemini     = "gemini"
	GroqBaseURL           = "https://api.groq.com/openai/v1"
	AnswerModel           = "openai/gpt-oss-20b"
	AnswerTemperature     = 0.3
	ValidationModel       = "llama-3.1-8b-instant"
	ValidationTemperature = 0.0
	GeminiModelName       = "gemini-2.5-flash"

	//pipeline
	ChunkSize             = 1000
	ChunkOverlap          = 200
	RetrievalTopK         = 5
	MinDigitalTextLength  = 250 //below this a pdf is treated as scanned
	RequestTimeout        = 120 * time.Second
	CacheSimilarityCutoff = 0.97
	CacheWriteTimeout     = 10 * time.Second
	PageExtractTimeout    = 10 * time.Second

	//ocr
	PdftoppmPath   = "pdftoppm"
	TesseractPath  = "tesseract"
	OCRLanguage    = "eng"
	OCRDPI         = 300
	OCRPageTimeout = 60 * time.Second

	//redis
	RedisAddr        = "127.0.0.1:6379"
	RedisDB          = 0
	RedisDialTimeout = 3 * time.Second
	LockTTL          = 5 * time.Minute
	LockRetryEvery   = 200 * time.Millisecond
	DocumentKey      = "document:active"
)

// TraceID returns the request trace id or "" outside a traced request.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(TRACE_ID_KEY).(string)
	return id
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TRACE_ID_KEY, id)
}
