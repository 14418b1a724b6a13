package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Settings struct {
	Server    ServerSettings    `mapstructure:"server"`
	Log       LogSettings       `mapstructure:"log"`
	Vector    VectorSettings    `mapstructure:"vector"`
	Embedding EmbeddingSettings `mapstructure:"embedding"`
	LLM       LLMSettings       `mapstructure:"llm"`
	RAG       RAGSettings       `mapstructure:"rag"`
	OCR       OCRSettings       `mapstructure:"ocr"`
	Redis     RedisSettings     `mapstructure:"redis"`
}

type ServerSettings struct {
	ListenAddr         string        `mapstructure:"listen_addr"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes     int64         `mapstructure:"max_upload_bytes"`
	TempDir            string        `mapstructure:"temp_dir"`
	CorsAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	APIToken           string        `mapstructure:"api_token"` //empty disables bearer auth
	RateLimitPerSecond float64       `mapstructure:"rate_limit_per_second"`
	RateLimitBurst     int           `mapstructure:"rate_limit_burst"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type VectorSettings struct {
	Backend    string `mapstructure:"backend"`
	Host       string `mapstructure:"host"`
	GrpcPort   int    `mapstructure:"grpc_port"`
	APIKey     string `mapstructure:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls"`
	PoolSize   uint   `mapstructure:"pool_size"`
	Collection string `mapstructure:"collection"`
	CacheName  string `mapstructure:"cache_collection"`
	BatchSize  int    `mapstructure:"batch_size"`
}

type EmbeddingSettings struct {
	Provider          string `mapstructure:"provider"`
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	Dimension         int    `mapstructure:"dimension"`
	RequestDimensions bool   `mapstructure:"request_dimensions"` //send "dimensions" to servers that truncate
	CacheSize         int    `mapstructure:"cache_size"`
	Concurrency       int    `mapstructure:"concurrency"`
}

type LLMSettings struct {
	Provider              string  `mapstructure:"provider"`
	BaseURL               string  `mapstructure:"base_url"`
	APIKey                string  `mapstructure:"api_key"`
	Model                 string  `mapstructure:"model"`
	Temperature           float64 `mapstructure:"temperature"`
	ValidationModel       string  `mapstructure:"validation_model"`
	ValidationTemperature float64 `mapstructure:"validation_temperature"`
}

type RAGSettings struct {
	ChunkSize             int           `mapstructure:"chunk_size"`
	ChunkOverlap          int           `mapstructure:"chunk_overlap"`
	TopK                  int           `mapstructure:"top_k"`
	MinDigitalTextLength  int           `mapstructure:"min_digital_text_length"`
	ValidateAnswers       bool          `mapstructure:"validate_answers"`
	SemanticCache         bool          `mapstructure:"semantic_cache"`
	CacheSimilarityCutoff float32       `mapstructure:"cache_similarity_cutoff"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
}

type OCRSettings struct {
	PdftoppmPath  string        `mapstructure:"pdftoppm_path"`
	TesseractPath string        `mapstructure:"tesseract_path"`
	Language      string        `mapstructure:"language"`
	DPI           int           `mapstructure:"dpi"`
	PageTimeout   time.Duration `mapstructure:"page_timeout"`
}

type RedisSettings struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// secrets and addresses that are commonly exported without the prefix
var envAliases = map[string][]string{
	"llm.api_key":       {"GROQ_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"},
	"embedding.api_key": {"EMBEDDING_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"},
	"vector.host":       {"QDRANT_HOST"},
	"vector.grpc_port":  {"QDRANT_PORT"},
	"vector.api_key":    {"QDRANT_API_KEY"},
	"redis.addr":        {"REDIS_ADDR"},
	"redis.password":    {"REDIS_PASSWORD"},
	"server.api_token":  {"AUTH_TOKEN"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ServerListenAddr)
	v.SetDefault("server.read_timeout", ReadTimeout)
	v.SetDefault("server.write_timeout", WriteTimeout)
	v.SetDefault("server.idle_timeout", IdleTimeout)
	v.SetDefault("server.shutdown_timeout", ShutdownContextTimeout)
	v.SetDefault("server.max_upload_bytes", MaxUploadBytes)
	v.SetDefault("server.temp_dir", TempUploadDir)
	v.SetDefault("server.cors_allowed_origins", []string{FrontendOrigin})
	v.SetDefault("server.api_token", "")
	v.SetDefault("server.rate_limit_per_second", RATE_LIMIT_PER_SECOND)
	v.SetDefault("server.rate_limit_burst", BURST_RATE_LIMIT_PER_SECOND)

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.json", false)

	v.SetDefault("vector.backend", VectorBackendQdrant)
	v.SetDefault("vector.host", QdrantHost)
	v.SetDefault("vector.grpc_port", QdrantGrpcPort)
	v.SetDefault("vector.api_key", "")
	v.SetDefault("vector.use_tls", QdrantUseTLS)
	v.SetDefault("vector.pool_size", QdrantPoolSize)
	v.SetDefault("vector.collection", CollectionName)
	v.SetDefault("vector.cache_collection", AnswerCacheName)
	v.SetDefault("vector.batch_size", UpsertBatchSize)

	v.SetDefault("embedding.provider", EmbeddingProviderOpenAI)
	v.SetDefault("embedding.base_url", OpenAIEmbeddingBaseURL)
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.model", OpenAIEmbeddingModel)
	v.SetDefault("embedding.dimension", EmbeddingDimension)
	v.SetDefault("embedding.request_dimensions", false)
	v.SetDefault("embedding.cache_size", EmbeddingCacheSize)
	v.SetDefault("embedding.concurrency", EmbedConcurrency)

	v.SetDefault("llm.provider", LLMProviderOpenAI)
	v.SetDefault("llm.base_url", GroqBaseURL)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", AnswerModel)
	v.SetDefault("llm.temperature", AnswerTemperature)
	v.SetDefault("llm.validation_model", ValidationModel)
	v.SetDefault("llm.validation_temperature", ValidationTemperature)

	v.SetDefault("rag.chunk_size", ChunkSize)
	v.SetDefault("rag.chunk_overlap", ChunkOverlap)
	v.SetDefault("rag.top_k", RetrievalTopK)
	v.SetDefault("rag.min_digital_text_length", MinDigitalTextLength)
	v.SetDefault("rag.validate_answers", true)
	v.SetDefault("rag.semantic_cache", true)
	v.SetDefault("rag.cache_similarity_cutoff", CacheSimilarityCutoff)
	v.SetDefault("rag.request_timeout", RequestTimeout)

	v.SetDefault("ocr.pdftoppm_path", PdftoppmPath)
	v.SetDefault("ocr.tesseract_path", TesseractPath)
	v.SetDefault("ocr.language", OCRLanguage)
	v.SetDefault("ocr.dpi", OCRDPI)
	v.SetDefault("ocr.page_timeout", OCRPageTimeout)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", RedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", RedisDB)
	v.SetDefault("redis.lock_ttl", LockTTL)
}

// Load reads defaults, an optional yaml file, a .env file and the environment, in
// increasing order of precedence. An empty path looks for ./intelliagent.yaml and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Settings, error) {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the built-in settings without touching files or the environment.
func Default() *Settings {
	v := viper.New()
	setDefaults(v)
	var s Settings
	// defaults are static, decoding them cannot fail
	_ = v.Unmarshal(&s)
	return &s
}

func (s *Settings) Validate() error {
	var errs []error
	if s.RAG.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("rag.chunk_size must be positive, got %d", s.RAG.ChunkSize))
	}
	if s.RAG.ChunkOverlap < 0 || s.RAG.ChunkOverlap >= s.RAG.ChunkSize {
		errs = append(errs, fmt.Errorf("rag.chunk_overlap must be in [0, chunk_size), got %d", s.RAG.ChunkOverlap))
	}
	if s.RAG.TopK <= 0 {
		errs = append(errs, fmt.Errorf("rag.top_k must be positive, got %d", s.RAG.TopK))
	}
	if s.Embedding.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("embedding.dimension must be positive, got %d", s.Embedding.Dimension))
	}
	if s.Vector.Collection == "" {
		errs = append(errs, errors.New("vector.collection is required"))
	}
	switch s.Vector.Backend {
	case VectorBackendQdrant, VectorBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown vector.backend %q", s.Vector.Backend))
	}
	switch s.Embedding.Provider {
	case EmbeddingProviderOpenAI, EmbeddingProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown embedding.provider %q", s.Embedding.Provider))
	}
	switch s.LLM.Provider {
	case LLMProviderOpenAI, LLMProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown llm.provider %q", s.LLM.Provider))
	}
	return errors.Join(errs...)
}
