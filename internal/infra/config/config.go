package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
	Query    QueryConfig    `yaml:"query"`
	RAG      RAGConfig      `yaml:"rag"`
	Postgres PostgresConfig `yaml:"postgres"`
	Cache    CacheConfig    `yaml:"cache"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	AllowOrigins []string        `yaml:"allowOrigins"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig holds the bearer token settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTtl"`
}

// LLMConfig contains OpenAI settings.
type LLMConfig struct {
	APIKey              string  `yaml:"apiKey"`
	BaseURL             string  `yaml:"baseUrl"`
	Model               string  `yaml:"model"`
	EmbeddingModel      string  `yaml:"embeddingModel"`
	EmbeddingDimensions int     `yaml:"embeddingDimensions"`
	Temperature         float32 `yaml:"temperature"`
	MaxHistoryTokens    int     `yaml:"maxHistoryTokens"`
}

// QueryConfig tunes the resolution pipeline.
type QueryConfig struct {
	StageTimeout   time.Duration `yaml:"stageTimeout"`
	BlockMutations bool          `yaml:"blockMutations"`
	MaxRows        int           `yaml:"maxRows"`
	SchemaPath     string        `yaml:"schemaPath"`
}

// RAGConfig selects and tunes the last-resort searcher.
type RAGConfig struct {
	Backend           string  `yaml:"backend"`
	DistanceThreshold float64 `yaml:"distanceThreshold"`
	MaxResults        int     `yaml:"maxResults"`
	IndexPath         string  `yaml:"indexPath"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// CacheConfig controls the embedding cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Addr       string        `yaml:"addr"`
	MaxEntries int           `yaml:"maxEntries"`
	TTL        time.Duration `yaml:"ttl"`
}

const (
	RAGBackendPgvector = "pgvector"
	RAGBackendBleve    = "bleve"
	RAGBackendNone     = "none"
)

// Load reads configuration from a .env file, a YAML file and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	if v := os.Getenv("HTTP_ALLOW_ORIGINS"); v != "" {
		cfg.HTTP.AllowOrigins = splitList(v)
	}
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	setBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	setInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	setDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)

	setString("AUTH_JWT_SECRET", &cfg.Auth.JWTSecret)
	setDuration("AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL)

	setString("LLM_API_KEY", &cfg.LLM.APIKey)
	if cfg.LLM.APIKey == "" {
		setString("OPENAI_API_KEY", &cfg.LLM.APIKey)
	}
	setString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	setString("LLM_MODEL", &cfg.LLM.Model)
	setString("LLM_EMBEDDING_MODEL", &cfg.LLM.EmbeddingModel)
	setInt("LLM_EMBEDDING_DIMENSIONS", &cfg.LLM.EmbeddingDimensions)
	setInt("LLM_MAX_HISTORY_TOKENS", &cfg.LLM.MaxHistoryTokens)
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}

	setDuration("QUERY_STAGE_TIMEOUT", &cfg.Query.StageTimeout)
	setBool("QUERY_BLOCK_MUTATIONS", &cfg.Query.BlockMutations)
	setInt("QUERY_MAX_ROWS", &cfg.Query.MaxRows)
	setString("QUERY_SCHEMA_PATH", &cfg.Query.SchemaPath)

	setString("RAG_BACKEND", &cfg.RAG.Backend)
	setInt("RAG_MAX_RESULTS", &cfg.RAG.MaxResults)
	setString("RAG_INDEX_PATH", &cfg.RAG.IndexPath)
	if v := os.Getenv("RAG_DISTANCE_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RAG.DistanceThreshold = parsed
		}
	}

	setString("POSTGRES_DSN", &cfg.Postgres.DSN)
	if cfg.Postgres.DSN == "" {
		setString("DATABASE_URL", &cfg.Postgres.DSN)
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}

	setBool("CACHE_ENABLED", &cfg.Cache.Enabled)
	setString("CACHE_ADDR", &cfg.Cache.Addr)
	setInt("CACHE_MAX_ENTRIES", &cfg.Cache.MaxEntries)
	setDuration("CACHE_TTL", &cfg.Cache.TTL)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			AllowOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 2,
				BaseBackoff: 150 * time.Millisecond,
			},
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		LLM: LLMConfig{
			Model:               "gpt-4o-mini",
			EmbeddingModel:      "text-embedding-3-small",
			EmbeddingDimensions: 1536,
			Temperature:         0.1,
			MaxHistoryTokens:    1500,
		},
		Query: QueryConfig{
			StageTimeout:   20 * time.Second,
			BlockMutations: true,
			MaxRows:        100,
		},
		RAG: RAGConfig{
			Backend:           RAGBackendPgvector,
			DistanceThreshold: 1.3,
			MaxResults:        10,
			IndexPath:         "data/passages.bleve",
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
			MinConns: 0,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 1000,
			TTL:        24 * time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	if c.LLM.EmbeddingDimensions <= 0 {
		return errors.New("llm.embeddingDimensions must be positive")
	}
	if c.LLM.MaxHistoryTokens < 0 {
		return errors.New("llm.maxHistoryTokens cannot be negative")
	}
	if c.Query.StageTimeout <= 0 {
		return errors.New("query.stageTimeout must be positive")
	}
	if c.Query.MaxRows <= 0 {
		return errors.New("query.maxRows must be positive")
	}
	switch c.RAG.Backend {
	case RAGBackendPgvector, RAGBackendNone:
	case RAGBackendBleve:
		if strings.TrimSpace(c.RAG.IndexPath) == "" {
			return errors.New("rag.indexPath cannot be empty when the bleve backend is selected")
		}
	default:
		return fmt.Errorf("rag.backend %q is not supported", c.RAG.Backend)
	}
	if c.RAG.DistanceThreshold <= 0 {
		return errors.New("rag.distanceThreshold must be positive")
	}
	if c.RAG.MaxResults <= 0 {
		return errors.New("rag.maxResults must be positive")
	}
	if c.Cache.MaxEntries < 0 {
		return errors.New("cache.maxEntries cannot be negative")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	return nil
}
