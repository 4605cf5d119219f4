package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sashabaranov/go-openai"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/invoice-query/internal/domain/auth"
	"github.com/yanqian/invoice-query/internal/domain/query"
	"github.com/yanqian/invoice-query/internal/infra/config"
	"github.com/yanqian/invoice-query/internal/infra/embedder"
	"github.com/yanqian/invoice-query/internal/infra/rag"
	"github.com/yanqian/invoice-query/internal/infra/store"
	"github.com/yanqian/invoice-query/internal/infra/synth"
	"github.com/yanqian/invoice-query/internal/infra/tokenizer"
	httpiface "github.com/yanqian/invoice-query/internal/interface/http"
	"github.com/yanqian/invoice-query/pkg/metrics"
)

func provideQueryConfig(cfg *config.Config) (query.Config, error) {
	qc := query.Config{
		StageTimeout:   cfg.Query.StageTimeout,
		BlockMutations: cfg.Query.BlockMutations,
		MaxRows:        cfg.Query.MaxRows,
	}
	if path := strings.TrimSpace(cfg.Query.SchemaPath); path != "" {
		schema, err := os.ReadFile(path)
		if err != nil {
			return query.Config{}, fmt.Errorf("read schema description: %w", err)
		}
		qc.Schema = string(schema)
	}
	return qc.WithDefaults(), nil
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.Auth.JWTSecret,
		TokenTTL: cfg.Auth.TokenTTL,
	}
}

// providePostgresPool returns a nil pool when the database is not configured
// or unreachable; dependent providers fall back accordingly.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, queries will fail until configured")
		return nil, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn", "error", err)
		return nil, noop
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed", "error", err)
		pool.Close()
		return nil, noop
	}
	logger.Info("postgres pool ready", "maxConns", poolConfig.MaxConns)
	return pool, pool.Close
}

func provideStore(cfg *config.Config, qc query.Config, pool *pgxpool.Pool, logger *slog.Logger) query.Store {
	if pool == nil {
		return store.Unavailable{}
	}
	return store.NewPostgresStore(store.Config{
		TenantParam:      qc.TenantParam,
		StatementTimeout: cfg.Query.StageTimeout,
	}, pool, logger)
}

func provideHealthCheck(s query.Store) httpiface.Pinger {
	p, _ := s.(httpiface.Pinger)
	return p
}

func provideOpenAIClient(cfg *config.Config) *openai.Client {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		return nil
	}
	clientCfg := openai.DefaultConfig(cfg.LLM.APIKey)
	if cfg.LLM.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.LLM.BaseURL, "/")
	}
	return openai.NewClientWithConfig(clientCfg)
}

func provideEmbeddingCache(cfg *config.Config, logger *slog.Logger) (embedder.Cache, func()) {
	noop := func() {}
	if !cfg.Cache.Enabled {
		return nil, noop
	}
	memory := embedder.NewMemoryCache(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	if strings.TrimSpace(cfg.Cache.Addr) == "" {
		logger.Info("embedding cache in memory", "maxEntries", cfg.Cache.MaxEntries)
		return memory, noop
	}
	opt, err := buildValkeyOptions(cfg.Cache.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return memory, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return memory, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return memory, noop
	}
	logger.Info("embedding cache on valkey", "addr", cfg.Cache.Addr)
	return embedder.NewValkeyCache(client, "invoice-query", cfg.Cache.TTL), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideEmbedder(cfg *config.Config, client *openai.Client, cache embedder.Cache, logger *slog.Logger) query.Embedder {
	var inner query.Embedder
	namespace := "deterministic"
	if client != nil {
		inner = embedder.NewOpenAIEmbedder(client, cfg.LLM.EmbeddingModel, cfg.LLM.EmbeddingDimensions, logger)
		namespace = cfg.LLM.EmbeddingModel
	} else {
		logger.Warn("llm api key not set, using deterministic embeddings")
		inner = embedder.NewDeterministicEmbedder(cfg.LLM.EmbeddingDimensions)
	}
	if cache == nil {
		return inner
	}
	return embedder.NewCachedEmbedder(inner, cache, namespace, metrics.EmbeddingCacheTotal, logger)
}

func provideSynthesizer(cfg *config.Config, client *openai.Client, logger *slog.Logger) query.Synthesizer {
	if client == nil {
		logger.Warn("llm api key not set, query synthesis disabled")
		return synth.Unavailable{}
	}
	return synth.NewOpenAISynthesizer(synth.Config{
		Model:            cfg.LLM.Model,
		Temperature:      cfg.LLM.Temperature,
		MaxHistoryTokens: cfg.LLM.MaxHistoryTokens,
	}, client, tokenizer.NewCounter(cfg.LLM.Model, logger), logger)
}

func provideRAGSearcher(cfg *config.Config, pool *pgxpool.Pool, emb query.Embedder, logger *slog.Logger) (query.RAGSearcher, func(), error) {
	noop := func() {}
	ragCfg := rag.Config{
		DistanceThreshold: cfg.RAG.DistanceThreshold,
		MaxResults:        cfg.RAG.MaxResults,
	}
	switch cfg.RAG.Backend {
	case config.RAGBackendPgvector:
		if pool == nil {
			logger.Warn("rag backend pgvector needs postgres, rag disabled")
			return nil, noop, nil
		}
		return rag.NewPgvectorSearcher(ragCfg, pool, emb, logger), noop, nil
	case config.RAGBackendBleve:
		index, err := rag.OpenBleveIndex(cfg.RAG.IndexPath)
		if err != nil {
			return nil, noop, err
		}
		cleanup := func() {
			if err := index.Close(); err != nil {
				logger.Error("close passage index", "error", err)
			}
		}
		return rag.NewBleveSearcher(ragCfg, index, logger), cleanup, nil
	default:
		logger.Info("rag disabled")
		return nil, noop, nil
	}
}
