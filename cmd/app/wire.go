//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/invoice-query/internal/bootstrap"
	"github.com/yanqian/invoice-query/internal/domain/auth"
	"github.com/yanqian/invoice-query/internal/domain/query"
	"github.com/yanqian/invoice-query/internal/infra/config"
	httpiface "github.com/yanqian/invoice-query/internal/interface/http"
	"github.com/yanqian/invoice-query/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideQueryConfig,
		provideAuthConfig,
		providePostgresPool,
		provideStore,
		provideHealthCheck,
		provideOpenAIClient,
		provideEmbeddingCache,
		provideEmbedder,
		provideSynthesizer,
		provideRAGSearcher,
		query.NewExecutor,
		query.NewService,
		auth.NewService,
		httpiface.NewQueryHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
