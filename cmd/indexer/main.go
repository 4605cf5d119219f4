// Command indexer rebuilds the keyword passage index used by the bleve RAG
// backend from the invoices stored in Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/invoice-query/internal/infra/config"
	"github.com/yanqian/invoice-query/internal/infra/rag"
	"github.com/yanqian/invoice-query/pkg/logger"
)

func main() {
	indexPath := flag.String("index", "", "index directory (defaults to rag.indexPath)")
	flag.Parse()

	if err := run(*indexPath); err != nil {
		fmt.Fprintf(os.Stderr, "indexer: %v\n", err)
		os.Exit(1)
	}
}

func run(indexPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New().With("component", "indexer")
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if indexPath == "" {
		indexPath = cfg.RAG.IndexPath
	}
	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("postgres dsn is required")
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	start := time.Now()
	passages, err := rag.NewPostgresPassageSource(pool).Passages(ctx)
	if err != nil {
		return err
	}

	index, err := rag.OpenBleveIndex(indexPath)
	if err != nil {
		return err
	}
	defer index.Close()

	if err := index.IndexPassages(ctx, passages); err != nil {
		return err
	}
	count, err := index.DocCount()
	if err != nil {
		return err
	}
	log.Info("passage index rebuilt", "path", indexPath, "passages", len(passages), "documents", count,
		"elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
