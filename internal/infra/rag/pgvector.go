package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yanqian/invoice-query/internal/domain/query"
	"github.com/yanqian/invoice-query/internal/domain/tenant"
	"github.com/yanqian/invoice-query/internal/infra/store"
)

// Config tunes retrieval.
type Config struct {
	DistanceThreshold float64
	MaxResults        int
}

func (c Config) withDefaults() Config {
	if c.DistanceThreshold <= 0 {
		c.DistanceThreshold = 1.3
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 10
	}
	return c
}

const similaritySQL = `
	SELECT inv.id AS invoice_id, inv.invoice_number, inv.invoice_date, inv.vendor,
	       inv.total_amount, inv.currency, e.content_text,
	       1 - (e.embedding <=> $1) AS similarity
	FROM invoice_embeddings e
	JOIN invoices inv ON inv.id = e.invoice_id
	WHERE inv.user_id = $2 AND (e.embedding <-> $1) <= $3
	ORDER BY e.embedding <-> $1
	LIMIT $4`

// PgvectorSearcher ranks the tenant's invoice passages by vector distance.
type PgvectorSearcher struct {
	cfg      Config
	db       rowQuerier
	embedder query.Embedder
	logger   *slog.Logger
}

// NewPgvectorSearcher constructs the searcher. db is usually a *pgxpool.Pool.
func NewPgvectorSearcher(cfg Config, db rowQuerier, embedder query.Embedder, logger *slog.Logger) *PgvectorSearcher {
	return &PgvectorSearcher{
		cfg:      cfg.withDefaults(),
		db:       db,
		embedder: embedder,
		logger:   logger.With("component", "rag.pgvector"),
	}
}

// Search implements query.RAGSearcher.
func (s *PgvectorSearcher) Search(ctx context.Context, question string, tenantID tenant.ID) (query.RAGResult, error) {
	if !tenantID.Valid() {
		return query.RAGResult{}, errors.New("rag search requires a tenant")
	}
	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return query.RAGResult{}, fmt.Errorf("embed question: %w", err)
	}
	rows, err := s.db.Query(ctx, similaritySQL, pgvector.NewVector(vec), int64(tenantID), s.cfg.DistanceThreshold, s.cfg.MaxResults)
	if err != nil {
		return query.RAGResult{}, fmt.Errorf("similarity search: %w", err)
	}
	set, err := store.CollectRows(rows)
	if err != nil {
		return query.RAGResult{}, fmt.Errorf("read similarity rows: %w", err)
	}
	s.logger.Debug("similarity search finished", "rows", len(set.Rows))
	return query.RAGResult{Success: len(set.Rows) > 0, Rows: set.Rows, Query: similaritySQL}, nil
}

var _ query.RAGSearcher = (*PgvectorSearcher)(nil)
