package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/invoice-query/internal/domain/tenant"
	apperrors "github.com/yanqian/invoice-query/pkg/errors"
)

// Executor binds, embeds, runs and sanitizes a single candidate query.
type Executor struct {
	cfg      Config
	store    Store
	embedder Embedder
	logger   *slog.Logger
}

// NewExecutor wires the executor.
func NewExecutor(cfg Config, store Store, embedder Embedder, logger *slog.Logger) *Executor {
	return &Executor{
		cfg:      cfg.WithDefaults(),
		store:    store,
		embedder: embedder,
		logger:   logger.With("component", "query.executor"),
	}
}

// Execute runs plan for tenantID. questionText feeds the embedding when the
// query asks for one.
func (e *Executor) Execute(ctx context.Context, plan Plan, tenantID tenant.ID, questionText string) (Result, error) {
	start := time.Now()
	text := Normalize(plan.Query)

	if keyword, found := DetectMutation(text); found {
		e.logger.Warn("mutating keyword in synthesized query", "keyword", keyword, "blocked", e.cfg.BlockMutations)
		if e.cfg.BlockMutations {
			return Result{Query: text, Elapsed: time.Since(start)}, ErrMutation
		}
	}

	bound, err := Bind(text, tenantID, e.cfg.TenantParam)
	if err != nil {
		return Result{Query: text, Elapsed: time.Since(start)}, err
	}
	bound, err = ResolveEmbedding(ctx, bound, e.embedder, e.cfg.EmbeddingParam, questionText)
	if err != nil {
		return Result{Query: text, Elapsed: time.Since(start)}, err
	}

	set, err := e.store.Query(ctx, bound)
	if err != nil {
		return Result{Query: text, Elapsed: time.Since(start)}, apperrors.Wrap(apperrors.CodeExecution, "query execution failed", err)
	}

	rows := Sanitize(set.Rows, e.cfg.MaxRows)
	elapsed := time.Since(start)
	e.logger.Debug("query executed", "rows", len(rows), "truncated", len(set.Rows) > len(rows), "elapsed", elapsed)
	return Result{Rows: rows, Elapsed: elapsed, Query: text}, nil
}
