package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yanqian/invoice-query/internal/domain/query"
	"github.com/yanqian/invoice-query/internal/domain/tenant"
)

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Config tunes statement execution.
type Config struct {
	TenantParam      string
	StatementTimeout time.Duration
}

// PostgresStore runs bound queries in read-only transactions scoped to the
// tenant via the app.tenant_id setting.
type PostgresStore struct {
	cfg    Config
	pool   txBeginner
	logger *slog.Logger
}

// NewPostgresStore constructs the store. pool is usually a *pgxpool.Pool.
func NewPostgresStore(cfg Config, pool txBeginner, logger *slog.Logger) *PostgresStore {
	if cfg.TenantParam == "" {
		cfg.TenantParam = "user_id"
	}
	return &PostgresStore{cfg: cfg, pool: pool, logger: logger.With("component", "store.postgres")}
}

// Query implements query.Store.
func (s *PostgresStore) Query(ctx context.Context, q query.BoundQuery) (query.RowSet, error) {
	tenantID, err := s.tenantOf(ctx, q)
	if err != nil {
		return query.RowSet{}, err
	}
	text, args, err := bindPositional(q.Text, q.Params)
	if err != nil {
		return query.RowSet{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return query.RowSet{}, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed", "error", rbErr)
		}
	}()

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID.String()); err != nil {
		return query.RowSet{}, fmt.Errorf("scope session to tenant: %w", err)
	}
	if s.cfg.StatementTimeout > 0 {
		ms := strconv.FormatInt(s.cfg.StatementTimeout.Milliseconds(), 10)
		if _, err := tx.Exec(ctx, "SELECT set_config('statement_timeout', $1, true)", ms); err != nil {
			return query.RowSet{}, fmt.Errorf("set statement timeout: %w", err)
		}
	}

	rows, err := tx.Query(ctx, text, args...)
	if err != nil {
		return query.RowSet{}, err
	}
	set, err := CollectRows(rows)
	if err != nil {
		return query.RowSet{}, err
	}
	s.logger.Debug("statement executed", "rows", len(set.Rows), "columns", len(set.Columns))
	return set, nil
}

// Ping reports whether the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) tenantOf(ctx context.Context, q query.BoundQuery) (tenant.ID, error) {
	switch v := q.Params[s.cfg.TenantParam].(type) {
	case int64:
		if id := tenant.ID(v); id.Valid() {
			return id, nil
		}
	case tenant.ID:
		if v.Valid() {
			return v, nil
		}
	}
	if id, ok := tenant.FromContext(ctx); ok {
		return id, nil
	}
	return 0, errors.New("bound query carries no tenant")
}

var _ query.Store = (*PostgresStore)(nil)

// Unavailable rejects every query. It stands in when no database is configured.
type Unavailable struct{}

// Query implements query.Store.
func (Unavailable) Query(context.Context, query.BoundQuery) (query.RowSet, error) {
	return query.RowSet{}, errors.New("record database is not configured")
}

// Ping implements the readiness check.
func (Unavailable) Ping(context.Context) error {
	return errors.New("record database is not configured")
}

var _ query.Store = Unavailable{}
