package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/invoice-query/internal/domain/query"
	"github.com/yanqian/invoice-query/internal/domain/tenant"
)

type fakeRows struct {
	pgx.Rows
	fields []pgconn.FieldDescription
	data   [][]any
	pos    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}
func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos-1], nil }

type fakeTx struct {
	pgx.Tx
	execs      []string
	execArgs   [][]any
	queryText  string
	queryArgs  []any
	rows       *fakeRows
	queryErr   error
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	t.execArgs = append(t.execArgs, args)
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (t *fakeTx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	t.queryText = sql
	t.queryArgs = args
	if t.queryErr != nil {
		return nil, t.queryErr
	}
	return t.rows, nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakePool struct {
	tx   *fakeTx
	opts pgx.TxOptions
}

func (p *fakePool) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	p.opts = opts
	return p.tx, nil
}

func (p *fakePool) Ping(context.Context) error { return nil }

func newTestStore(pool *fakePool, timeout time.Duration) *PostgresStore {
	return NewPostgresStore(Config{StatementTimeout: timeout}, pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPostgresStoreRunsReadOnlyScopedQuery(t *testing.T) {
	var amount pgtype.Numeric
	require.NoError(t, amount.Scan("120.50"))
	rows := &fakeRows{
		fields: []pgconn.FieldDescription{{Name: "vendor"}, {Name: "total_amount"}},
		data:   [][]any{{"ACME", amount}},
	}
	pool := &fakePool{tx: &fakeTx{rows: rows}}
	store := newTestStore(pool, 3*time.Second)

	set, err := store.Query(context.Background(), query.BoundQuery{
		Text:   "SELECT vendor, total_amount FROM invoices WHERE user_id = :user_id",
		Params: map[string]any{"user_id": int64(12)},
	})
	require.NoError(t, err)

	require.Equal(t, pgx.ReadOnly, pool.opts.AccessMode)
	require.Equal(t, []string{
		"SELECT set_config('app.tenant_id', $1, true)",
		"SELECT set_config('statement_timeout', $1, true)",
	}, pool.tx.execs)
	require.Equal(t, []any{"12"}, pool.tx.execArgs[0])
	require.Equal(t, []any{"3000"}, pool.tx.execArgs[1])
	require.Equal(t, "SELECT vendor, total_amount FROM invoices WHERE user_id = $1", pool.tx.queryText)
	require.Equal(t, []any{int64(12)}, pool.tx.queryArgs)
	require.True(t, pool.tx.rolledBack)
	require.True(t, rows.closed)

	require.Equal(t, []string{"vendor", "total_amount"}, set.Columns)
	require.Equal(t, []query.Row{{"vendor": "ACME", "total_amount": 120.5}}, set.Rows)
}

func TestPostgresStoreRequiresTenant(t *testing.T) {
	pool := &fakePool{tx: &fakeTx{rows: &fakeRows{}}}
	store := newTestStore(pool, 0)

	_, err := store.Query(context.Background(), query.BoundQuery{Text: "SELECT 1", Params: map[string]any{}})
	require.Error(t, err)
	require.Empty(t, pool.tx.execs)

	_, err = store.Query(tenant.WithID(context.Background(), 5), query.BoundQuery{Text: "SELECT 1", Params: map[string]any{}})
	require.NoError(t, err)
}

func TestPostgresStorePropagatesQueryErrors(t *testing.T) {
	pool := &fakePool{tx: &fakeTx{queryErr: errors.New("syntax error")}}
	store := newTestStore(pool, 0)

	_, err := store.Query(context.Background(), query.BoundQuery{
		Text:   "SELEC * FROM invoices WHERE user_id = :user_id",
		Params: map[string]any{"user_id": int64(1)},
	})
	require.EqualError(t, err, "syntax error")
	require.Len(t, pool.tx.execs, 1)
}

func TestPlainValue(t *testing.T) {
	id := [16]byte{0x12, 0x34}
	require.Equal(t, "12340000-0000-0000-0000-000000000000", plainValue(id))
	require.Equal(t, "abc", plainValue([]byte("abc")))
	require.Nil(t, plainValue(pgtype.Numeric{}))
	require.Equal(t, 42, plainValue(42))
}
