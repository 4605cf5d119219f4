package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	pgx.Rows
	fields []pgconn.FieldDescription
	data   [][]any
	pos    int
}

func (r *fakeRows) Close()                                       {}
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

type fakeQuerier struct {
	rows *fakeRows
	sql  string
	args []any
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql = sql
	q.args = args
	return q.rows, nil
}

type fixedEmbedder struct {
	vec []float32
	err error
}

func (f fixedEmbedder) Embed(context.Context, string) ([]float32, error) { return f.vec, f.err }

func TestPgvectorSearcherBindsTenantAndThreshold(t *testing.T) {
	db := &fakeQuerier{rows: &fakeRows{
		fields: []pgconn.FieldDescription{{Name: "invoice_id"}, {Name: "content_text"}, {Name: "similarity"}},
		data:   [][]any{{int64(10), "Invoice INV-10 from Bean Co", 0.81234}},
	}}
	searcher := NewPgvectorSearcher(Config{}, db, fixedEmbedder{vec: []float32{0.1, 0.2}}, testLogger())

	res, err := searcher.Search(context.Background(), "coffee", 7)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Rows, 1)
	require.Equal(t, similaritySQL, res.Query)

	require.Len(t, db.args, 4)
	require.Equal(t, pgvector.NewVector([]float32{0.1, 0.2}), db.args[0])
	require.Equal(t, int64(7), db.args[1])
	require.Equal(t, 1.3, db.args[2])
	require.Equal(t, 10, db.args[3])
}

func TestPgvectorSearcherErrors(t *testing.T) {
	searcher := NewPgvectorSearcher(Config{}, &fakeQuerier{rows: &fakeRows{}}, fixedEmbedder{err: errors.New("down")}, testLogger())
	_, err := searcher.Search(context.Background(), "coffee", 7)
	require.Error(t, err)

	_, err = searcher.Search(context.Background(), "coffee", 0)
	require.Error(t, err)
}

func TestPgvectorSearcherEmpty(t *testing.T) {
	searcher := NewPgvectorSearcher(Config{}, &fakeQuerier{rows: &fakeRows{}}, fixedEmbedder{vec: []float32{1}}, testLogger())
	res, err := searcher.Search(context.Background(), "coffee", 7)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Empty(t, res.Rows)
}
