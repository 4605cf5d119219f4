package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/invoice-query/pkg/errors"
)

func TestExecutorBindsTenantAndSanitizes(t *testing.T) {
	store := &stubStore{queryFn: func(BoundQuery) (RowSet, error) {
		return RowSet{
			Columns: []string{"description", "description_embedding", "similarity"},
			Rows: []Row{
				{"description": "Espresso", "description_embedding": "[1,2]", "similarity": 0.91234},
			},
		}, nil
	}}
	embedder := &stubEmbedder{vec: []float32{0.25, 0.5}}
	exec := NewExecutor(Config{BlockMutations: true}, store, embedder, discardLogger())

	plan := Plan{Query: "SELECT description, description_embedding, 1 - (description_embedding <=> :query_embedding::vector) AS similarity FROM items i JOIN invoices inv ON inv.id = i.invoice_id WHERE inv.user_id = :user_id"}
	res, err := exec.Execute(context.Background(), plan, 9, "espresso")
	require.NoError(t, err)
	require.Len(t, store.calls, 1)

	bound := store.calls[0]
	require.Equal(t, map[string]any{"user_id": int64(9)}, bound.Params)
	require.Contains(t, bound.Text, "'[0.25,0.5]'::vector")
	require.NotContains(t, bound.Text, ":query_embedding")

	require.Equal(t, []Row{{"description": "Espresso", "similarity": 0.912}}, res.Rows)
}

func TestExecutorFailsClosedWithoutScope(t *testing.T) {
	store := &stubStore{}
	exec := NewExecutor(Config{}, store, nil, discardLogger())

	_, err := exec.Execute(context.Background(), Plan{Query: "SELECT * FROM invoices"}, 9, "all invoices")
	require.ErrorIs(t, err, ErrUnscopedQuery)

	_, err = exec.Execute(context.Background(), Plan{Query: "SELECT * FROM invoices WHERE user_id = :user_id"}, 0, "all invoices")
	require.ErrorIs(t, err, ErrMissingTenant)
	require.Empty(t, store.calls)
}

func TestExecutorMutationHandling(t *testing.T) {
	plan := Plan{Query: "DELETE FROM invoices WHERE user_id = :user_id"}

	blocking := &stubStore{}
	_, err := NewExecutor(Config{BlockMutations: true}, blocking, nil, discardLogger()).
		Execute(context.Background(), plan, 3, "remove everything")
	require.ErrorIs(t, err, ErrMutation)
	require.Empty(t, blocking.calls)

	advisory := &stubStore{}
	_, err = NewExecutor(Config{BlockMutations: false}, advisory, nil, discardLogger()).
		Execute(context.Background(), plan, 3, "remove everything")
	require.NoError(t, err)
	require.Len(t, advisory.calls, 1)
}

func TestExecutorWrapsStoreErrors(t *testing.T) {
	store := &stubStore{queryFn: func(BoundQuery) (RowSet, error) {
		return RowSet{}, errors.New("relation does not exist")
	}}
	exec := NewExecutor(Config{}, store, nil, discardLogger())

	res, err := exec.Execute(context.Background(), Plan{Query: "SELECT * FROM invoicez WHERE user_id = :user_id"}, 3, "q")
	require.True(t, apperrors.IsCode(err, apperrors.CodeExecution))
	require.Equal(t, "SELECT * FROM invoicez WHERE user_id = :user_id", res.Query)
}

func TestExecutorCapsRows(t *testing.T) {
	store := &stubStore{queryFn: func(BoundQuery) (RowSet, error) {
		rows := make([]Row, 10)
		for i := range rows {
			rows[i] = Row{"id": i}
		}
		return RowSet{Rows: rows}, nil
	}}
	exec := NewExecutor(Config{MaxRows: 4}, store, nil, discardLogger())

	res, err := exec.Execute(context.Background(), Plan{Query: "SELECT id FROM invoices WHERE user_id = :user_id"}, 3, "q")
	require.NoError(t, err)
	require.Len(t, res.Rows, 4)
}
