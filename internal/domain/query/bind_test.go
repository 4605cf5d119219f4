package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/invoice-query/pkg/errors"
)

func TestBindFailsClosed(t *testing.T) {
	_, err := Bind("SELECT * FROM invoices WHERE user_id = :user_id", 0, "user_id")
	require.ErrorIs(t, err, ErrMissingTenant)

	_, err = Bind("SELECT * FROM invoices", 7, "user_id")
	require.ErrorIs(t, err, ErrUnscopedQuery)

	bound, err := Bind("SELECT * FROM invoices WHERE user_id = :user_id", 7, "user_id")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"user_id": int64(7)}, bound.Params)
}

func TestResolveEmbeddingInlinesVector(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.5, 1, -2}}
	in := BoundQuery{
		Text:   "SELECT id FROM items WHERE description_embedding::vector <-> '[:query_embedding]'::vector < 1 AND user_id = :user_id",
		Params: map[string]any{"user_id": int64(7), "query_embedding": "stale"},
	}

	out, err := ResolveEmbedding(context.Background(), in, embedder, "query_embedding", "coffee")
	require.NoError(t, err)
	require.Equal(t, []string{"coffee"}, embedder.calls)
	require.Equal(t, "SELECT id FROM items WHERE description_embedding::vector <-> '[0.5,1,-2]'::vector < 1 AND user_id = :user_id", out.Text)
	require.NotContains(t, out.Params, "query_embedding")
	require.Equal(t, int64(7), out.Params["user_id"])
}

func TestResolveEmbeddingSkipsWhenNotReferenced(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{1}}
	in := BoundQuery{Text: "SELECT * FROM invoices WHERE user_id = :user_id", Params: map[string]any{"user_id": int64(1)}}

	out, err := ResolveEmbedding(context.Background(), in, embedder, "query_embedding", "coffee")
	require.NoError(t, err)
	require.Empty(t, embedder.calls)
	require.Equal(t, in.Text, out.Text)
}

func TestResolveEmbeddingErrors(t *testing.T) {
	text := "SELECT id FROM items WHERE description_embedding::vector <-> '[:query_embedding]'::vector < 1 AND user_id = :user_id"

	_, err := ResolveEmbedding(context.Background(), BoundQuery{Text: text, Params: map[string]any{}}, &stubEmbedder{err: errors.New("quota")}, "query_embedding", "coffee")
	require.True(t, apperrors.IsCode(err, apperrors.CodeEmbedding))

	_, err = ResolveEmbedding(context.Background(), BoundQuery{Text: text, Params: map[string]any{}}, &stubEmbedder{vec: []float32{1}}, "query_embedding", "  ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeEmbedding))

	_, err = ResolveEmbedding(context.Background(), BoundQuery{Text: text, Params: map[string]any{}}, nil, "query_embedding", "coffee")
	require.True(t, apperrors.IsCode(err, apperrors.CodeEmbedding))
}
