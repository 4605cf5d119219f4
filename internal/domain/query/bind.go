package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/yanqian/invoice-query/internal/domain/tenant"
	apperrors "github.com/yanqian/invoice-query/pkg/errors"
)

// Bind attaches the tenant id to the normalized text. It fails closed when
// the tenant is unset or the text never references the tenant placeholder.
func Bind(text string, tenantID tenant.ID, tenantParam string) (BoundQuery, error) {
	if !tenantID.Valid() {
		return BoundQuery{}, ErrMissingTenant
	}
	if !ReferencesTenantScope(text, tenantParam) {
		return BoundQuery{}, ErrUnscopedQuery
	}
	return BoundQuery{
		Text:   text,
		Params: map[string]any{tenantParam: int64(tenantID)},
	}, nil
}

// ResolveEmbedding embeds question when the query references the embedding
// placeholder and inlines the vector as a pgvector literal. The placeholder
// never reaches the store as a parameter.
func ResolveEmbedding(ctx context.Context, q BoundQuery, embedder Embedder, param, question string) (BoundQuery, error) {
	placeholder := "'[:" + param + "]'::vector"
	if !strings.Contains(q.Text, placeholder) {
		delete(q.Params, param)
		return q, nil
	}
	if strings.TrimSpace(question) == "" {
		return BoundQuery{}, apperrors.Wrap(apperrors.CodeEmbedding, "query needs an embedding but the question is empty", nil)
	}
	if embedder == nil {
		return BoundQuery{}, apperrors.Wrap(apperrors.CodeEmbedding, "embedding provider unavailable", nil)
	}
	vec, err := embedder.Embed(ctx, question)
	if err != nil {
		return BoundQuery{}, apperrors.Wrap(apperrors.CodeEmbedding, "embed question", err)
	}
	if len(vec) == 0 {
		return BoundQuery{}, apperrors.Wrap(apperrors.CodeEmbedding, "embedding provider returned an empty vector", nil)
	}
	literal, err := vectorLiteral(vec)
	if err != nil {
		return BoundQuery{}, apperrors.Wrap(apperrors.CodeEmbedding, "encode embedding", err)
	}
	q.Text = strings.ReplaceAll(q.Text, placeholder, "'"+literal+"'::vector")
	delete(q.Params, param)
	return q, nil
}

func vectorLiteral(vec []float32) (string, error) {
	value, err := pgvector.NewVector(vec).Value()
	if err != nil {
		return "", err
	}
	literal, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected vector encoding %T", value)
	}
	return literal, nil
}
