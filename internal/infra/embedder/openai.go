package embedder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yanqian/invoice-query/internal/domain/query"
)

// OpenAIEmbedder calls an OpenAI-compatible embeddings API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *slog.Logger
}

// NewOpenAIEmbedder constructs an embedder for the given model.
func NewOpenAIEmbedder(client *openai.Client, model string, dimensions int, logger *slog.Logger) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:     client,
		model:      openai.EmbeddingModel(strings.TrimSpace(model)),
		dimensions: dimensions,
		logger:     logger.With("component", "embedder.openai"),
	}
}

// Embed returns the embedding of text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, describeAPIError(err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("empty embedding response")
	}
	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		e.logger.Warn("embedding dimension mismatch", "expected", e.dimensions, "got", len(vec))
	}
	return vec, nil
}

func describeAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("embedding API error %d: %w", reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("embedding request failed: %w", err)
}

var _ query.Embedder = (*OpenAIEmbedder)(nil)
