package synth

import (
	"context"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yanqian/invoice-query/internal/domain/query"
	apperrors "github.com/yanqian/invoice-query/pkg/errors"
	"github.com/yanqian/invoice-query/pkg/metrics"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type tokenCounter interface {
	Count(text string) int
}

// Config holds model settings for the synthesizer.
type Config struct {
	Model            string
	Temperature      float32
	MaxHistoryTokens int
}

// OpenAISynthesizer asks a chat model for a SQL statement.
type OpenAISynthesizer struct {
	cfg     Config
	client  chatClient
	counter tokenCounter
	logger  *slog.Logger
}

// NewOpenAISynthesizer wires the synthesizer.
func NewOpenAISynthesizer(cfg Config, client chatClient, counter tokenCounter, logger *slog.Logger) *OpenAISynthesizer {
	return &OpenAISynthesizer{
		cfg:     cfg,
		client:  client,
		counter: counter,
		logger:  logger.With("component", "synth.openai"),
	}
}

// Synthesize implements query.Synthesizer. Tenant scoping of the returned
// query is checked by the pipeline before anything runs.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, req query.SynthesisRequest) (query.Plan, error) {
	if strings.TrimSpace(req.Question) == "" {
		return query.Plan{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		Messages:    buildMessages(req, s.cfg.MaxHistoryTokens, s.counter.Count),
	})
	if err != nil {
		return query.Plan{}, apperrors.Wrap(apperrors.CodeSynthesis, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return query.Plan{}, apperrors.Wrap(apperrors.CodeSynthesis, "chat completion returned no choices", nil)
	}
	content := resp.Choices[0].Message.Content

	sql, ok := ExtractSQL(content)
	if !ok {
		s.logger.Warn("no sql found in model response", "mode", req.Mode)
		return query.Plan{}, apperrors.Wrap(apperrors.CodeSynthesis, "model response contained no sql", nil)
	}
	return query.Plan{
		Query:       sql,
		Mode:        req.Mode,
		Confidence:  Confidence(sql, req.Question),
		Explanation: explanation(content, sql),
		Usage: metrics.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

const maxExplanationRunes = 500

// explanation returns the prose around the statement, if any.
func explanation(content, sql string) string {
	text := sqlFence.ReplaceAllString(content, "")
	text = anyFence.ReplaceAllString(text, "")
	text = strings.TrimSpace(strings.ReplaceAll(text, sql, ""))
	if runes := []rune(text); len(runes) > maxExplanationRunes {
		text = string(runes[:maxExplanationRunes])
	}
	return text
}

var _ query.Synthesizer = (*OpenAISynthesizer)(nil)
