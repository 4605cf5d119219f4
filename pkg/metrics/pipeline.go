package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Resolution pipeline Prometheus metrics.
var (
	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invoice_query",
			Name:      "resolutions_total",
			Help:      "Resolved questions by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "invoice_query",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each resolution stage in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	ScopeRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invoice_query",
			Name:      "scope_rejections_total",
			Help:      "Synthesized queries refused before execution",
		},
		[]string{"reason"}, // "tenant_scope" / "mutation"
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invoice_query",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invoice_query",
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by query synthesis",
		},
		[]string{"mode", "type"},
	)
)

var registerOnce sync.Once

// RegisterPipelineMetrics registers the pipeline collectors with the default registry.
func RegisterPipelineMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ResolutionsTotal,
			StageDuration,
			ScopeRejectionsTotal,
			EmbeddingCacheTotal,
			LLMTokensTotal,
		)
	})
}

// ObserveUsage adds synthesis token counts for a mode.
func ObserveUsage(mode string, usage TokenUsage) {
	if usage.IsZero() {
		return
	}
	LLMTokensTotal.WithLabelValues(mode, "prompt").Add(float64(usage.PromptTokens))
	LLMTokensTotal.WithLabelValues(mode, "completion").Add(float64(usage.CompletionTokens))
}
