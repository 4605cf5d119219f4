package query

import (
	"context"

	"github.com/yanqian/invoice-query/internal/domain/tenant"
)

// SynthesisRequest is the input handed to a Synthesizer.
type SynthesisRequest struct {
	Question        string
	Schema          string
	TenantScopeHint string
	Mode            Mode
	History         []Turn
}

// Synthesizer turns a question into a candidate query.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (Plan, error)
}

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store executes bound queries against the record database.
type Store interface {
	Query(ctx context.Context, q BoundQuery) (RowSet, error)
}

// RAGResult is what the retrieval-augmented searcher found.
type RAGResult struct {
	Success bool
	Rows    []Row
	Query   string
}

// RAGSearcher is the last-resort retrieval strategy.
type RAGSearcher interface {
	Search(ctx context.Context, question string, tenantID tenant.ID) (RAGResult, error)
}
