package embedder

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/yanqian/invoice-query/internal/domain/query"
)

// DeterministicEmbedder avoids network calls by hashing text into a unit vector.
type DeterministicEmbedder struct {
	dim int
}

// NewDeterministicEmbedder constructs the embedder.
func NewDeterministicEmbedder(dim int) *DeterministicEmbedder {
	if dim <= 0 {
		dim = 32
	}
	return &DeterministicEmbedder{dim: dim}
}

// Embed converts text into a pseudo-random vector. Case and surrounding
// whitespace do not change the result.
func (e *DeterministicEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dim)
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(strings.ToLower(strings.TrimSpace(text))))
	seed := hash.Sum64()
	var norm float64
	for j := 0; j < e.dim; j++ {
		seed = seed*1099511628211 + 1469598103934665603
		v := float32(seed%997)/997.0 - 0.5
		vector[j] = v
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for j := range vector {
			vector[j] *= scale
		}
	}
	return vector, nil
}

var _ query.Embedder = (*DeterministicEmbedder)(nil)
