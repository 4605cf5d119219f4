package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/invoice-query/internal/domain/query"
	"github.com/yanqian/invoice-query/internal/domain/tenant"
)

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("embedding cache miss")

// Cache is a byte-oriented key-value store for embeddings.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedEmbedder caches embeddings per tenant. Calls without a tenant in the
// context go straight to the inner embedder.
type CachedEmbedder struct {
	inner      query.Embedder
	cache      Cache
	namespace  string
	cacheTotal *prometheus.CounterVec
	logger     *slog.Logger
}

// NewCachedEmbedder wraps inner. namespace separates models sharing one cache.
func NewCachedEmbedder(inner query.Embedder, cache Cache, namespace string, cacheTotal *prometheus.CounterVec, logger *slog.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		cache:      cache,
		namespace:  namespace,
		cacheTotal: cacheTotal,
		logger:     logger.With("component", "embedder.cache"),
	}
}

// Embed returns a cached embedding or calls the inner embedder.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	tenantID, ok := tenant.FromContext(ctx)
	if !ok {
		return c.inner.Embed(ctx, text)
	}
	key := c.cacheKey(tenantID, text)

	if vec, hit := c.lookup(ctx, key); hit {
		c.inc("hit")
		return vec, nil
	}
	c.inc("miss")

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if err := c.cache.Set(ctx, key, encodeVector(vec)); err != nil {
		c.logger.Warn("failed to cache embedding", "error", err)
	}
	return vec, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("failed to read cached embedding", "error", err)
		}
		return nil, false
	}
	vec, err := decodeVector(data)
	if err != nil {
		c.logger.Warn("failed to decode cached embedding", "error", err)
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(tenantID tenant.ID, text string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return "emb:" + c.namespace + ":" + tenantID.String() + ":" + hex.EncodeToString(h[:])
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid cached vector length %d", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

var _ query.Embedder = (*CachedEmbedder)(nil)
