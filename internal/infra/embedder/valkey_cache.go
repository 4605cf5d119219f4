package embedder

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyCache stores embeddings in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string, ttl time.Duration) *ValkeyCache {
	if prefix == "" {
		prefix = "invoice-query"
	}
	return &ValkeyCache{client: client, prefix: prefix, ttl: ttl}
}

// Get implements Cache.
func (c *ValkeyCache) Get(ctx context.Context, key string) ([]byte, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(c.prefix+":"+key).Build())
	data, err := resp.AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

// Set implements Cache.
func (c *ValkeyCache) Set(ctx context.Context, key string, value []byte) error {
	builder := c.client.B().Set().Key(c.prefix + ":" + key).Value(valkey.BinaryString(value))
	var cmd valkey.Completed
	if c.ttl > 0 {
		ttl := c.ttl
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

var _ Cache = (*ValkeyCache)(nil)
