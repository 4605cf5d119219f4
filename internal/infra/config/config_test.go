package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFromFileWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
query:
  stageTimeout: 5s
  maxRows: 25
rag:
  backend: bleve
  indexPath: /tmp/passages.bleve
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("QUERY_BLOCK_MUTATIONS", "false")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("CACHE_MAX_ENTRIES", "50")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, 5*time.Second, cfg.Query.StageTimeout)
	require.Equal(t, 25, cfg.Query.MaxRows)
	require.False(t, cfg.Query.BlockMutations)
	require.Equal(t, RAGBackendBleve, cfg.RAG.Backend)
	require.Equal(t, "sk-test", cfg.LLM.APIKey)
	require.Equal(t, 50, cfg.Cache.MaxEntries)
	require.Equal(t, 1.3, cfg.RAG.DistanceThreshold)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty address", mutate: func(c *Config) { c.HTTP.Address = "" }},
		{name: "zero stage timeout", mutate: func(c *Config) { c.Query.StageTimeout = 0 }},
		{name: "zero max rows", mutate: func(c *Config) { c.Query.MaxRows = 0 }},
		{name: "unknown rag backend", mutate: func(c *Config) { c.RAG.Backend = "elastic" }},
		{name: "bleve without index", mutate: func(c *Config) { c.RAG.Backend = RAGBackendBleve; c.RAG.IndexPath = "" }},
		{name: "negative cache size", mutate: func(c *Config) { c.Cache.MaxEntries = -1 }},
	}
	for _, tc := range tests {
		cfg := defaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
