package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/circulars/internal/domain"
)

func validConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"overlap equals max", func(c *Config) { c.Chunking.Overlap = c.Chunking.MaxTokens }, "chunking.overlap"},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }, "chunking.overlap"},
		{"max tokens", func(c *Config) { c.Chunking.MaxTokens = -5 }, "chunking.max_tokens"},
		{"dimensions", func(c *Config) { c.Embedding.Dimensions = -1 }, "embedding.dimensions"},
		{"rps", func(c *Config) { c.Embedding.RequestsPerSecond = -1 }, "requests_per_second"},
		{"history", func(c *Config) { c.Chat.HistoryTurns = -2 }, "chat.history_turns"},
		{"cache driver", func(c *Config) { c.Cache.Driver = "valkey" }, "cache.driver"},
		{"cache addrs", func(c *Config) { c.Cache.Driver = CacheDriverRedis }, "cache.addrs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_RedisCache(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Driver = CacheDriverRedis
	cfg.Cache.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Chunking.MaxTokens != 450 || cfg.Chunking.Overlap != 50 {
		t.Errorf("expected chunking 450/50, got %d/%d", cfg.Chunking.MaxTokens, cfg.Chunking.Overlap)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected embedding model default, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.BatchSize != 16 {
		t.Errorf("expected BatchSize=16, got %d", cfg.Embedding.BatchSize)
	}
	if cfg.Generation.MaxTokens != 400 {
		t.Errorf("expected generation MaxTokens=400, got %d", cfg.Generation.MaxTokens)
	}
	if cfg.Retrieval.TopK != 4 {
		t.Errorf("expected TopK=4, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retry.MaxAttempts != 2 {
		t.Errorf("expected MaxAttempts=2, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Chat.HistoryTurns != 6 {
		t.Errorf("expected HistoryTurns=6, got %d", cfg.Chat.HistoryTurns)
	}
	if cfg.Corpus.Name != "IRDAI" || cfg.Corpus.IndexDir != "data/index" {
		t.Errorf("unexpected corpus defaults: %+v", cfg.Corpus)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 9000, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Chunking:  ChunkingConfig{MaxTokens: 200, Overlap: 0},
		Embedding: EmbeddingConfig{Model: "custom", BatchSize: 64},
		Retrieval: RetrievalConfig{TopK: 8},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 || cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("http overridden: %+v", cfg.HTTP)
	}
	if cfg.Chunking.MaxTokens != 200 || cfg.Chunking.Overlap != 0 {
		t.Errorf("zero overlap must be kept, got %+v", cfg.Chunking)
	}
	if cfg.Embedding.Model != "custom" || cfg.Embedding.BatchSize != 64 {
		t.Errorf("embedding overridden: %+v", cfg.Embedding)
	}
	if cfg.Retrieval.TopK != 8 {
		t.Errorf("expected TopK=8, got %d", cfg.Retrieval.TopK)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("CIRCULARS_TEST_KEY", "sk-test")
	t.Setenv("CIRCULARS_TEST_PORT", "")

	cfg, err := Parse([]byte(`
http:
  port: ${CIRCULARS_TEST_PORT:-9090}
openai:
  api_key: ${CIRCULARS_TEST_KEY}
chunking:
  max_tokens: 100
  overlap: 10
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected default port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("expected api key from env, got %q", cfg.OpenAI.APIKey)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey: %v", err)
	}
}

func TestParse_InvalidChunking(t *testing.T) {
	_, err := Parse([]byte("chunking:\n  max_tokens: 10\n  overlap: 10\n"))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestRequireAPIKey_Missing(t *testing.T) {
	cfg := validConfig()
	if err := cfg.RequireAPIKey(); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-local")
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-local" {
		t.Errorf("api key = %q", cfg.OpenAI.APIKey)
	}
	if cfg.Cache.Driver != CacheDriverNone {
		t.Errorf("local config must not need redis, got %q", cfg.Cache.Driver)
	}
}

func TestDurations(t *testing.T) {
	cfg := validConfig()
	if cfg.EmbeddingTimeout().Seconds() != 30 {
		t.Errorf("embedding timeout = %v", cfg.EmbeddingTimeout())
	}
	if cfg.GenerationTimeout().Seconds() != 60 {
		t.Errorf("generation timeout = %v", cfg.GenerationTimeout())
	}
	if cfg.RetryBackoff().Milliseconds() != 500 {
		t.Errorf("retry backoff = %v", cfg.RetryBackoff())
	}
	if cfg.SessionTTL().Minutes() != 60 {
		t.Errorf("session ttl = %v", cfg.SessionTTL())
	}
}
