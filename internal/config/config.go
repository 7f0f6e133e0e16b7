package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// Cache drivers.
const (
	CacheDriverNone  = ""
	CacheDriverRedis = "redis"
)

// Config holds the circulars configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Retry      RetryConfig      `yaml:"retry"`
	Chat       ChatConfig       `yaml:"chat"`
	Cache      CacheConfig      `yaml:"cache"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CorpusConfig locates the corpus artifacts on disk.
type CorpusConfig struct {
	Name      string `yaml:"name"`
	TextsDir  string `yaml:"texts_dir"`
	ChunksDir string `yaml:"chunks_dir"`
	IndexDir  string `yaml:"index_dir"`
}

// ChunkingConfig holds the sliding window parameters.
type ChunkingConfig struct {
	MaxTokens int `yaml:"max_tokens"`
	Overlap   int `yaml:"overlap"`
}

// OpenAIConfig holds credentials shared by embedding and generation.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Model             string  `yaml:"model"`
	Dimensions        int     `yaml:"dimensions"` // 0 = model default
	BatchSize         int     `yaml:"batch_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unlimited
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// GenerationConfig holds chat completion settings.
type GenerationConfig struct {
	Model      string `yaml:"model"`
	MaxTokens  int    `yaml:"max_tokens"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RetrievalConfig holds search settings.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// RetryConfig bounds retries of provider calls.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BackoffMs   int `yaml:"backoff_ms"`
}

// ChatConfig holds conversation settings.
type ChatConfig struct {
	HistoryTurns  int `yaml:"history_turns"`
	SessionTTLMin int `yaml:"session_ttl_min"`
}

// CacheConfig holds the optional redis connection used for embeddings and sessions.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // "" (in-process only) or redis
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data and decodes it into a validated Config.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Corpus.Name == "" {
		c.Corpus.Name = "IRDAI"
	}
	if c.Corpus.TextsDir == "" {
		c.Corpus.TextsDir = "data/texts"
	}
	if c.Corpus.ChunksDir == "" {
		c.Corpus.ChunksDir = "data/chunks"
	}
	if c.Corpus.IndexDir == "" {
		c.Corpus.IndexDir = "data/index"
	}

	// overlap 0 is a valid setting, so only a fully empty block gets defaults
	if c.Chunking.MaxTokens == 0 && c.Chunking.Overlap == 0 {
		c.Chunking.MaxTokens = 450
		c.Chunking.Overlap = 50
	}

	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 16
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-4.1-mini"
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 400
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 60
	}

	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 4
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 2
	}
	if c.Retry.BackoffMs <= 0 {
		c.Retry.BackoffMs = 500
	}
	if c.Chat.HistoryTurns == 0 {
		c.Chat.HistoryTurns = 6
	}
	if c.Chat.SessionTTLMin <= 0 {
		c.Chat.SessionTTLMin = 60
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness. Errors match domain.ErrConfiguration.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: http.port must be between 1 and 65535, got %d", domain.ErrConfiguration, c.HTTP.Port)
	}
	if c.Chunking.MaxTokens <= 0 {
		return fmt.Errorf("%w: chunking.max_tokens must be positive, got %d",
			domain.ErrConfiguration, c.Chunking.MaxTokens)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.MaxTokens {
		return fmt.Errorf("%w: chunking.overlap must be in [0, %d), got %d",
			domain.ErrConfiguration, c.Chunking.MaxTokens, c.Chunking.Overlap)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("%w: embedding.dimensions must not be negative", domain.ErrConfiguration)
	}
	if c.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: embedding.requests_per_second must not be negative", domain.ErrConfiguration)
	}
	if c.Chat.HistoryTurns < 0 {
		return fmt.Errorf("%w: chat.history_turns must not be negative", domain.ErrConfiguration)
	}
	switch c.Cache.Driver {
	case CacheDriverNone:
	case CacheDriverRedis:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("%w: cache.addrs is required for driver %q", domain.ErrConfiguration, c.Cache.Driver)
		}
	default:
		return fmt.Errorf("%w: cache.driver must be \"\" or \"redis\", got %q", domain.ErrConfiguration, c.Cache.Driver)
	}
	return nil
}

// RequireAPIKey reports a configuration error when no OpenAI key is set.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return fmt.Errorf("%w: openai.api_key is empty (set OPENAI_API_KEY)", domain.ErrConfiguration)
	}
	return nil
}

// EmbeddingTimeout returns the per-call embedding deadline.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSec) * time.Second
}

// GenerationTimeout returns the per-call generation deadline.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSec) * time.Second
}

// RetryBackoff returns the initial retry delay.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Retry.BackoffMs) * time.Millisecond
}

// SessionTTL returns how long idle chat sessions are kept.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Chat.SessionTTLMin) * time.Minute
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
