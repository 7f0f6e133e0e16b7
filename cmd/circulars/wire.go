package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/circulars/internal/config"
	dbRedis "github.com/kailas-cloud/circulars/internal/db/redis"
	"github.com/kailas-cloud/circulars/internal/domain"
	logpkg "github.com/kailas-cloud/circulars/internal/logger"
	"github.com/kailas-cloud/circulars/internal/metrics"
	"github.com/kailas-cloud/circulars/internal/repository/corpus"
	"github.com/kailas-cloud/circulars/internal/repository/embcache"
	"github.com/kailas-cloud/circulars/internal/repository/session"
	openaiTransport "github.com/kailas-cloud/circulars/internal/transport/openai"
	"github.com/kailas-cloud/circulars/internal/usecase/answer"
	"github.com/kailas-cloud/circulars/internal/usecase/chat"
	"github.com/kailas-cloud/circulars/internal/usecase/citation"
	embeddinguc "github.com/kailas-cloud/circulars/internal/usecase/embedding"
	"github.com/kailas-cloud/circulars/internal/usecase/prompt"
	"github.com/kailas-cloud/circulars/internal/usecase/retrieval"
	"github.com/kailas-cloud/circulars/internal/usecase/retry"
)

const providerName = "openai"

// app is the composition root shared by all commands.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	store  *dbRedis.Store
}

// bootstrap loads config and the logger. withCache also connects the redis
// cache when one is configured.
func bootstrap(ctx context.Context, withCache bool) (*app, error) {
	env := envName
	if env == "" {
		env = config.GetEnv()
	}

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterPipelineMetrics()

	a := &app{env: env, cfg: cfg, logger: logger}
	if withCache && cfg.Cache.Driver == config.CacheDriverRedis {
		if err := a.connectCache(ctx); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) connectCache(ctx context.Context) error {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    a.cfg.Cache.Addrs,
		Password: a.cfg.Cache.Password,
	})
	if err != nil {
		return fmt.Errorf("create cache store: %w", err)
	}
	timeout := time.Duration(a.cfg.Cache.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return fmt.Errorf("cache not ready: %w", err)
	}
	a.store = store
	a.logger.Info("Connected to cache", zap.Strings("addrs", a.cfg.Cache.Addrs))
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

// context attaches the app logger so services can pick it up.
func (a *app) context(ctx context.Context) context.Context {
	return logpkg.ContextWithLogger(ctx, a.logger)
}

func (a *app) retryPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: a.cfg.Retry.MaxAttempts, Backoff: a.cfg.RetryBackoff()}
}

// embedder assembles the decorator chain: OpenAI -> Cached (optional) -> Adapter.
func (a *app) embedder() (*embeddinguc.Adapter, error) {
	if err := a.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     a.cfg.OpenAI.APIKey,
		BaseURL:    a.cfg.OpenAI.BaseURL,
		Model:      a.cfg.Embedding.Model,
		Dimensions: a.cfg.Embedding.Dimensions,
		Timeout:    a.cfg.EmbeddingTimeout(),
		Provider:   providerName,
		Logger:     a.logger,
	})

	var inner domain.Embedder = base
	if a.store != nil {
		inner = embcache.New(base, a.store, a.cfg.Embedding.Model, a.cfg.Embedding.Dimensions,
			metrics.EmbeddingCacheTotal, a.logger)
	}

	return embeddinguc.NewAdapter(inner, providerName, a.cfg.Embedding.Model, a.logger,
		embeddinguc.WithBatchSize(a.cfg.Embedding.BatchSize),
		embeddinguc.WithRateLimit(a.cfg.Embedding.RequestsPerSecond),
		embeddinguc.WithRetry(a.retryPolicy()),
	), nil
}

func (a *app) generator() (*openaiTransport.Generator, error) {
	if err := a.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:    a.cfg.OpenAI.APIKey,
		BaseURL:   a.cfg.OpenAI.BaseURL,
		Model:     a.cfg.Generation.Model,
		MaxTokens: a.cfg.Generation.MaxTokens,
		Timeout:   a.cfg.GenerationTimeout(),
		Logger:    a.logger,
	}), nil
}

// pipeline is everything needed to answer questions over a loaded corpus.
type pipeline struct {
	corpus    *corpus.Corpus
	embedder  *embeddinguc.Adapter
	generator *openaiTransport.Generator
	retrieval *retrieval.Service
	answers   *answer.Service
}

func (a *app) pipeline() (*pipeline, error) {
	c, err := corpus.Load(a.cfg.Corpus.IndexDir, a.cfg.Corpus.ChunksDir)
	if err != nil {
		return nil, fmt.Errorf("load corpus (run `circulars chunk` and `circulars index` first): %w", err)
	}
	a.logger.Info("Corpus loaded",
		zap.String("index_dir", a.cfg.Corpus.IndexDir),
		zap.Int("chunks", c.Len()),
		zap.Int("dim", c.Dim()),
	)

	emb, err := a.embedder()
	if err != nil {
		return nil, err
	}
	gen, err := a.generator()
	if err != nil {
		return nil, err
	}

	ret := retrieval.New(emb, c, a.cfg.Retrieval.TopK)
	ans := answer.New(
		ret,
		prompt.New(prompt.WithCorpusName(a.cfg.Corpus.Name)),
		gen,
		citation.New(),
		a.retryPolicy(),
		a.cfg.Retrieval.TopK,
	)
	return &pipeline{corpus: c, embedder: emb, generator: gen, retrieval: ret, answers: ans}, nil
}

// sessions keeps chat history in redis when a cache is configured, in process otherwise.
func (a *app) sessions() chat.SessionStore {
	if a.store != nil {
		return session.NewKV(a.store, a.cfg.SessionTTL())
	}
	return session.NewMemory(a.cfg.SessionTTL())
}
