// Package embedding turns an embedding provider into the ordered, batched,
// rate-limited capability used by ingestion and retrieval.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/circulars/internal/domain"
	"github.com/kailas-cloud/circulars/internal/usecase/retry"
)

// DefaultBatchSize bounds the number of texts sent in one provider call.
const DefaultBatchSize = 16

// Adapter batches texts, paces requests, retries transient failures once and
// guarantees len(output) == len(input) with matching order.
type Adapter struct {
	inner    domain.Embedder
	provider string
	model    string

	batchSize int
	limiter   *rate.Limiter
	policy    retry.Policy
	logger    *zap.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithBatchSize sets the maximum texts per provider call. Non-positive values are ignored.
func WithBatchSize(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.batchSize = n
		}
	}
}

// WithRateLimit allows at most rps provider calls per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(a *Adapter) {
		if rps > 0 {
			a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRetry overrides the retry policy for provider calls.
func WithRetry(p retry.Policy) Option {
	return func(a *Adapter) { a.policy = p }
}

// NewAdapter wraps an embedding provider.
func NewAdapter(inner domain.Embedder, provider, model string, logger *zap.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		inner:     inner,
		provider:  provider,
		model:     model,
		batchSize: DefaultBatchSize,
		policy:    retry.DefaultPolicy(),
		logger:    logger,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Embed vectorizes texts in order. Any provider failure aborts the whole call;
// partial results are never returned.
func (a *Adapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	dim := 0
	tokens := 0
	start := time.Now()

	for offset := 0; offset < len(texts); offset += a.batchSize {
		end := min(offset+a.batchSize, len(texts))
		batch := texts[offset:end]

		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("wait for embedding slot: %w", err)
			}
		}

		res, err := retry.Do(ctx, a.policy, func(ctx context.Context) (domain.BatchEmbeddingResult, error) {
			return a.embedBatch(ctx, batch)
		})
		if err != nil {
			a.logger.Error("Embedding batch failed",
				zap.String("provider", a.provider),
				zap.String("model", a.model),
				zap.Int("batch_offset", offset),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			return nil, asServiceError(fmt.Errorf("embed batch at %d: %w", offset, err))
		}

		if len(res.Embeddings) != len(batch) {
			return nil, fmt.Errorf("%w: provider returned %d vectors for %d texts",
				domain.ErrEmbeddingService, len(res.Embeddings), len(batch))
		}
		for i, vec := range res.Embeddings {
			if dim == 0 {
				dim = len(vec)
			}
			if len(vec) == 0 || len(vec) != dim {
				return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d",
					domain.ErrEmbeddingService, offset+i, len(vec), dim)
			}
		}

		out = append(out, res.Embeddings...)
		tokens += res.TotalTokens
	}

	a.logger.Debug("Embedding completed",
		zap.String("provider", a.provider),
		zap.String("model", a.model),
		zap.Int("texts", len(texts)),
		zap.Int("dimensions", dim),
		zap.Int("total_tokens", tokens),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}

// EmbedOne vectorizes a single text.
func (a *Adapter) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := a.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// HealthCheck delegates to the provider when it supports health checks.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (a *Adapter) embedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := a.inner.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, a.inner, texts)
}

// asServiceError keeps timeouts and cancellation distinguishable and tags every
// other failure as an embedding service error.
func asServiceError(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmbeddingService),
		errors.Is(err, domain.ErrTimeout),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
	}
}
