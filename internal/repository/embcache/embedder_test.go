package embcache

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/circulars/internal/domain"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)

	result, err := ce.Embed(context.Background(), "premium grace period")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if len(ms.data) != 1 {
		t.Fatalf("expected one cache entry, got %d", len(ms.data))
	}
}

func TestEmbed_CacheHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	cached := vectorToCacheBytes([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	result, err := ce.Embed(context.Background(), "premium grace period")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Fatalf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingService}
	ce, _ := newTestCachedEmbedder(t, inner)

	_, err := ce.Embed(context.Background(), "premium grace period")
	if !errors.Is(err, domain.ErrEmbeddingService) {
		t.Fatalf("expected wrapped ErrEmbeddingService, got %v", err)
	}
}

func TestEmbed_StoreErrorIsNotFatal(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		return errors.New("connection reset")
	}

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("cache failures must not fail embedding: %v", err)
	}
}

func TestCacheKey_ScopedByModel(t *testing.T) {
	inner := &mockEmbedder{}
	a := New(inner, &mockKVStore{}, "model-a", 0, nil, zap.NewNop())
	b := New(inner, &mockKVStore{}, "model-b", 0, nil, zap.NewNop())

	if a.cacheKey("same text") == b.cacheKey("same text") {
		t.Fatal("different models must not share cache keys")
	}
	if a.cacheKey("one") == a.cacheKey("two") {
		t.Fatal("different texts must not share cache keys")
	}
}

func TestCacheKey_ScopedByDimensions(t *testing.T) {
	inner := &mockEmbedder{}
	full := New(inner, &mockKVStore{}, "text-embedding-3-small", 0, nil, zap.NewNop())
	short := New(inner, &mockKVStore{}, "text-embedding-3-small", 512, nil, zap.NewNop())

	if full.cacheKey("same text") == short.cacheKey("same text") {
		t.Fatal("different dimensions must not share cache keys")
	}
}

func TestEmbed_DimensionChangeDoesNotServeStaleVectors(t *testing.T) {
	ms := &mockKVStore{data: map[string][]byte{}}
	ctx := context.Background()

	wide := &mockEmbedder{result: domain.EmbeddingResult{Embedding: make([]float32, 1536)}}
	if _, err := New(wide, ms, "text-embedding-3-small", 1536, nil, zap.NewNop()).Embed(ctx, "q"); err != nil {
		t.Fatal(err)
	}

	narrow := &mockEmbedder{result: domain.EmbeddingResult{Embedding: make([]float32, 512)}}
	res, err := New(narrow, ms, "text-embedding-3-small", 512, nil, zap.NewNop()).Embed(ctx, "q")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Embedding) != 512 {
		t.Fatalf("expected 512-dim vector, got %d", len(res.Embedding))
	}
}

func TestEmbed_WrongLengthCacheEntryIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2, 3, 4}}}
	ms := &mockKVStore{data: map[string][]byte{}}
	ce := New(inner, ms, "m", 4, nil, zap.NewNop())
	ms.data[ce.cacheKey("q")] = vectorToCacheBytes([]float32{9, 9})

	res, err := ce.BatchEmbed(context.Background(), []string{"q"})
	if err != nil {
		t.Fatal(err)
	}
	if inner.batchCalls != 1 {
		t.Fatalf("expected the inner embedder to be called, got %d calls", inner.batchCalls)
	}
	if len(res.Embeddings[0]) != 4 {
		t.Fatalf("expected fresh 4-dim vector, got %v", res.Embeddings[0])
	}
}

func TestBatchEmbed_AllMisses(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2},
		PromptTokens: 5,
		TotalTokens:  5,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)

	res, err := ce.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(res.Embeddings))
	}
	if res.TotalTokens != 15 {
		t.Fatalf("expected 15 tokens, got %d", res.TotalTokens)
	}
	if inner.batchCalls != 1 {
		t.Fatalf("expected 1 batch call, got %d", inner.batchCalls)
	}
	if len(ms.data) != 3 {
		t.Fatalf("expected 3 cache entries, got %d", len(ms.data))
	}
}

func TestBatchEmbed_AllHits(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{9}}}
	ce, _ := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	if _, err := ce.BatchEmbed(ctx, []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	res, err := ce.BatchEmbed(ctx, []string{"b", "a"})
	if err != nil {
		t.Fatal(err)
	}
	if inner.batchCalls != 1 {
		t.Fatalf("second batch should be served from cache, got %d inner calls", inner.batchCalls)
	}
	if res.TotalTokens != 0 || len(res.Embeddings) != 2 {
		t.Fatalf("unexpected cached result: %+v", res)
	}
}

func TestBatchEmbed_MixedHitsMisses(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 1}, TotalTokens: 2}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ms.data[ce.cacheKey("cached")] = vectorToCacheBytes([]float32{7, 7})

	res, err := ce.BatchEmbed(context.Background(), []string{"fresh1", "cached", "fresh2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(inner.batchInputs) != 1 || len(inner.batchInputs[0]) != 2 {
		t.Fatalf("only misses should reach the provider, got %v", inner.batchInputs)
	}
	if inner.batchInputs[0][0] != "fresh1" || inner.batchInputs[0][1] != "fresh2" {
		t.Fatalf("unexpected miss order %v", inner.batchInputs[0])
	}
	if res.Embeddings[1][0] != 7 || res.Embeddings[0][0] != 1 || res.Embeddings[2][0] != 1 {
		t.Fatalf("order not preserved: %v", res.Embeddings)
	}
	if res.TotalTokens != 4 {
		t.Fatalf("expected 4 tokens for 2 misses, got %d", res.TotalTokens)
	}
}

func TestBatchEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{batchErr: domain.ErrTimeout}
	ce, ms := newTestCachedEmbedder(t, inner)

	_, err := ce.BatchEmbed(context.Background(), []string{"a"})
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("expected wrapped ErrTimeout, got %v", err)
	}
	if len(ms.data) != 0 {
		t.Fatal("nothing should be cached on failure")
	}
}

func TestBatchEmbed_Empty(t *testing.T) {
	inner := &mockEmbedder{}
	ce, _ := newTestCachedEmbedder(t, inner)

	res, err := ce.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Embeddings) != 0 || inner.batchCalls != 0 {
		t.Fatalf("empty input should not call provider: %+v", res)
	}
}

func TestBatchEmbed_FallbackWithoutBatchSupport(t *testing.T) {
	inner := &singleEmbedder{}
	ce, _ := newTestCachedEmbedder(t, inner)

	res, err := ce.BatchEmbed(context.Background(), []string{"ab", "abcd"})
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 single calls, got %d", inner.calls)
	}
	if res.Embeddings[0][0] != 2 || res.Embeddings[1][0] != 4 {
		t.Fatalf("unexpected fallback vectors %v", res.Embeddings)
	}
}

func TestCacheMetrics(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce := New(inner, &mockKVStore{data: map[string][]byte{}}, "m", 0, counter, zap.NewNop())
	ctx := context.Background()

	if _, err := ce.Embed(ctx, "q"); err != nil {
		t.Fatal(err)
	}
	if _, err := ce.Embed(ctx, "q"); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit = %v, want 1", got)
	}
}

func TestBytesToVector_Invalid(t *testing.T) {
	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for length not divisible by 4")
	}
}
