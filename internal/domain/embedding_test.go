package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	calls []string
	fail  string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.calls = append(s.calls, text)
	if text == s.fail {
		return EmbeddingResult{}, errors.New("provider down")
	}
	return EmbeddingResult{Embedding: []float32{float32(len(text))}, PromptTokens: 2, TotalTokens: 3}, nil
}

func TestBatchFallback_PreservesOrderAndSumsUsage(t *testing.T) {
	inner := &stubEmbedder{}

	res, err := BatchFallback(context.Background(), inner, []string{"a", "bbb", "cc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float32{1, 3, 2}
	for i, v := range want {
		if res.Embeddings[i][0] != v {
			t.Errorf("embedding[%d] = %v, want %v", i, res.Embeddings[i][0], v)
		}
	}
	if res.PromptTokens != 6 || res.TotalTokens != 9 {
		t.Errorf("usage = %d/%d, want 6/9", res.PromptTokens, res.TotalTokens)
	}
}

func TestBatchFallback_StopsOnError(t *testing.T) {
	inner := &stubEmbedder{fail: "bad"}

	_, err := BatchFallback(context.Background(), inner, []string{"ok", "bad", "never"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(inner.calls) != 2 {
		t.Errorf("expected 2 calls, got %d", len(inner.calls))
	}
}
