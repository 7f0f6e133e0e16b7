// Package retrieval finds the chunks nearest to a question.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/circulars/internal/domain"
	"github.com/kailas-cloud/circulars/internal/logger"
	"github.com/kailas-cloud/circulars/internal/metrics"
)

// DefaultTopK is the number of excerpts retrieved when the caller does not ask for a specific count.
const DefaultTopK = 4

// Service resolves the nearest index rows of a question into chunk texts.
type Service struct {
	embedder QueryEmbedder
	corpus   Corpus
	topK     int
}

// New creates a retrieval service. topK <= 0 falls back to DefaultTopK.
func New(embedder QueryEmbedder, corpus Corpus, topK int) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{embedder: embedder, corpus: corpus, topK: topK}
}

// TopK returns the default result count.
func (s *Service) TopK() int { return s.topK }

// Retrieve returns up to k results, best match first. k <= 0 uses the default.
// Rows without a match, without metadata or without stored text are skipped.
// An empty result is not an error.
func (s *Service) Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		k = s.topK
	}
	log := logger.FromContext(ctx)
	start := time.Now()

	vec, err := s.embedder.EmbedOne(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.corpus.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.RetrievalResult, 0, len(hits))
	for _, h := range hits {
		if h.Row < 0 {
			metrics.RetrievalSkippedTotal.WithLabelValues("no_match").Inc()
			continue
		}
		entry, ok := s.corpus.Entry(h.Row)
		if !ok {
			metrics.RetrievalSkippedTotal.WithLabelValues("no_entry").Inc()
			log.Warn("Index row has no metadata", zap.Int("row", h.Row))
			continue
		}
		text, ok := s.corpus.Text(entry.ChunkID)
		if !ok {
			metrics.RetrievalSkippedTotal.WithLabelValues("missing_text").Inc()
			log.Warn("Chunk text missing, skipping",
				zap.String("chunk_id", entry.ChunkID),
				zap.Error(domain.ErrDataConsistency),
			)
			continue
		}
		results = append(results, domain.RetrievalResult{
			DocID:    entry.DocID,
			ChunkID:  entry.ChunkID,
			Position: entry.Position,
			Text:     text,
			Distance: h.Distance,
		})
	}

	log.Debug("Retrieved excerpts",
		zap.Int("k", k),
		zap.Int("hits", len(hits)),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}
