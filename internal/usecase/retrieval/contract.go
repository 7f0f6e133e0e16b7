package retrieval

import (
	"context"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// QueryEmbedder vectorizes a question.
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Corpus is the read-only view over the index, its row metadata and chunk texts.
type Corpus interface {
	Search(query []float32, k int) ([]domain.Neighbor, error)
	Entry(row int) (domain.IndexEntry, bool)
	Text(chunkID string) (string, bool)
}
