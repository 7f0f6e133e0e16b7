package ingest

import (
	"context"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// DocumentSource lists raw documents.
type DocumentSource interface {
	Documents() ([]domain.Document, error)
}

// ChunkWriter persists the chunks of one document.
type ChunkWriter interface {
	WriteDocument(docID string, chunks []domain.Chunk) error
}

// ChunkReader lists all persisted chunks in index order.
type ChunkReader interface {
	ReadAll() ([]domain.Chunk, error)
}

// TextEmbedder vectorizes texts in order.
type TextEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
