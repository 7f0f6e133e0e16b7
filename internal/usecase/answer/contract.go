package answer

import (
	"context"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// Retriever finds excerpts for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievalResult, error)
}

// Assembler builds the generator input.
type Assembler interface {
	Assemble(question string, retrieved []domain.RetrievalResult, history []domain.Turn) []domain.Turn
}

// CitationExtractor maps answer sentences back to excerpts.
type CitationExtractor interface {
	Extract(answer string, retrieved []domain.RetrievalResult) []domain.Citation
}
