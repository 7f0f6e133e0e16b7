package chat

import (
	"context"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// Answerer runs the question answering pipeline.
type Answerer interface {
	Answer(ctx context.Context, question string, history []domain.Turn) (domain.Answer, error)
}

// SessionStore keeps conversation history per session.
type SessionStore interface {
	History(ctx context.Context, id string) ([]domain.Turn, error)
	Append(ctx context.Context, id string, turns ...domain.Turn) error
	Delete(ctx context.Context, id string) error
}
