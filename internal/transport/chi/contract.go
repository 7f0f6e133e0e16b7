package chi

import (
	"context"

	"github.com/kailas-cloud/circulars/internal/domain"
	healthuc "github.com/kailas-cloud/circulars/internal/usecase/health"
)

// ChatService answers questions within a session.
type ChatService interface {
	Ask(ctx context.Context, sessionID, question string) (domain.Answer, error)
	Reset(ctx context.Context, sessionID string) error
}

// RetrievalService returns the chunks nearest to a question.
type RetrievalService interface {
	Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievalResult, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
