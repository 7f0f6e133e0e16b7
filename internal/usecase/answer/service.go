// Package answer runs one question through retrieval, generation and citation.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/circulars/internal/domain"
	"github.com/kailas-cloud/circulars/internal/logger"
	"github.com/kailas-cloud/circulars/internal/metrics"
	"github.com/kailas-cloud/circulars/internal/usecase/retry"
)

// Service is the question answering pipeline. It holds no per-request state.
type Service struct {
	retriever Retriever
	assembler Assembler
	generator domain.Generator
	citations CitationExtractor
	policy    retry.Policy
	topK      int
}

// New creates the pipeline. topK <= 0 lets the retriever pick its default.
func New(
	retriever Retriever,
	assembler Assembler,
	generator domain.Generator,
	citations CitationExtractor,
	policy retry.Policy,
	topK int,
) *Service {
	return &Service{
		retriever: retriever,
		assembler: assembler,
		generator: generator,
		citations: citations,
		policy:    policy,
		topK:      topK,
	}
}

// Answer answers question given prior history. The caller bounds history.
// An empty retrieval is passed on to the generator, whose instructions cover refusals.
func (s *Service) Answer(ctx context.Context, question string, history []domain.Turn) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("%w: question is empty", domain.ErrInvalidRequest)
	}

	log := logger.FromContext(ctx)
	start := time.Now()

	retrieved, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		metrics.AnswersTotal.WithLabelValues("retrieval_error").Inc()
		return domain.Answer{}, fmt.Errorf("retrieve: %w", err)
	}

	turns := s.assembler.Assemble(question, retrieved, history)

	gen, err := retry.Do(ctx, s.policy, func(ctx context.Context) (domain.GenerationResult, error) {
		return s.generator.Generate(ctx, turns)
	})
	if err != nil {
		metrics.AnswersTotal.WithLabelValues("generation_error").Inc()
		return domain.Answer{}, fmt.Errorf("generate: %w", asGenerationError(err))
	}

	cites := s.citations.Extract(gen.Text, retrieved)
	metrics.AnswersTotal.WithLabelValues("ok").Inc()

	log.Info("Answered question",
		zap.Int("excerpts", len(retrieved)),
		zap.Int("history_turns", len(history)),
		zap.Int("citations", len(cites)),
		zap.Int("prompt_tokens", gen.PromptTokens),
		zap.Int("completion_tokens", gen.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return domain.Answer{
		Question:  question,
		Text:      gen.Text,
		Citations: cites,
		Sources:   retrieved,
	}, nil
}

func asGenerationError(err error) error {
	switch {
	case errors.Is(err, domain.ErrGenerationService),
		errors.Is(err, domain.ErrTimeout),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrGenerationService, err)
	}
}
