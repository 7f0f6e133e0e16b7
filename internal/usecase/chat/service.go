// Package chat adds conversation memory on top of the answer pipeline.
package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/circulars/internal/domain"
	"github.com/kailas-cloud/circulars/internal/logger"
)

// DefaultHistoryTurns keeps the last three question/answer pairs.
const DefaultHistoryTurns = 6

// Service answers questions within a session.
type Service struct {
	answerer     Answerer
	sessions     SessionStore
	historyTurns int
}

// New creates a chat service. historyTurns < 0 falls back to DefaultHistoryTurns;
// 0 disables history.
func New(answerer Answerer, sessions SessionStore, historyTurns int) *Service {
	if historyTurns < 0 {
		historyTurns = DefaultHistoryTurns
	}
	return &Service{answerer: answerer, sessions: sessions, historyTurns: historyTurns}
}

// Ask answers question using the session's most recent turns as history. On
// success the question and the rendered answer, including cited sources, are
// appended to the session. A failed question leaves the session unchanged.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (domain.Answer, error) {
	if sessionID == "" {
		return domain.Answer{}, fmt.Errorf("%w: session id is empty", domain.ErrInvalidRequest)
	}
	ctx = logger.WithFields(ctx, zap.String("session_id", sessionID))

	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("load history: %w", err)
	}

	ans, err := s.answerer.Answer(ctx, question, domain.LastTurns(history, s.historyTurns))
	if err != nil {
		return domain.Answer{}, err
	}

	if err := s.sessions.Append(ctx, sessionID,
		domain.Turn{Role: domain.RoleUser, Content: ans.Question},
		domain.Turn{Role: domain.RoleAssistant, Content: ans.Render()},
	); err != nil {
		logger.FromContext(ctx).Warn("Failed to save chat history", zap.Error(err))
	}
	return ans, nil
}

// Reset forgets a session.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}
