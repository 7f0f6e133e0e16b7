package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/circulars/internal/domain"
	healthuc "github.com/kailas-cloud/circulars/internal/usecase/health"
)

type mockChat struct {
	askFn     func(ctx context.Context, sessionID, question string) (domain.Answer, error)
	resetFn   func(ctx context.Context, sessionID string) error
	sessionID string
}

func (m *mockChat) Ask(ctx context.Context, sessionID, question string) (domain.Answer, error) {
	m.sessionID = sessionID
	if m.askFn != nil {
		return m.askFn(ctx, sessionID, question)
	}
	return domain.Answer{Question: question, Text: "answer"}, nil
}

func (m *mockChat) Reset(ctx context.Context, sessionID string) error {
	m.sessionID = sessionID
	if m.resetFn != nil {
		return m.resetFn(ctx, sessionID)
	}
	return nil
}

type mockRetrieval struct {
	retrieveFn func(ctx context.Context, question string, k int) ([]domain.RetrievalResult, error)
	k          int
}

func (m *mockRetrieval) Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievalResult, error) {
	m.k = k
	if m.retrieveFn != nil {
		return m.retrieveFn(ctx, question, k)
	}
	return nil, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(chat *mockChat, retrieval *mockRetrieval, health *mockHealth) http.Handler {
	if chat == nil {
		chat = &mockChat{}
	}
	if retrieval == nil {
		retrieval = &mockRetrieval{}
	}
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	return NewServer(chat, retrieval, health, zap.NewNop()).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
