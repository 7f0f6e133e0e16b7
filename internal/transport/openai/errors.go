package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// classifyError maps a client error to a domain error. Deadlines become
// domain.ErrTimeout, everything else from the provider is wrapped with kind.
// Caller cancellation is passed through untouched.
func classifyError(err error, kind error, op string) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, domain.ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w", op, domain.ErrTimeout)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s: API error %d: %s: %w", op, reqErr.HTTPStatusCode, detail, kind)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: API error %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, kind)
	}

	return fmt.Errorf("%s: request failed: %v: %w", op, err, kind)
}

// extractDetail extracts the "detail" field from a JSON error body
// (used by several OpenAI-compatible gateways).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}

func isTimeout(err error) bool {
	return errors.Is(err, domain.ErrTimeout)
}
