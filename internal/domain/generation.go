package domain

import "context"

// Generator produces a chat completion for an ordered message sequence.
type Generator interface {
	Generate(ctx context.Context, messages []Turn) (GenerationResult, error)
}

// GenerationResult carries the completion text and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	FinishReason     string
}
