package openai

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/circulars/internal/domain"
	"github.com/kailas-cloud/circulars/internal/metrics"
)

// zeroTemperature is the smallest representable temperature. The client omits a
// literal 0 from the request body, which would leave the server default of 1.
const zeroTemperature = math.SmallestNonzeroFloat32

// Generator produces answers with the chat completions API.
type Generator struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

// GeneratorConfig holds the chat completion settings.
type GeneratorConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion client.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	return &Generator{
		client:    newClient(cfg.APIKey, cfg.BaseURL),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}
}

// Generate implements domain.Generator with deterministic sampling.
func (g *Generator) Generate(ctx context.Context, turns []domain.Turn) (domain.GenerationResult, error) {
	msgs := make([]openai.ChatCompletionMessage, len(turns))
	for i, t := range turns {
		msgs[i] = openai.ChatCompletionMessage{Role: string(t.Role), Content: t.Content}
	}

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: zeroTemperature,
		MaxTokens:   g.maxTokens,
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return domain.GenerationResult{}, classifyError(err, domain.ErrGenerationService, "create chat completion")
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return domain.GenerationResult{}, fmt.Errorf("chat completion returned no choices: %w", domain.ErrGenerationService)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())
	metrics.GenerationTokensTotal.WithLabelValues(g.model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.GenerationTokensTotal.WithLabelValues(g.model, "completion").Add(float64(resp.Usage.CompletionTokens))

	choice := resp.Choices[0]
	g.logger.Debug("Generated answer",
		zap.String("model", g.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(choice.FinishReason)),
		zap.Duration("duration", duration),
	)

	return domain.GenerationResult{
		Text:             choice.Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		FinishReason:     string(choice.FinishReason),
	}, nil
}

// HealthCheck verifies API availability via ListModels.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
