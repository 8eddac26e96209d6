package service

import (
	"context"

	"caradvisor/internal/model"

	"golang.org/x/time/rate"
)

// TextGenerator turns a prompt into prose. Implementations must honour ctx
// cancellation so callers can bound the wait.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Classifier reads one answer and returns the value of a single profile
// field, or an empty profile when the answer does not state it
type Classifier interface {
	Classify(ctx context.Context, question, answer string, field model.Field) (*model.Profile, error)
}

// Embedder produces vector embeddings for listing texts
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	IsEnabled() bool
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Thinking/reasoning content (provider-specific, e.g., DeepSeek)
	ThinkingContent string

	Role string
	Done bool
}

var (
	_ StreamingGenerator = (*OpenAIClient)(nil)
	_ Embedder           = (*OpenAIClient)(nil)
	_ TextGenerator      = (*GeminiClient)(nil)
	_ TextGenerator      = (*AnthropicClient)(nil)
	_ Classifier         = (*LLMClassifier)(nil)
)

// StreamingGenerator is implemented by generators that can deliver the
// response incrementally. onDelta receives each content fragment.
type StreamingGenerator interface {
	TextGenerator
	GenerateStream(ctx context.Context, prompt string, onDelta func(delta string) error) (string, error)
}

// NewRateLimiter returns the limiter shared by all provider calls.
// rps <= 0 disables limiting.
func NewRateLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
