package service

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// AnthropicClient generates text with the Anthropic Messages API
type AnthropicClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
}

// NewAnthropicClient creates an Anthropic text generator. opts are passed
// to the SDK client (base URL overrides, retries).
func NewAnthropicClient(apiKey, model string, maxTokens int64, limiter *rate.Limiter, opts ...option.RequestOption) (*AnthropicClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, eris.Wrap(ErrAIDisabled, "anthropic api key is required")
	}
	if maxTokens <= 0 {
		maxTokens = 600
	}
	if limiter == nil {
		limiter = NewRateLimiter(0)
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &AnthropicClient{
		client:    sdk.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		limiter:   limiter,
	}, nil
}

// Name identifies the provider in logs
func (a *AnthropicClient) Name() string {
	return "anthropic"
}

// Generate sends prompt as a single user message and returns the text blocks
func (a *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "rate limiter")
	}

	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []sdk.TextBlockParam{{Text: advisorSystemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
		Temperature: sdk.Float(0.4),
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		out.WriteString(block.Text)
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", eris.New("anthropic: empty response")
	}
	return text, nil
}
