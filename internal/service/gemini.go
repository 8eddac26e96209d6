package service

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient generates text with the Google Gemini API
type GeminiClient struct {
	client    *genai.Client
	modelName string
	limiter   *rate.Limiter
}

// NewGeminiClient creates a client for the Gemini API backend
func NewGeminiClient(ctx context.Context, apiKey, model string, limiter *rate.Limiter) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, eris.Wrap(ErrAIDisabled, "gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, eris.Wrap(err, "create genai client")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	if limiter == nil {
		limiter = NewRateLimiter(0)
	}

	return &GeminiClient{client: client, modelName: model, limiter: limiter}, nil
}

// Name identifies the provider in logs
func (g *GeminiClient) Name() string {
	return "gemini"
}

// Generate sends the prompt and joins the text parts of the response
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", eris.New("prompt must not be empty")
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "rate limiter")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: advisorSystemPrompt}}},
	})
	if err != nil {
		return "", eris.Wrap(err, "generate content")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(strings.TrimSpace(part.Text))
		}
	}

	if builder.Len() == 0 {
		return "", eris.New("gemini api returned empty response")
	}
	return builder.String(), nil
}
