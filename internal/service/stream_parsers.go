package service

import (
	"encoding/json"
	"strings"
)

type rawStreamChunk struct {
	Choices []struct {
		Delta struct {
			Role             string  `json:"role,omitempty"`
			Content          string  `json:"content,omitempty"`
			ReasoningContent *string `json:"reasoning_content,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

func decodeStreamChunk(data []byte, withReasoning bool) (*StreamChunk, error) {
	var raw rawStreamChunk
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	chunk := &StreamChunk{}
	if len(raw.Choices) == 0 {
		return chunk, nil
	}

	choice := raw.Choices[0]
	chunk.Role = choice.Delta.Role
	chunk.Content = choice.Delta.Content
	chunk.Done = choice.FinishReason != nil && *choice.FinishReason != ""
	if withReasoning && choice.Delta.ReasoningContent != nil {
		chunk.ThinkingContent = *choice.Delta.ReasoningContent
	}
	return chunk, nil
}

// OpenAIStreamChunkParser parses standard OpenAI-format streaming chunks
type OpenAIStreamChunkParser struct{}

// ParseChunk converts a standard OpenAI chunk to a StreamChunk
func (p *OpenAIStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	return decodeStreamChunk(data, false)
}

// NVIDIAStreamChunkParser parses NVIDIA/DeepSeek chunks, which carry
// reasoning_content next to the answer
type NVIDIAStreamChunkParser struct{}

// ParseChunk converts an NVIDIA chunk to a StreamChunk
func (p *NVIDIAStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	return decodeStreamChunk(data, true)
}

// IsNVIDIAProvider checks if the base URL is NVIDIA API
func IsNVIDIAProvider(baseURL string) bool {
	return strings.Contains(baseURL, "integrate.api.nvidia.com")
}

// IsOpenAIProvider checks if the base URL is official OpenAI API
func IsOpenAIProvider(baseURL string) bool {
	return strings.Contains(baseURL, "api.openai.com")
}
