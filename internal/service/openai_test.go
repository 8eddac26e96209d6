package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caradvisor/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAIClient(&config.OpenAIConfig{
		APIKey:    "test-key",
		APIBase:   srv.URL,
		ChatModel: "test-model",
		BatchSize: 2,
		Timeout:   5,
		Enabled:   true,
	}, nil, nil)
}

func TestOpenAIGenerate(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "explain this", req.Messages[1].Content)

		fmt.Fprint(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"  Great value.  "}}]}`)
	})

	out, err := client.Generate(context.Background(), "explain this")
	require.NoError(t, err)
	assert.Equal(t, "Great value.", out)
}

func TestOpenAIGenerateHTTPError(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestOpenAIDisabled(t *testing.T) {
	client := NewOpenAIClient(&config.OpenAIConfig{APIBase: "http://localhost"}, nil, nil)
	_, err := client.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrAIDisabled)
	assert.False(t, client.IsEnabled())
}

func TestOpenAIGenerateStream(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		for _, part := range []string{"Solid ", "pick."} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var deltas []string
	out, err := client.GenerateStream(context.Background(), "hi", func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Solid pick.", out)
	assert.Equal(t, []string{"Solid ", "pick."}, deltas)
}

func TestOpenAICreateEmbeddingsBatches(t *testing.T) {
	calls := 0
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req EmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var data []string
		for i := range req.Input {
			data = append(data, fmt.Sprintf(`{"index":%d,"embedding":[%d.5]}`, i, len(req.Input[i])))
		}
		fmt.Fprintf(w, `{"model":"m","data":[%s]}`, strings.Join(data, ","))
	})

	out, err := client.CreateEmbeddings(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, out, 3)
	assert.Equal(t, []float32{3.5}, out[2])
}

func TestStreamChunkParsers(t *testing.T) {
	data := []byte(`{"choices":[{"delta":{"content":"hi","reasoning_content":"hmm"},"finish_reason":"stop"}]}`)

	chunk, err := (&NVIDIAStreamChunkParser{}).ParseChunk(data)
	require.NoError(t, err)
	assert.Equal(t, "hi", chunk.Content)
	assert.Equal(t, "hmm", chunk.ThinkingContent)
	assert.True(t, chunk.Done)

	chunk, err = (&OpenAIStreamChunkParser{}).ParseChunk(data)
	require.NoError(t, err)
	assert.Equal(t, "", chunk.ThinkingContent)

	_, err = (&OpenAIStreamChunkParser{}).ParseChunk([]byte("not json"))
	assert.Error(t, err)

	assert.True(t, IsNVIDIAProvider("https://integrate.api.nvidia.com/v1"))
	assert.True(t, IsOpenAIProvider("https://api.openai.com/v1"))
}
