package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"caradvisor/internal/model"
	"caradvisor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
)

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case eris.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case eris.Is(err, service.ErrInterviewDone), eris.Is(err, service.ErrInterviewNotDone):
		return http.StatusConflict
	case eris.Is(err, service.ErrAIDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// clampTopK applies the default and the upper limit to a requested k
func clampTopK(k, defaultK, maxK int) int {
	if k <= 0 {
		k = defaultK
	}
	if maxK > 0 && k > maxK {
		k = maxK
	}
	return k
}

// streamRecommendations runs the recommendation pipeline and forwards every
// pipeline event to the client as a Server-Sent Event
func streamRecommendations(c *gin.Context, recommender *service.RecommendService, p *model.Profile, history []model.Turn, k int, start map[string]any) {
	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	ctx := c.Request.Context()

	sendSSE(c, "start", start)
	flusher.Flush()

	// results and done are emitted by the service itself
	_, err := recommender.RecommendStream(ctx, p, history, k, func(event string, data any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})
	if err != nil && ctx.Err() == nil {
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
	}
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
