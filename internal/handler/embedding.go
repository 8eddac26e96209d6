package handler

import (
	"fmt"
	"net/http"

	"caradvisor/internal/model"
	"caradvisor/internal/service"

	"github.com/gin-gonic/gin"
)

// EmbeddingHandler handles embedding-related HTTP requests
type EmbeddingHandler struct {
	embeddings *service.EmbeddingService
	dimensions int
}

// NewEmbeddingHandler creates a new embedding handler. dimensions <= 0
// skips the dimension check.
func NewEmbeddingHandler(embeddings *service.EmbeddingService, dimensions int) *EmbeddingHandler {
	return &EmbeddingHandler{
		embeddings: embeddings,
		dimensions: dimensions,
	}
}

// BatchUpdate handles POST /api/v1/embeddings/batch
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req model.EmbeddingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No embeddings provided"})
		return
	}

	if h.dimensions > 0 {
		for i, item := range req.Embeddings {
			if len(item.Embedding) != h.dimensions {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": fmt.Sprintf("Invalid embedding dimension at index %d, expected %d", i, h.dimensions),
				})
				return
			}
		}
	}

	success, errs := h.embeddings.Update(c.Request.Context(), req.Embeddings)

	response := model.EmbeddingBatchResponse{
		Success: success,
		Failed:  len(req.Embeddings) - success,
		Errors:  errs,
	}

	switch {
	case success == 0 && len(errs) > 0:
		c.JSON(http.StatusUnprocessableEntity, response)
	case len(errs) > 0:
		c.JSON(http.StatusPartialContent, response)
	default:
		c.JSON(http.StatusOK, response)
	}
}
