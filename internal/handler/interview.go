package handler

import (
	"errors"
	"io"
	"net/http"

	"caradvisor/internal/model"
	"caradvisor/internal/service"

	"github.com/gin-gonic/gin"
)

// InterviewHandler handles interview-related HTTP requests
type InterviewHandler struct {
	interviews  *service.InterviewService
	recommender *service.RecommendService
	defaultTopK int
	maxTopK     int
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(interviews *service.InterviewService, recommender *service.RecommendService, defaultTopK, maxTopK int) *InterviewHandler {
	return &InterviewHandler{
		interviews:  interviews,
		recommender: recommender,
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
	}
}

type topKRequest struct {
	TopK int `json:"top_k"`
}

// Start handles POST /api/v1/interviews
func (h *InterviewHandler) Start(c *gin.Context) {
	resp, err := h.interviews.Start(c.Request.Context())
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": "Failed to start interview: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Answer handles POST /api/v1/interviews/:id/answers
func (h *InterviewHandler) Answer(c *gin.Context) {
	var req model.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := h.interviews.Answer(c.Request.Context(), c.Param("id"), req.Answer)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Status handles GET /api/v1/interviews/:id
func (h *InterviewHandler) Status(c *gin.Context) {
	status, err := h.interviews.Status(c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Finish handles POST /api/v1/interviews/:id/finish
func (h *InterviewHandler) Finish(c *gin.Context) {
	profile, err := h.interviews.Finish(c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": c.Param("id"), "done": true, "profile": profile})
}

// Recommend handles POST /api/v1/interviews/:id/recommendations
func (h *InterviewHandler) Recommend(c *gin.Context) {
	k, ok := h.bindTopK(c)
	if !ok {
		return
	}

	profile, history, err := h.interviews.CompletedProfile(c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	resp, err := h.recommender.Recommend(c.Request.Context(), profile, history, k)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RecommendStream handles POST /api/v1/interviews/:id/recommendations/stream
func (h *InterviewHandler) RecommendStream(c *gin.Context) {
	k, ok := h.bindTopK(c)
	if !ok {
		return
	}

	sessionID := c.Param("id")
	profile, history, err := h.interviews.CompletedProfile(sessionID)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	streamRecommendations(c, h.recommender, profile, history, k, map[string]any{
		"session_id": sessionID,
		"top_k":      k,
	})
}

// bindTopK reads the optional {"top_k": n} body. An empty body is fine.
func (h *InterviewHandler) bindTopK(c *gin.Context) (int, bool) {
	var req topKRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return 0, false
	}
	return clampTopK(req.TopK, h.defaultTopK, h.maxTopK), true
}
