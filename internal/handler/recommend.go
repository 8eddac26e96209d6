package handler

import (
	"net/http"
	"strconv"

	"caradvisor/internal/model"
	"caradvisor/internal/service"

	"github.com/gin-gonic/gin"
)

// RecommendHandler serves recommendations for an explicit profile and
// single listing lookups
type RecommendHandler struct {
	recommender *service.RecommendService
	defaultTopK int
	maxTopK     int
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(recommender *service.RecommendService, defaultTopK, maxTopK int) *RecommendHandler {
	return &RecommendHandler{
		recommender: recommender,
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
	}
}

// Recommend handles POST /api/v1/recommendations
func (h *RecommendHandler) Recommend(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	resp, err := h.recommender.Recommend(c.Request.Context(), req.Profile, nil, req.TopK)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RecommendStream handles POST /api/v1/recommendations/stream
func (h *RecommendHandler) RecommendStream(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	streamRecommendations(c, h.recommender, req.Profile, nil, req.TopK, map[string]any{
		"profile": req.Profile,
		"top_k":   req.TopK,
	})
}

func (h *RecommendHandler) bindRequest(c *gin.Context) (*model.RecommendRequest, bool) {
	var req model.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return nil, false
	}
	if err := req.Profile.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile: " + err.Error()})
		return nil, false
	}
	req.TopK = clampTopK(req.TopK, h.defaultTopK, h.maxTopK)
	return &req, true
}

// GetListing handles GET /api/v1/listings/:id
func (h *RecommendHandler) GetListing(c *gin.Context) {
	listingIDStr := c.Param("id")
	listingID, err := strconv.ParseInt(listingIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	listing, err := h.recommender.GetListing(c.Request.Context(), listingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing: " + err.Error()})
		return
	}

	if listing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	c.JSON(http.StatusOK, listing)
}
