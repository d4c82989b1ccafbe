package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"truthscan/internal/services"
)

// ResultsHandler serves the verification history and accepts feedback
type ResultsHandler struct {
	results *services.ResultsService
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(results *services.ResultsService) *ResultsHandler {
	return &ResultsHandler{results: results}
}

// FeedbackRequest is a user rating of a verification result
type FeedbackRequest struct {
	VerificationID string `json:"verification_id" binding:"required"`
	Rating         int    `json:"rating" binding:"required"`
	Comment        string `json:"comment"`
}

// SubmitFeedback handles POST /api/feedback
func (h *ResultsHandler) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "verification_id and rating are required"})
		return
	}

	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	verificationID, err := uuid.Parse(req.VerificationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid verification_id format"})
		return
	}

	if err := h.results.RecordFeedback(verificationID, req.Rating, req.Comment); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "verification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "feedback recorded"})
}

// GetHistory handles GET /api/history
func (h *ResultsHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	entries, total, err := h.results.History(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":         total,
		"limit":         limit,
		"offset":        offset,
		"verifications": entries,
	})
}
