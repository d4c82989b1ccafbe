// Package handlers contains the gin HTTP handlers
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"truthscan/internal/agent"
	"truthscan/internal/worker"
)

// Evaluator is the verification capability the handler depends on
type Evaluator interface {
	Evaluate(ctx context.Context, title, content string) (*agent.VerificationResult, error)
}

// VerifyHandler handles verification requests
type VerifyHandler struct {
	evaluator Evaluator
	worker    *worker.Service
}

// NewVerifyHandler creates a new verify handler. worker may be nil when
// persistence is disabled (e.g. the CLI).
func NewVerifyHandler(evaluator Evaluator, workerService *worker.Service) *VerifyHandler {
	return &VerifyHandler{
		evaluator: evaluator,
		worker:    workerService,
	}
}

// VerifyRequest is the inbound article to verify
type VerifyRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// VerifyResponse is the outbound verification result
type VerifyResponse struct {
	Verdict          string        `json:"verdict"`
	IsFake           bool          `json:"is_fake"`
	Score            int           `json:"score"`
	Confidence       int           `json:"confidence"`
	ProcessingTimeMS int64         `json:"processing_time_ms"`
	Details          VerifyDetails `json:"details"`
}

// VerifyDetails carries the full breakdown for the response body
type VerifyDetails struct {
	Breakdown  agent.ScoreBreakdown `json:"breakdown"`
	Sentiment  interface{}          `json:"sentiment"`
	Factuality interface{}          `json:"factuality"`
	Evidence   interface{}          `json:"evidence"`
}

// Verify handles POST /api/verify
func (h *VerifyHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}

	result, err := h.evaluator.Evaluate(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		var validationErr *agent.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		case errors.Is(err, agent.ErrCapacity):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verification capacity exhausted, try again shortly"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}

	// Persist off the request path; a full queue or failed save never
	// affects the response.
	if h.worker != nil {
		h.worker.Enqueue(req.Title, req.Content, result)
	}

	c.JSON(http.StatusOK, VerifyResponse{
		Verdict:          result.Verdict,
		IsFake:           result.IsFake,
		Score:            result.Score,
		Confidence:       result.Confidence,
		ProcessingTimeMS: result.ProcessingTimeMS,
		Details: VerifyDetails{
			Breakdown:  result.Breakdown,
			Sentiment:  result.Sentiment,
			Factuality: result.Factuality,
			Evidence:   result.Evidence,
		},
	})
}

// HealthCheck handles GET /health
func (h *VerifyHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "truthscan",
	})
}

// WorkerStatus handles GET /api/worker/status
func (h *VerifyHandler) WorkerStatus(c *gin.Context) {
	if h.worker == nil {
		c.JSON(http.StatusOK, gin.H{"worker_status": "disabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"worker_status": h.worker.GetStatus(),
	})
}
