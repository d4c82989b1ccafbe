package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"truthscan/internal/stream"
)

// LiveHandler upgrades clients onto the verification event stream
type LiveHandler struct {
	hub *stream.Hub
}

// NewLiveHandler creates a new live stream handler
func NewLiveHandler(hub *stream.Hub) *LiveHandler {
	return &LiveHandler{hub: hub}
}

// Subscribe handles GET /ws/live
func (h *LiveHandler) Subscribe(c *gin.Context) {
	if err := h.hub.Subscribe(c.Writer, c.Request); err != nil {
		// Upgrade failures already wrote a response
		c.Abort()
		return
	}
}

// StreamStatus handles GET /api/stream/status
func (h *LiveHandler) StreamStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"subscribers": h.hub.ClientCount(),
	})
}
