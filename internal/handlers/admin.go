package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"truthscan/internal/auth"
	"truthscan/internal/config"
	"truthscan/internal/services"
)

// AdminHandler serves the admin stats endpoints behind token auth
type AdminHandler struct {
	results *services.ResultsService
	cfg     config.Auth
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(results *services.ResultsService, cfg config.Auth) *AdminHandler {
	return &AdminHandler{results: results, cfg: cfg}
}

// LoginRequest exchanges the admin password for a bearer token
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.AdminPassword)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	token, err := auth.GenerateToken(h.cfg.JWTSecret, "admin", h.cfg.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(h.cfg.TokenTTL.Seconds()),
	})
}

// AuthRequired returns the bearer-token middleware for the admin group
func (h *AdminHandler) AuthRequired() gin.HandlerFunc {
	return auth.Middleware(h.cfg.JWTSecret)
}

// GetStats handles GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.results.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	fakeRate := 0.0
	if stats.TotalVerifications > 0 {
		fakeRate = float64(stats.FakeCount) / float64(stats.TotalVerifications)
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":     stats,
		"fake_rate": fakeRate,
	})
}
