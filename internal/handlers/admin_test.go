package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthscan/internal/config"
	"truthscan/internal/services"
)

func adminTestConfig() config.Auth {
	return config.Auth{
		AdminPassword: "correct horse",
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
	}
}

func adminRouter(results *services.ResultsService) *gin.Engine {
	r := gin.New()
	handler := NewAdminHandler(results, adminTestConfig())
	r.POST("/admin/login", handler.Login)
	admin := r.Group("/admin", handler.AuthRequired())
	admin.GET("/stats", handler.GetStats)
	return r
}

func TestAdminLogin(t *testing.T) {
	r := adminRouter(setupResultsService(t))

	w := postJSON(t, r, "/admin/login", gin.H{"password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, 3600, response.ExpiresIn)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	r := adminRouter(setupResultsService(t))

	w := postJSON(t, r, "/admin/login", gin.H{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, r, "/admin/login", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminStatsRequiresToken(t *testing.T) {
	r := adminRouter(setupResultsService(t))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminStats(t *testing.T) {
	results := setupResultsService(t)
	r := adminRouter(results)

	fake := sampleVerification()
	fake.IsFake = true
	_, err := results.SaveVerification("Fake story", "Fabricated content here", fake)
	require.NoError(t, err)
	_, err = results.SaveVerification("Real story", "Accurate content here", sampleVerification())
	require.NoError(t, err)

	// Log in for a token first
	w := postJSON(t, r, "/admin/login", gin.H{"password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Stats    services.Stats `json:"stats"`
		FakeRate float64        `json:"fake_rate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(2), response.Stats.TotalVerifications)
	assert.Equal(t, int64(1), response.Stats.FakeCount)
	assert.InDelta(t, 0.5, response.FakeRate, 1e-9)
}
