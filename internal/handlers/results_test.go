package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"truthscan/internal/models"
	"truthscan/internal/services"
)

func setupResultsService(t *testing.T) *services.ResultsService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return services.NewResultsService(db)
}

func resultsRouter(results *services.ResultsService) *gin.Engine {
	r := gin.New()
	handler := NewResultsHandler(results)
	r.POST("/api/feedback", handler.SubmitFeedback)
	r.GET("/api/history", handler.GetHistory)
	return r
}

func savedVerificationID(t *testing.T, results *services.ResultsService) uuid.UUID {
	t.Helper()
	id, err := results.SaveVerification("Stored headline", "Stored article content", sampleVerification())
	require.NoError(t, err)
	return id
}

func TestSubmitFeedback(t *testing.T) {
	results := setupResultsService(t)
	r := resultsRouter(results)
	id := savedVerificationID(t, results)

	w := postJSON(t, r, "/api/feedback", gin.H{
		"verification_id": id.String(),
		"rating":          4,
		"comment":         "looks right",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "feedback recorded")
}

func TestSubmitFeedbackInvalidRating(t *testing.T) {
	results := setupResultsService(t)
	r := resultsRouter(results)
	id := savedVerificationID(t, results)

	for _, rating := range []int{-1, 6, 100} {
		w := postJSON(t, r, "/api/feedback", gin.H{
			"verification_id": id.String(),
			"rating":          rating,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating %d", rating)
	}
}

func TestSubmitFeedbackBadID(t *testing.T) {
	results := setupResultsService(t)
	r := resultsRouter(results)

	w := postJSON(t, r, "/api/feedback", gin.H{
		"verification_id": "not-a-uuid",
		"rating":          3,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitFeedbackUnknownVerification(t *testing.T) {
	results := setupResultsService(t)
	r := resultsRouter(results)

	w := postJSON(t, r, "/api/feedback", gin.H{
		"verification_id": uuid.New().String(),
		"rating":          3,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHistory(t *testing.T) {
	results := setupResultsService(t)
	r := resultsRouter(results)
	savedVerificationID(t, results)
	savedVerificationID(t, results)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Total         int64                   `json:"total"`
		Limit         int                     `json:"limit"`
		Offset        int                     `json:"offset"`
		Verifications []services.HistoryEntry `json:"verifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(2), response.Total)
	assert.Equal(t, 10, response.Limit)
	assert.Len(t, response.Verifications, 2)
	assert.Equal(t, "Stored headline", response.Verifications[0].Title)
}

func TestGetHistoryClampsParams(t *testing.T) {
	results := setupResultsService(t)
	r := resultsRouter(results)

	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=500&offset=-3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"limit":100`)
	assert.Contains(t, w.Body.String(), `"offset":0`)
}
