package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"truthscan/internal/agent"
	"truthscan/internal/models"
	"truthscan/internal/services"
)

func setupService(t *testing.T, queueSize, workers int) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	results := services.NewResultsService(db)
	return NewService(results, nil, queueSize, workers), db
}

func testResult() *agent.VerificationResult {
	return &agent.VerificationResult{
		Verdict:    agent.VerdictReal,
		Score:      70,
		Confidence: 60,
	}
}

func waitForProcessed(t *testing.T, s *Service, want int64) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if s.processed.Load() >= want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d processed jobs, got %d", want, s.processed.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestServiceStartStop(t *testing.T) {
	s, _ := setupService(t, 8, 2)
	assert.False(t, s.IsRunning())

	s.Start()
	assert.True(t, s.IsRunning())

	// Start is idempotent
	s.Start()
	assert.True(t, s.IsRunning())

	s.Stop()
	assert.False(t, s.IsRunning())

	// Stop is idempotent
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestServicePersistsEnqueuedResults(t *testing.T) {
	s, db := setupService(t, 8, 2)
	s.Start()
	defer s.Stop()

	assert.True(t, s.Enqueue("First article", "Content of the first article", testResult()))
	assert.True(t, s.Enqueue("Second article", "Content of the second article", testResult()))

	waitForProcessed(t, s, 2)

	var count int64
	require.NoError(t, db.Model(&models.Verification{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestServiceDropsWhenQueueFull(t *testing.T) {
	// Never started, so the queue only drains into capacity
	s, _ := setupService(t, 1, 1)

	assert.True(t, s.Enqueue("Fits", "This one fits in the queue", testResult()))
	assert.False(t, s.Enqueue("Dropped", "This one does not fit", testResult()))
	assert.Equal(t, int64(1), s.dropped.Load())
}

func TestServiceGetStatus(t *testing.T) {
	s, _ := setupService(t, 8, 1)
	s.Start()
	defer s.Stop()

	s.Enqueue("Article", "Content of the article", testResult())
	waitForProcessed(t, s, 1)

	status := s.GetStatus()
	assert.Equal(t, true, status["running"])
	assert.Equal(t, int64(1), status["processed"])
	assert.Equal(t, int64(0), status["dropped"])
}
