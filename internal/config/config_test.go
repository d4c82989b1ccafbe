package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.News.RSSEnabled)
	assert.Equal(t, DefaultScoring(), cfg.Scoring)
	assert.Equal(t, 64, cfg.Worker.QueueSize)
	assert.Equal(t, 2, cfg.Worker.Workers)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("NEWS_RSS_ENABLED", "false")
	t.Setenv("WORKER_COUNT", "5")
	t.Setenv("LLM_TEMPERATURE", "0.7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.News.RSSEnabled)
	assert.Equal(t, 5, cfg.Worker.Workers)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
}

func TestScoringYAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	content := []byte(`source_credibility_weight: 0.3
content_consistency_weight: 0.3
fact_verification_weight: 0.4
fake_score_cutoff: 60
unavailable_penalty: 10
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("SCORING_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.3, cfg.Scoring.SourceCredibilityWeight, 1e-9)
	assert.InDelta(t, 0.4, cfg.Scoring.FactVerificationWeight, 1e-9)
	assert.Equal(t, 60, cfg.Scoring.FakeScoreCutoff)
	assert.Equal(t, 10, cfg.Scoring.UnavailablePenalty)
	// Fields absent from the file keep their defaults
	assert.Equal(t, DefaultScoring().MinRealConfidence, cfg.Scoring.MinRealConfidence)
	assert.Equal(t, DefaultScoring().MaxConcurrent, cfg.Scoring.MaxConcurrent)
}

func TestScoringYAMLOverrideMissingFile(t *testing.T) {
	t.Setenv("SCORING_CONFIG", filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestScoringWeightsMustSumToOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	content := []byte(`source_credibility_weight: 0.5
content_consistency_weight: 0.5
fact_verification_weight: 0.5
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("SCORING_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1.0")
}

func TestScoringValidateBounds(t *testing.T) {
	scoring := DefaultScoring()
	assert.NoError(t, scoring.validate())

	scoring.MaxEvidenceItems = 0
	assert.Error(t, scoring.validate())

	scoring = DefaultScoring()
	scoring.MaxConcurrent = 0
	assert.Error(t, scoring.validate())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_FLOAT", "2.5")
	t.Setenv("TEST_BOOL", "1")
	t.Setenv("TEST_BAD_INT", "nope")

	assert.Equal(t, "value", getEnv("TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", getEnv("TEST_UNSET_KEY", "fallback"))
	assert.Equal(t, 42, getIntEnv("TEST_INT", 7))
	assert.Equal(t, 7, getIntEnv("TEST_BAD_INT", 7))
	assert.InDelta(t, 2.5, getFloatEnv("TEST_FLOAT", 1.0), 1e-9)
	assert.True(t, getBoolEnv("TEST_BOOL", false))
	assert.False(t, getBoolEnv("TEST_UNSET_KEY", false))
}
