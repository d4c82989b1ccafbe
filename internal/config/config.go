// Package config loads application configuration from environment
// variables, with an optional YAML override file for the scoring policy.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Port      string
	GinMode   string
	Database  Database
	Reddit    Reddit
	Wikipedia Wikipedia
	News      News
	LLM       LLM
	Scoring   Scoring
	Worker    Worker
	Auth      Auth
}

// Database holds database connection settings
type Database struct {
	Driver   string // "postgres" or "sqlite"
	Path     string // sqlite file path
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Reddit holds credentials for the discussion evidence provider
type Reddit struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	BaseURL      string // override for tests
	AuthURL      string
}

// Wikipedia holds settings for the reference evidence provider
type Wikipedia struct {
	BaseURL  string
	Language string
}

// News holds API keys for the news evidence provider
type News struct {
	NewsAPIKey   string
	GNewsKey     string
	RSSEnabled   bool
	NewsAPIURL   string
	GNewsURL     string
	GoogleRSSURL string
}

// LLM holds settings for the generative-model client
type LLM struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	RateLimit   float64 // requests per second
}

// Scoring is the aggregation policy: weights, thresholds and timeouts.
// The values are hard-coded policy choices carried over from the original
// tuning; they are configurable, not derived.
type Scoring struct {
	SourceCredibilityWeight  float64       `yaml:"source_credibility_weight"`
	ContentConsistencyWeight float64       `yaml:"content_consistency_weight"`
	FactVerificationWeight   float64       `yaml:"fact_verification_weight"`
	FakeScoreCutoff          int           `yaml:"fake_score_cutoff"`
	MinRealConfidence        int           `yaml:"min_real_confidence"`
	UnavailablePenalty       int           `yaml:"unavailable_penalty"`
	CredibilityFloor         int           `yaml:"credibility_floor"`
	MaxEvidenceItems         int           `yaml:"max_evidence_items"`
	ProviderTimeout          time.Duration `yaml:"provider_timeout"`
	FactualityTimeout        time.Duration `yaml:"factuality_timeout"`
	OverallTimeout           time.Duration `yaml:"overall_timeout"`
	MaxConcurrent            int           `yaml:"max_concurrent"`
}

// Worker holds background persistence worker settings
type Worker struct {
	QueueSize int
	Workers   int
}

// Auth holds admin authentication settings
type Auth struct {
	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration
}

// DefaultScoring returns the baseline scoring policy
func DefaultScoring() Scoring {
	return Scoring{
		SourceCredibilityWeight:  0.25,
		ContentConsistencyWeight: 0.25,
		FactVerificationWeight:   0.50,
		FakeScoreCutoff:          50,
		MinRealConfidence:        40,
		UnavailablePenalty:       20,
		CredibilityFloor:         10,
		MaxEvidenceItems:         10,
		ProviderTimeout:          15 * time.Second,
		FactualityTimeout:        30 * time.Second,
		OverallTimeout:           60 * time.Second,
		MaxConcurrent:            16,
	}
}

// Load builds the configuration from environment variables. When
// SCORING_CONFIG points at a YAML file, the scoring policy is overridden
// from it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", ""),
		Database: Database{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DB_PATH", "truthscan.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "truthscan"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Reddit: Reddit{
			ClientID:     getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:    getEnv("REDDIT_USER_AGENT", "truthscan/1.0"),
			BaseURL:      getEnv("REDDIT_BASE_URL", ""),
			AuthURL:      getEnv("REDDIT_AUTH_URL", ""),
		},
		Wikipedia: Wikipedia{
			Language: getEnv("WIKIPEDIA_LANGUAGE", "en"),
			BaseURL:  getEnv("WIKIPEDIA_BASE_URL", ""),
		},
		News: News{
			NewsAPIKey:   getEnv("NEWSAPI_KEY", ""),
			GNewsKey:     getEnv("GNEWS_API_KEY", ""),
			RSSEnabled:   getBoolEnv("NEWS_RSS_ENABLED", true),
			NewsAPIURL:   getEnv("NEWSAPI_URL", ""),
			GNewsURL:     getEnv("GNEWS_URL", ""),
			GoogleRSSURL: getEnv("GOOGLE_NEWS_RSS_URL", ""),
		},
		LLM: LLM{
			APIKey:      getEnv("LLM_API_KEY", ""),
			Model:       getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			BaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getFloatEnv("LLM_TEMPERATURE", 0.1),
			RateLimit:   getFloatEnv("LLM_RATE_LIMIT", 2.0),
		},
		Scoring: DefaultScoring(),
		Worker: Worker{
			QueueSize: getIntEnv("WORKER_QUEUE_SIZE", 64),
			Workers:   getIntEnv("WORKER_COUNT", 2),
		},
		Auth: Auth{
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
			JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
			TokenTTL:      time.Duration(getIntEnv("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		},
	}

	if path := os.Getenv("SCORING_CONFIG"); path != "" {
		if err := loadScoringFile(path, &cfg.Scoring); err != nil {
			return nil, fmt.Errorf("failed to load scoring config: %w", err)
		}
	}
	if err := cfg.Scoring.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadScoringFile overrides scoring policy values from a YAML file.
// Fields missing from the file keep their defaults.
func loadScoringFile(path string, scoring *Scoring) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, scoring)
}

func (s Scoring) validate() error {
	sum := s.SourceCredibilityWeight + s.ContentConsistencyWeight + s.FactVerificationWeight
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.2f", sum)
	}
	if s.MaxEvidenceItems < 1 {
		return fmt.Errorf("max_evidence_items must be at least 1")
	}
	if s.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1")
	}
	return nil
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
