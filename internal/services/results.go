// Package services contains the persistence-facing application services
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"truthscan/internal/agent"
	"truthscan/internal/evidence"
	"truthscan/internal/models"
)

// ErrNotFound is returned when a referenced verification does not exist
var ErrNotFound = errors.New("verification not found")

// ResultsService persists verification results and the feedback attached
// to them, and serves the history views
type ResultsService struct {
	db *gorm.DB
}

// NewResultsService creates a new results service
func NewResultsService(db *gorm.DB) *ResultsService {
	return &ResultsService{db: db}
}

// SaveVerification stores a completed result with its evidence items in
// one transaction and returns the assigned record ID
func (s *ResultsService) SaveVerification(title, content string, result *agent.VerificationResult) (uuid.UUID, error) {
	record := models.Verification{
		ID:      uuid.New(),
		Title:   title,
		Content: content,

		Verdict:    result.Verdict,
		IsFake:     result.IsFake,
		Score:      result.Score,
		Confidence: result.Confidence,

		SourceCredibility:  result.Breakdown.SourceCredibility,
		ContentConsistency: result.Breakdown.ContentConsistency,
		FactVerification:   result.Breakdown.FactVerification,

		SentimentLabel: result.Sentiment.Label,
		SentimentScore: result.Sentiment.Score,

		FactualityVerdict:    result.Factuality.Verdict,
		FactualScore:         result.Factuality.FactualScore,
		FactualityConfidence: result.Factuality.Confidence,
		Rationale:            result.Factuality.Rationale,

		DiscussionAvailable: result.Evidence.Discussion.Available,
		ReferenceAvailable:  result.Evidence.Reference.Available,
		NewsAvailable:       result.Evidence.News.Available,

		ProcessingTimeMS: result.ProcessingTimeMS,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		evidenceRecords := collectEvidenceRecords(record.ID, result.Evidence)
		if len(evidenceRecords) == 0 {
			return nil
		}
		return tx.Create(&evidenceRecords).Error
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save verification: %w", err)
	}

	return record.ID, nil
}

func collectEvidenceRecords(verificationID uuid.UUID, ev evidence.Set) []models.EvidenceRecord {
	var records []models.EvidenceRecord
	for _, bundle := range []evidence.Bundle{ev.Discussion, ev.Reference, ev.News} {
		for _, item := range bundle.Items {
			records = append(records, models.EvidenceRecord{
				ID:             uuid.New(),
				VerificationID: verificationID,
				Provider:       bundle.ProviderID,
				SourceLabel:    item.SourceLabel,
				SnippetText:    item.SnippetText,
				URL:            item.URL,
				OriginScore:    item.OriginScore,
			})
		}
	}
	return records
}

// RecordFeedback attaches a user rating to an existing verification
func (s *ResultsService) RecordFeedback(verificationID uuid.UUID, rating int, comment string) error {
	var count int64
	if err := s.db.Model(&models.Verification{}).Where("id = ?", verificationID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up verification: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}

	feedback := models.Feedback{
		ID:             uuid.New(),
		VerificationID: verificationID,
		Rating:         rating,
		Comment:        comment,
	}
	if err := s.db.Create(&feedback).Error; err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	return nil
}

// HistoryEntry is one row of the verification history listing
type HistoryEntry struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	ContentPreview   string    `json:"content_preview"`
	Verdict          string    `json:"verdict"`
	IsFake           bool      `json:"is_fake"`
	Score            int       `json:"score"`
	Confidence       int       `json:"confidence"`
	ProcessingTimeMS int64     `json:"processing_time_ms"`
	CreatedAt        string    `json:"created_at"`
}

// History returns persisted verifications, newest first, plus the total count
func (s *ResultsService) History(limit, offset int) ([]HistoryEntry, int64, error) {
	var total int64
	if err := s.db.Model(&models.Verification{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count verifications: %w", err)
	}

	var records []models.Verification
	err := s.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load history: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, HistoryEntry{
			ID:               record.ID,
			Title:            record.Title,
			ContentPreview:   previewContent(record.Content),
			Verdict:          record.Verdict,
			IsFake:           record.IsFake,
			Score:            record.Score,
			Confidence:       record.Confidence,
			ProcessingTimeMS: record.ProcessingTimeMS,
			CreatedAt:        record.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return entries, total, nil
}

const previewLength = 100

func previewContent(content string) string {
	if len(content) <= previewLength {
		return content
	}
	return content[:previewLength] + "..."
}

// Stats summarizes the stored verification history
type Stats struct {
	TotalVerifications int64   `json:"total_verifications"`
	FakeCount          int64   `json:"fake_count"`
	FeedbackCount      int64   `json:"feedback_count"`
	AverageScore       float64 `json:"average_score"`
}

// Stats computes dashboard counters over the full history
func (s *ResultsService) Stats() (Stats, error) {
	var stats Stats
	if err := s.db.Model(&models.Verification{}).Count(&stats.TotalVerifications).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count verifications: %w", err)
	}
	if err := s.db.Model(&models.Verification{}).Where("is_fake = ?", true).Count(&stats.FakeCount).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count fake verdicts: %w", err)
	}
	if err := s.db.Model(&models.Feedback{}).Count(&stats.FeedbackCount).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count feedback: %w", err)
	}
	if stats.TotalVerifications > 0 {
		row := s.db.Model(&models.Verification{}).Select("AVG(score)").Row()
		if err := row.Scan(&stats.AverageScore); err != nil {
			return Stats{}, fmt.Errorf("failed to compute average score: %w", err)
		}
	}
	return stats, nil
}
