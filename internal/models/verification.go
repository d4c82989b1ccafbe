package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verification is the persisted historical record of one evaluation
type Verification struct {
	ID      uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Title   string    `json:"title" gorm:"not null"`
	Content string    `json:"content" gorm:"type:text;not null"`

	// Top-level result
	Verdict    string `json:"verdict" gorm:"not null"`
	IsFake     bool   `json:"is_fake"`
	Score      int    `json:"score"`
	Confidence int    `json:"confidence"`

	// Score breakdown
	SourceCredibility  int `json:"source_credibility"`
	ContentConsistency int `json:"content_consistency"`
	FactVerification   int `json:"fact_verification"`

	// Sentiment
	SentimentLabel string  `json:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score"`

	// Factuality judgment
	FactualityVerdict    string `json:"factuality_verdict"`
	FactualScore         int    `json:"factual_score"`
	FactualityConfidence int    `json:"factuality_confidence"`
	Rationale            string `json:"rationale" gorm:"type:text"`

	// Which evidence providers answered
	DiscussionAvailable bool `json:"discussion_available"`
	ReferenceAvailable  bool `json:"reference_available"`
	NewsAvailable       bool `json:"news_available"`

	ProcessingTimeMS int64 `json:"processing_time_ms"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	Evidence []EvidenceRecord `json:"evidence,omitempty" gorm:"foreignKey:VerificationID"`
	Feedback []Feedback       `json:"feedback,omitempty" gorm:"foreignKey:VerificationID"`
}

// TableName sets the table name for the Verification model
func (Verification) TableName() string {
	return "verifications"
}

// BeforeCreate assigns an ID when none was set; keeps the model portable
// across postgres and sqlite
func (v *Verification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// EvidenceRecord is one retrieved evidence item attached to a verification
type EvidenceRecord struct {
	ID             uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	VerificationID uuid.UUID `json:"verification_id" gorm:"not null;index"`

	Provider    string   `json:"provider" gorm:"not null"` // discussion, reference, news
	SourceLabel string   `json:"source_label"`
	SnippetText string   `json:"snippet_text" gorm:"type:text"`
	URL         string   `json:"url"`
	OriginScore *float64 `json:"origin_score"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the EvidenceRecord model
func (EvidenceRecord) TableName() string {
	return "evidence_records"
}

// BeforeCreate assigns an ID when none was set
func (e *EvidenceRecord) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
