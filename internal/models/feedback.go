package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is a user's rating of a verification result. Records are
// insert-only; they are never updated or deleted.
type Feedback struct {
	ID             uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	VerificationID uuid.UUID `json:"verification_id" gorm:"not null;index"`

	Rating  int    `json:"rating" gorm:"not null"` // 1-5
	Comment string `json:"comment" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the Feedback model
func (Feedback) TableName() string {
	return "feedback"
}

// BeforeCreate assigns an ID when none was set
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
