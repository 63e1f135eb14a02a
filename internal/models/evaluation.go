package models

import (
	"time"

	"github.com/google/uuid"
)

type EvaluationStatus string

const (
	StatusCompleted EvaluationStatus = "completed"
	StatusFailed    EvaluationStatus = "failed"
)

// Evaluation is the audit trail of one intake run.
type Evaluation struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Phone         string           `gorm:"type:text;index" json:"phone"`
	JobTitle      string           `gorm:"type:text" json:"job_title"`
	CVDocumentID  *uuid.UUID       `gorm:"type:uuid" json:"cv_document_id,omitempty"`
	Status        EvaluationStatus `gorm:"not null" json:"status"`
	ProfileMatch  bool             `gorm:"not null;default:false" json:"profile_match"`
	Justification string           `gorm:"type:text" json:"justification"`
	ErrorMessage  string           `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	CVDocument *Document `gorm:"foreignKey:CVDocumentID" json:"-"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
