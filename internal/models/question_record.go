package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionRecord is an admin-maintained practice question. Unlike the seed
// catalog compiled into the binary, these records persist across restarts.
type QuestionRecord struct {
	ID      uint        `json:"id" gorm:"primaryKey"`
	Section SectionKind `json:"section" gorm:"not null;size:20;index" validate:"required,section_kind"`
	Prompt  string      `json:"prompt" gorm:"not null;type:text" validate:"required,min=1"`

	// Options holds the choice strings as a JSON array. Empty for
	// free-response prompts.
	Options      datatypes.JSON `json:"options" gorm:"type:jsonb"`
	CorrectIndex *int           `json:"correct_index" validate:"omitempty,min=0"`
	Explanation  *string        `json:"explanation" gorm:"type:text"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (QuestionRecord) TableName() string {
	return "question_records"
}
