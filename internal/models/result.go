package models

import (
	"time"

	"gorm.io/datatypes"
)

// SessionResult is the terminal payload persisted when a practice session
// completes. Live session state is never stored; abandoning a session loses
// all progress.
type SessionResult struct {
	ID        string      `json:"id" gorm:"primaryKey;size:36"`
	UserID    string      `json:"user_id" gorm:"not null;size:255;index"`
	Section   SectionKind `json:"section" gorm:"not null;size:20;index"`
	FullTest  bool        `json:"full_test" gorm:"default:false"`

	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`

	// CLBLevel is the Canadian Language Benchmark bucket the mock scorer maps
	// the percentage onto.
	CLBLevel int `json:"clb_level"`

	// Breakdown holds the per-item results as a JSON document.
	Breakdown datatypes.JSON `json:"breakdown" gorm:"type:jsonb"`

	TimeSpent   int       `json:"time_spent"` // seconds
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (SessionResult) TableName() string {
	return "session_results"
}
