package events

import (
	"time"

	"github.com/celprep/practice-service/internal/models"
)

// EventType represents different types of session lifecycle events
type EventType string

const (
	EventSessionStarted   EventType = "session.started"
	EventSectionCompleted EventType = "session.section_completed"
	EventSessionFinished  EventType = "session.finished"
	EventTimeWarning      EventType = "session.time_warning"
	EventTaskSkipped      EventType = "session.task_skipped"
	EventSessionAbandoned EventType = "session.abandoned"
)

// SessionEvent is the base event structure published for every session
// lifecycle change
type SessionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionStartedEvent struct {
	SessionID string             `json:"session_id"`
	UserID    string             `json:"user_id"`
	Section   models.SectionKind `json:"section,omitempty"`
	FullTest  bool               `json:"full_test"`
	StartedAt time.Time          `json:"started_at"`
}

type SectionCompletedEvent struct {
	SessionID string             `json:"session_id"`
	UserID    string             `json:"user_id"`
	Section   models.SectionKind `json:"section"`
	Reason    string             `json:"reason"` // "finished" or "section_timeout"
}

type SessionFinishedEvent struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	FullTest    bool      `json:"full_test"`
	Percentage  int       `json:"percentage"`
	CLBLevel    int       `json:"clb_level"`
	CompletedAt time.Time `json:"completed_at"`
}

type TimeWarningEvent struct {
	SessionID string             `json:"session_id"`
	UserID    string             `json:"user_id"`
	Section   models.SectionKind `json:"section"`
	Remaining int                `json:"remaining"` // seconds
}

type TaskSkippedEvent struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Reason    string `json:"reason"` // e.g. "microphone_denied"
}

type SessionAbandonedEvent struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}
