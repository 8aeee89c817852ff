package models

import (
	"time"

	"gorm.io/gorm"
)

// Session lifecycle states. A session is created in_progress, reaches
// completed when the closing phase is finalized, and is archived by the
// retention sweep. Archived is never un-set.
const (
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
	SessionStatusArchived   = "archived"
)

// Recording lifecycle as mirrored on the owning session.
const (
	RecordingStatusPending   = "pending"
	RecordingStatusRecording = "recording"
	RecordingStatusCompleted = "completed"
	RecordingStatusFailed    = "failed"
)

// InterviewSession records one candidate's end-to-end interview. The
// interview_data column holds the serialized question/response/note log,
// written once at completion and frozen afterwards.
type InterviewSession struct {
	InterviewID       string         `gorm:"type:uuid;primaryKey" json:"interview_id"`
	CandidateName     string         `gorm:"size:255;not null" json:"candidate_name"`
	Position          string         `gorm:"size:255;not null" json:"position"`
	StartTime         time.Time      `gorm:"not null;index" json:"start_time"`
	EndTime           *time.Time     `json:"end_time,omitempty"`
	TechnicalScore    int            `gorm:"not null;default:0" json:"technical_score"`
	BehavioralScore   int            `gorm:"not null;default:0" json:"behavioral_score"`
	OverallImpression string         `gorm:"type:text" json:"overall_impression,omitempty"`
	InterviewData     string         `gorm:"type:text" json:"interview_data,omitempty"`
	Status            string         `gorm:"not null;default:'in_progress';check:status IN ('in_progress', 'completed', 'archived')" json:"status"`
	RecordingID       *string        `gorm:"type:uuid;index" json:"recording_id,omitempty"`
	RecordingURL      string         `gorm:"size:500" json:"recording_url,omitempty"`
	TranscriptURL     string         `gorm:"size:500" json:"transcript_url,omitempty"`
	RecordingStatus   string         `gorm:"not null;default:'pending';check:recording_status IN ('pending', 'recording', 'completed', 'failed')" json:"recording_status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Recordings []Recording       `gorm:"foreignKey:InterviewID" json:"recordings,omitempty"`
	Transcript *Transcript       `gorm:"foreignKey:InterviewID" json:"transcript,omitempty"`
	Metrics    []InterviewMetric `gorm:"foreignKey:InterviewID" json:"metrics,omitempty"`
}
