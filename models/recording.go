package models

import (
	"time"

	"gorm.io/gorm"
)

// Recording tracks one egress export of a live interview room. Rows are
// created when the pipeline reports start and updated as it reports
// progress; a row is immutable once completed or failed. S3URL is set only
// when the status reaches completed.
type Recording struct {
	RecordingID     string         `gorm:"type:uuid;primaryKey" json:"recording_id"`
	InterviewID     string         `gorm:"type:uuid;not null;index" json:"interview_id"`
	EgressID        string         `gorm:"size:255;not null" json:"egress_id"`
	RoomName        string         `gorm:"size:255;not null" json:"room_name"`
	Status          string         `gorm:"not null;default:'recording';check:status IN ('recording', 'completed', 'failed')" json:"status"`
	StartedAt       time.Time      `gorm:"not null" json:"started_at"`
	EndedAt         *time.Time     `json:"ended_at,omitempty"`
	FileSize        int64          `gorm:"not null;default:0" json:"file_size"`
	DurationSeconds int            `gorm:"not null;default:0" json:"duration_seconds"`
	S3URL           string         `gorm:"size:500" json:"s3_url,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session InterviewSession `gorm:"foreignKey:InterviewID;references:InterviewID" json:"session"`
}

// Transcript stores the pointer and bulk stats for a generated transcript.
// Zero-or-one per session, created once on successful generation.
type Transcript struct {
	TranscriptID     string         `gorm:"type:uuid;primaryKey" json:"transcript_id"`
	InterviewID      string         `gorm:"type:uuid;not null;uniqueIndex" json:"interview_id"`
	URL              string         `gorm:"size:500;not null" json:"url"`
	WordCount        int            `gorm:"not null;default:0" json:"word_count"`
	CharCount        int            `gorm:"not null;default:0" json:"char_count"`
	Language         string         `gorm:"size:16;default:'en'" json:"language"`
	Confidence       float64        `gorm:"type:decimal(4,3)" json:"confidence"`
	ProcessingStatus string         `gorm:"size:32;not null;default:'completed'" json:"processing_status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session InterviewSession `gorm:"foreignKey:InterviewID;references:InterviewID" json:"session"`
}
