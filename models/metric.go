package models

import (
	"time"

	"gorm.io/gorm"
)

// InterviewMetric is an append-only key-value log for auxiliary analytics
// that are not modeled as first-class session columns.
// This allows for future expansion without schema changes.
type InterviewMetric struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	InterviewID string         `gorm:"type:uuid;not null;index" json:"interview_id"`
	MetricName  string         `gorm:"size:255;not null" json:"metric_name"`
	MetricValue string         `gorm:"type:text;not null" json:"metric_value"`
	Timestamp   time.Time      `gorm:"not null" json:"timestamp"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session InterviewSession `gorm:"foreignKey:InterviewID;references:InterviewID" json:"session"`
}
