package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/intervox-ai/backend/models"
	"gorm.io/gorm"
)

// SessionStore is the durable persistence layer for interview sessions,
// recordings, transcripts, and ad-hoc metrics. interview_id is the join key
// across all tables. Each write is a single short-lived transaction; last
// writer wins on concurrent updates to the same row.
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

// AutoMigrate runs database migrations
func (r *SessionStore) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.InterviewSession{},
		&models.Recording{},
		&models.Transcript{},
		&models.InterviewMetric{},
	)
}

// CreateSession inserts a fresh in_progress session row and returns its
// generated interview id.
func (r *SessionStore) CreateSession(ctx context.Context, candidateName, position string) (string, error) {
	session := models.InterviewSession{
		InterviewID:     uuid.New().String(),
		CandidateName:   candidateName,
		Position:        position,
		StartTime:       time.Now(),
		Status:          models.SessionStatusInProgress,
		RecordingStatus: models.RecordingStatusPending,
	}

	if err := r.db.WithContext(ctx).Create(&session).Error; err != nil {
		slog.Error("Failed to create interview session", "error", err, "candidate_name", candidateName)
		return "", err
	}

	slog.Info("Interview session created", "interview_id", session.InterviewID, "candidate_name", candidateName, "position", position)
	return session.InterviewID, nil
}

// CompleteSession writes the final scores, impression, and serialized log,
// and flips the session to completed. Only in_progress rows match: a
// completed or archived row is frozen and the update touches nothing. The
// bool reports whether a row was matched, so callers can tell an unknown or
// frozen id apart from a store failure.
func (r *SessionStore) CompleteSession(ctx context.Context, interviewID string, technicalScore, behavioralScore int, impression, data string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Where("interview_id = ? AND status = ?", interviewID, models.SessionStatusInProgress).
		Updates(map[string]interface{}{
			"end_time":           now,
			"technical_score":    technicalScore,
			"behavioral_score":   behavioralScore,
			"overall_impression": impression,
			"interview_data":     data,
			"status":             models.SessionStatusCompleted,
		})
	if result.Error != nil {
		slog.Error("Failed to complete interview session", "error", result.Error, "interview_id", interviewID)
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		slog.Warn("Complete matched no active session", "interview_id", interviewID)
		return false, nil
	}

	slog.Info("Interview session completed", "interview_id", interviewID, "technical_score", technicalScore, "behavioral_score", behavioralScore)
	return true, nil
}

// GetSession is a point lookup; an unknown id yields (nil, nil).
func (r *SessionStore) GetSession(ctx context.Context, interviewID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.db.WithContext(ctx).Where("interview_id = ?", interviewID).First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get interview session", "error", err, "interview_id", interviewID)
		return nil, err
	}
	return &session, nil
}

// ListRecent returns sessions ordered by start time descending, optionally
// filtered by position. When includeRecordingInfo is set, the associated
// recordings and transcript are loaded alongside.
func (r *SessionStore) ListRecent(ctx context.Context, limit int, position string, includeRecordingInfo bool) ([]models.InterviewSession, error) {
	if limit <= 0 {
		limit = 10
	}

	query := r.db.WithContext(ctx).Order("start_time DESC").Limit(limit)
	if position != "" {
		query = query.Where("position = ?", position)
	}
	if includeRecordingInfo {
		query = query.
			Preload("Recordings", func(db *gorm.DB) *gorm.DB {
				return db.Order("started_at DESC")
			}).
			Preload("Transcript")
	}

	var sessions []models.InterviewSession
	if err := query.Find(&sessions).Error; err != nil {
		slog.Error("Failed to list interview sessions", "error", err, "limit", limit)
		return nil, err
	}
	return sessions, nil
}

// CreateRecordingEntry opens a recording row for a session and marks the
// session as recording. Both writes commit in one transaction.
func (r *SessionStore) CreateRecordingEntry(ctx context.Context, interviewID, egressID, roomName string) (string, error) {
	recording := models.Recording{
		RecordingID: uuid.New().String(),
		InterviewID: interviewID,
		EgressID:    egressID,
		RoomName:    roomName,
		Status:      models.RecordingStatusRecording,
		StartedAt:   time.Now(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InterviewSession{}).
			Where("interview_id = ?", interviewID).
			Updates(map[string]interface{}{
				"recording_id":     recording.RecordingID,
				"recording_status": models.RecordingStatusRecording,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("interview session %s does not exist", interviewID)
		}
		return tx.Create(&recording).Error
	})
	if err != nil {
		slog.Error("Failed to create recording entry", "error", err, "interview_id", interviewID, "egress_id", egressID)
		return "", err
	}

	slog.Info("Recording entry created", "recording_id", recording.RecordingID, "interview_id", interviewID, "room_name", roomName)
	return recording.RecordingID, nil
}

// GetRecordingByEgress looks up the recording opened for an egress run.
// Returns nil without an error when no recording matches.
func (r *SessionStore) GetRecordingByEgress(ctx context.Context, egressID string) (*models.Recording, error) {
	var recording models.Recording
	err := r.db.WithContext(ctx).Where("egress_id = ?", egressID).First(&recording).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		slog.Error("Failed to get recording by egress", "error", err, "egress_id", egressID)
		return nil, err
	}
	return &recording, nil
}

// UpdateRecordingStatus applies a pipeline progress report to a recording
// and keeps the denormalized pointers on the owning session in sync, in one
// transaction. Rows already completed or failed are immutable; updates
// against them match nothing. The bool reports whether a row was updated.
func (r *SessionStore) UpdateRecordingStatus(ctx context.Context, recordingID, status, url string, fileSize int64, durationSeconds int) (bool, error) {
	updated := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recording models.Recording
		err := tx.Where("recording_id = ?", recordingID).First(&recording).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		if recording.Status == models.RecordingStatusCompleted || recording.Status == models.RecordingStatusFailed {
			return nil
		}

		updates := map[string]interface{}{"status": status}
		if fileSize > 0 {
			updates["file_size"] = fileSize
		}
		if durationSeconds > 0 {
			updates["duration_seconds"] = durationSeconds
		}
		if status == models.RecordingStatusCompleted || status == models.RecordingStatusFailed {
			updates["ended_at"] = time.Now()
		}
		if status == models.RecordingStatusCompleted && url != "" {
			updates["s3_url"] = url
		}
		if err := tx.Model(&models.Recording{}).Where("recording_id = ?", recordingID).Updates(updates).Error; err != nil {
			return err
		}

		sessionUpdates := map[string]interface{}{"recording_status": status}
		if status == models.RecordingStatusCompleted && url != "" {
			sessionUpdates["recording_url"] = url
		}
		if err := tx.Model(&models.InterviewSession{}).
			Where("interview_id = ?", recording.InterviewID).
			Updates(sessionUpdates).Error; err != nil {
			return err
		}

		updated = true
		return nil
	})
	if err != nil {
		slog.Error("Failed to update recording status", "error", err, "recording_id", recordingID, "status", status)
		return false, err
	}
	if updated {
		slog.Info("Recording status updated", "recording_id", recordingID, "status", status, "file_size", fileSize)
	}
	return updated, nil
}

// CreateTranscriptEntry records a generated transcript and mirrors its URL
// onto the owning session, in one transaction.
func (r *SessionStore) CreateTranscriptEntry(ctx context.Context, interviewID, url string, wordCount, charCount int, confidence float64) (string, error) {
	transcript := models.Transcript{
		TranscriptID:     uuid.New().String(),
		InterviewID:      interviewID,
		URL:              url,
		WordCount:        wordCount,
		CharCount:        charCount,
		Confidence:       confidence,
		ProcessingStatus: "completed",
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InterviewSession{}).
			Where("interview_id = ?", interviewID).
			Update("transcript_url", url)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("interview session %s does not exist", interviewID)
		}
		return tx.Create(&transcript).Error
	})
	if err != nil {
		slog.Error("Failed to create transcript entry", "error", err, "interview_id", interviewID)
		return "", err
	}

	slog.Info("Transcript entry created", "transcript_id", transcript.TranscriptID, "interview_id", interviewID, "word_count", wordCount)
	return transcript.TranscriptID, nil
}

// AddMetric appends a free-form metric to the analytics log.
func (r *SessionStore) AddMetric(ctx context.Context, interviewID, metricName, metricValue string) error {
	metric := models.InterviewMetric{
		InterviewID: interviewID,
		MetricName:  metricName,
		MetricValue: metricValue,
		Timestamp:   time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(&metric).Error; err != nil {
		slog.Error("Failed to add interview metric", "error", err, "interview_id", interviewID, "metric_name", metricName)
		return err
	}
	return nil
}
