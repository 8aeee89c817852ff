package repository

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/intervox-ai/backend/models"
	"gorm.io/gorm"
)

// PositionStats is the per-position slice of an analytics report.
type PositionStats struct {
	Count         int64   `json:"count"`
	AvgTechnical  float64 `json:"avg_technical"`
	AvgBehavioral float64 `json:"avg_behavioral"`
}

// AnalyticsReport aggregates completed interviews only.
type AnalyticsReport struct {
	TotalInterviews        int64                    `json:"total_interviews"`
	AverageTechnicalScore  float64                  `json:"average_technical_score"`
	AverageBehavioralScore float64                  `json:"average_behavioral_score"`
	PositionBreakdown      map[string]PositionStats `json:"position_breakdown"`
	RecordingsCompleted    int64                    `json:"recordings_completed"`
	RecordingsFailed       int64                    `json:"recordings_failed"`
	TotalStorageMB         float64                  `json:"total_storage_mb"`
}

// MonthlyUsage is one bucket of the storage trend, keyed by year-month.
type MonthlyUsage struct {
	Month    string  `json:"month"`
	Sessions int64   `json:"sessions"`
	SizeMB   float64 `json:"size_mb"`
}

// StorageUsage summarizes recording storage consumption.
type StorageUsage struct {
	RecordingCount     int64          `json:"recording_count"`
	TotalSizeGB        float64        `json:"total_size_gb"`
	AvgFileSizeMB      float64        `json:"avg_file_size_mb"`
	TotalDurationHours float64        `json:"total_duration_hours"`
	TranscriptCount    int64          `json:"transcript_count"`
	MonthlyTrend       []MonthlyUsage `json:"monthly_trend"`
}

// GetAnalytics computes mean scores over completed sessions, overall and per
// position, plus recording outcome counts and storage consumption. A zero
// result is an all-zero report with an empty breakdown, never an error.
func (r *SessionStore) GetAnalytics(ctx context.Context, position string) (*AnalyticsReport, error) {
	report := &AnalyticsReport{PositionBreakdown: map[string]PositionStats{}}

	base := r.db.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Where("status = ?", models.SessionStatusCompleted)
	if position != "" {
		base = base.Where("position = ?", position)
	}

	var overall struct {
		Total         int64
		AvgTechnical  float64
		AvgBehavioral float64
	}
	err := base.Session(&gorm.Session{}).
		Select("COUNT(*) AS total, COALESCE(AVG(technical_score), 0) AS avg_technical, COALESCE(AVG(behavioral_score), 0) AS avg_behavioral").
		Scan(&overall).Error
	if err != nil {
		slog.Error("Failed to aggregate interview analytics", "error", err, "position", position)
		return nil, err
	}

	report.TotalInterviews = overall.Total
	report.AverageTechnicalScore = round2(overall.AvgTechnical)
	report.AverageBehavioralScore = round2(overall.AvgBehavioral)

	if overall.Total == 0 {
		return report, nil
	}

	var perPosition []struct {
		Position      string
		Count         int64
		AvgTechnical  float64
		AvgBehavioral float64
	}
	err = base.Session(&gorm.Session{}).
		Select("position, COUNT(*) AS count, AVG(technical_score) AS avg_technical, AVG(behavioral_score) AS avg_behavioral").
		Group("position").
		Scan(&perPosition).Error
	if err != nil {
		slog.Error("Failed to aggregate position breakdown", "error", err, "position", position)
		return nil, err
	}
	for _, row := range perPosition {
		report.PositionBreakdown[row.Position] = PositionStats{
			Count:         row.Count,
			AvgTechnical:  round2(row.AvgTechnical),
			AvgBehavioral: round2(row.AvgBehavioral),
		}
	}

	var recordings struct {
		Completed  int64
		Failed     int64
		TotalBytes int64
	}
	err = r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Select(
			"COUNT(*) FILTER (WHERE status = ?) AS completed, COUNT(*) FILTER (WHERE status = ?) AS failed, COALESCE(SUM(file_size) FILTER (WHERE status = ?), 0) AS total_bytes",
			models.RecordingStatusCompleted, models.RecordingStatusFailed, models.RecordingStatusCompleted,
		).
		Scan(&recordings).Error
	if err != nil {
		slog.Error("Failed to aggregate recording analytics", "error", err)
		return nil, err
	}
	report.RecordingsCompleted = recordings.Completed
	report.RecordingsFailed = recordings.Failed
	report.TotalStorageMB = round2(float64(recordings.TotalBytes) / (1024 * 1024))

	slog.Info("Analytics computed", "position", position, "total_interviews", report.TotalInterviews)
	return report, nil
}

// CleanupOld archives sessions whose start time is older than the cutoff.
// Rows are never physically deleted and already-archived rows are skipped,
// so re-running the sweep is idempotent. Returns the number archived.
func (r *SessionStore) CleanupOld(ctx context.Context, daysOld int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -daysOld)

	result := r.db.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Where("start_time < ? AND status <> ?", cutoff, models.SessionStatusArchived).
		Update("status", models.SessionStatusArchived)
	if result.Error != nil {
		slog.Error("Failed to archive old sessions", "error", result.Error, "days_old", daysOld)
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		slog.Info("Old sessions archived", "count", result.RowsAffected, "days_old", daysOld)
	}
	return result.RowsAffected, nil
}

// GetStorageUsage reports totals over completed recordings plus a monthly
// trend over the most recent 12 months of completed sessions.
func (r *SessionStore) GetStorageUsage(ctx context.Context) (*StorageUsage, error) {
	usage := &StorageUsage{MonthlyTrend: []MonthlyUsage{}}

	var totals struct {
		Count        int64
		TotalBytes   int64
		TotalSeconds int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Where("status = ?", models.RecordingStatusCompleted).
		Select("COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS total_bytes, COALESCE(SUM(duration_seconds), 0) AS total_seconds").
		Scan(&totals).Error
	if err != nil {
		slog.Error("Failed to aggregate recording storage", "error", err)
		return nil, err
	}

	usage.RecordingCount = totals.Count
	usage.TotalSizeGB = round2(float64(totals.TotalBytes) / (1024 * 1024 * 1024))
	usage.TotalDurationHours = round2(float64(totals.TotalSeconds) / 3600)
	if totals.Count > 0 {
		usage.AvgFileSizeMB = round2(float64(totals.TotalBytes) / float64(totals.Count) / (1024 * 1024))
	}

	if err := r.db.WithContext(ctx).Model(&models.Transcript{}).Count(&usage.TranscriptCount).Error; err != nil {
		slog.Error("Failed to count transcripts", "error", err)
		return nil, err
	}

	var trend []struct {
		Month    string
		Sessions int64
		Bytes    int64
	}
	err = r.db.WithContext(ctx).Raw(`
		SELECT to_char(s.start_time, 'YYYY-MM') AS month,
		       COUNT(DISTINCT s.interview_id) AS sessions,
		       COALESCE(SUM(r.file_size), 0) AS bytes
		FROM interview_sessions s
		LEFT JOIN recordings r
		       ON r.interview_id = s.interview_id
		      AND r.status = ?
		      AND r.deleted_at IS NULL
		WHERE s.status = ?
		  AND s.deleted_at IS NULL
		GROUP BY 1
		ORDER BY 1 DESC
		LIMIT 12`,
		models.RecordingStatusCompleted, models.SessionStatusCompleted,
	).Scan(&trend).Error
	if err != nil {
		slog.Error("Failed to compute monthly storage trend", "error", err)
		return nil, err
	}
	for _, row := range trend {
		usage.MonthlyTrend = append(usage.MonthlyTrend, MonthlyUsage{
			Month:    row.Month,
			Sessions: row.Sessions,
			SizeMB:   round2(float64(row.Bytes) / (1024 * 1024)),
		})
	}

	return usage, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
