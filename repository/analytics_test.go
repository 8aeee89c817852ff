package repository

import (
	"context"
	"testing"
	"time"

	"github.com/intervox-ai/backend/models"
)

func TestGetAnalyticsEmptyDatabase(t *testing.T) {
	store := newTestStore(t)

	report, err := store.GetAnalytics(context.Background(), "")
	if err != nil {
		t.Fatalf("GetAnalytics() error = %v", err)
	}
	if report.TotalInterviews != 0 {
		t.Errorf("total interviews = %d, expected 0", report.TotalInterviews)
	}
	if report.AverageTechnicalScore != 0 || report.AverageBehavioralScore != 0 {
		t.Errorf("averages = %v/%v, expected zeros",
			report.AverageTechnicalScore, report.AverageBehavioralScore)
	}
	if report.PositionBreakdown == nil {
		t.Error("position breakdown is nil, expected empty map")
	}
	if len(report.PositionBreakdown) != 0 {
		t.Errorf("position breakdown has %d entries, expected none", len(report.PositionBreakdown))
	}
}

func TestGetAnalyticsAggregates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, _ := store.CreateSession(ctx, "First Candidate", "Backend Engineer")
	second, _ := store.CreateSession(ctx, "Second Candidate", "Data Scientist")
	if _, err := store.CompleteSession(ctx, first, 12, 8, "ok", "{}"); err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	if _, err := store.CompleteSession(ctx, second, 8, 12, "ok", "{}"); err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	// Still in flight; must not contribute to the averages.
	if _, err := store.CreateSession(ctx, "Third Candidate", "Backend Engineer"); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	goodRec, err := store.CreateRecordingEntry(ctx, first, "EG_1", "interview-1")
	if err != nil {
		t.Fatalf("CreateRecordingEntry() error = %v", err)
	}
	if _, err := store.UpdateRecordingStatus(ctx, goodRec, models.RecordingStatusCompleted, "s3://bucket/a.mp4", 4*1024*1024, 60); err != nil {
		t.Fatalf("UpdateRecordingStatus() error = %v", err)
	}
	badRec, err := store.CreateRecordingEntry(ctx, second, "EG_2", "interview-2")
	if err != nil {
		t.Fatalf("CreateRecordingEntry() error = %v", err)
	}
	if _, err := store.UpdateRecordingStatus(ctx, badRec, models.RecordingStatusFailed, "", 0, 0); err != nil {
		t.Fatalf("UpdateRecordingStatus() error = %v", err)
	}

	report, err := store.GetAnalytics(ctx, "")
	if err != nil {
		t.Fatalf("GetAnalytics() error = %v", err)
	}
	if report.TotalInterviews != 2 {
		t.Errorf("total interviews = %d, expected 2", report.TotalInterviews)
	}
	if report.AverageTechnicalScore != 10 || report.AverageBehavioralScore != 10 {
		t.Errorf("averages = %v/%v, expected 10/10",
			report.AverageTechnicalScore, report.AverageBehavioralScore)
	}
	if len(report.PositionBreakdown) != 2 {
		t.Fatalf("position breakdown has %d entries, expected 2", len(report.PositionBreakdown))
	}
	backend, ok := report.PositionBreakdown["Backend Engineer"]
	if !ok {
		t.Fatal("missing Backend Engineer breakdown")
	}
	if backend.Count != 1 || backend.AvgTechnical != 12 || backend.AvgBehavioral != 8 {
		t.Errorf("backend stats = %+v", backend)
	}
	if report.RecordingsCompleted != 1 || report.RecordingsFailed != 1 {
		t.Errorf("recordings = %d completed / %d failed, expected 1/1",
			report.RecordingsCompleted, report.RecordingsFailed)
	}
	if report.TotalStorageMB != 4 {
		t.Errorf("total storage = %v MB, expected 4", report.TotalStorageMB)
	}
}

func TestGetAnalyticsPositionFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, _ := store.CreateSession(ctx, "First Candidate", "Backend Engineer")
	second, _ := store.CreateSession(ctx, "Second Candidate", "Data Scientist")
	store.CompleteSession(ctx, first, 12, 8, "ok", "{}")
	store.CompleteSession(ctx, second, 8, 12, "ok", "{}")

	report, err := store.GetAnalytics(ctx, "Data Scientist")
	if err != nil {
		t.Fatalf("GetAnalytics() error = %v", err)
	}
	if report.TotalInterviews != 1 {
		t.Errorf("total interviews = %d, expected 1", report.TotalInterviews)
	}
	if report.AverageTechnicalScore != 8 || report.AverageBehavioralScore != 12 {
		t.Errorf("averages = %v/%v, expected 8/12",
			report.AverageTechnicalScore, report.AverageBehavioralScore)
	}
	if _, ok := report.PositionBreakdown["Backend Engineer"]; ok {
		t.Error("filtered report includes an unrelated position")
	}
}

func TestCleanupOldArchivesOnceAndSparesRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stale, _ := store.CreateSession(ctx, "Stale Candidate", "Backend Engineer")
	fresh, _ := store.CreateSession(ctx, "Fresh Candidate", "Backend Engineer")
	store.db.Model(&models.InterviewSession{}).
		Where("interview_id = ?", stale).
		Update("start_time", time.Now().AddDate(0, 0, -45))

	archived, err := store.CleanupOld(ctx, 30)
	if err != nil {
		t.Fatalf("CleanupOld() error = %v", err)
	}
	if archived != 1 {
		t.Errorf("first sweep archived %d sessions, expected 1", archived)
	}

	// A second sweep over the same window finds nothing new.
	archived, err = store.CleanupOld(ctx, 30)
	if err != nil {
		t.Fatalf("second CleanupOld() error = %v", err)
	}
	if archived != 0 {
		t.Errorf("second sweep archived %d sessions, expected 0", archived)
	}

	session, err := store.GetSession(ctx, stale)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.Status != models.SessionStatusArchived {
		t.Errorf("stale session status = %q, expected archived", session.Status)
	}

	session, err = store.GetSession(ctx, fresh)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.Status != models.SessionStatusInProgress {
		t.Errorf("fresh session status = %q, expected in_progress", session.Status)
	}
}
