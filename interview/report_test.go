package interview

import (
	"context"
	"testing"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected float64
	}{
		{PhaseIntroduction, 0},
		{PhaseTechnical, 25},
		{PhaseBehavioral, 50},
		{PhaseClosing, 75},
		{PhaseCompleted, 100},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			s := NewSession(newFakeStore(), 0)
			for s.Phase() != tt.phase {
				s.Advance()
			}
			if got := s.CompletionRate(); got != tt.expected {
				t.Errorf("CompletionRate() at %q = %v, expected %v", tt.phase, got, tt.expected)
			}
		})
	}
}

func TestPhaseSummary(t *testing.T) {
	s := NewSession(newFakeStore(), 0)
	s.RecordQuestion("intro question")

	s.Advance() // technical
	s.RecordQuestion("tech q1")
	s.RecordQuestion("tech q2")
	s.RecordResponse("a", 4)
	s.RecordResponse("a", 5)

	s.Advance() // behavioral, no activity

	summary := s.PhaseSummary()

	intro := summary[PhaseIntroduction]
	if intro.QuestionsCount != 1 || !intro.Completed {
		t.Errorf("introduction stats = %+v", intro)
	}
	if intro.AverageScore != 0 {
		t.Errorf("introduction average with no responses = %v, expected 0", intro.AverageScore)
	}

	tech := summary[PhaseTechnical]
	if tech.QuestionsCount != 2 || tech.ResponsesCount != 2 {
		t.Errorf("technical counts = %+v", tech)
	}
	if tech.AverageScore != 4.5 {
		t.Errorf("technical average = %v, expected 4.5", tech.AverageScore)
	}

	beh := summary[PhaseBehavioral]
	if beh.Completed || beh.QuestionsCount != 0 || beh.AverageScore != 0 {
		t.Errorf("behavioral stats with no activity = %+v", beh)
	}

	if _, ok := summary[PhaseCompleted]; ok {
		t.Error("terminal phase should not appear in the breakdown")
	}
}

func TestGenerateReport(t *testing.T) {
	s := NewSession(newFakeStore(), 0)
	s.RecordCandidateInfo(context.Background(), "Jane Doe", "Software Engineer")

	s.Advance() // technical
	s.RecordQuestion("q")
	s.RecordResponse("a", 4)
	s.RecordResponse("a", 2)

	s.Advance() // behavioral
	s.RecordQuestion("q")
	s.RecordResponse("a", 5)
	s.RecordNote("thoughtful answer")

	s.Advance() // closing
	s.Advance() // completed
	s.Complete(context.Background(), "Strong hire")

	report := s.GenerateReport()

	if report.InterviewSummary.CandidateName != "Jane Doe" {
		t.Errorf("CandidateName = %q", report.InterviewSummary.CandidateName)
	}
	if report.InterviewSummary.CompletionRate != 100 {
		t.Errorf("CompletionRate = %v, expected 100", report.InterviewSummary.CompletionRate)
	}
	if report.Scoring.TechnicalScore != 6 || report.Scoring.BehavioralScore != 5 {
		t.Errorf("scoring = %+v", report.Scoring)
	}
	if report.Scoring.AverageTechnical != 3 {
		t.Errorf("AverageTechnical = %v, expected 3", report.Scoring.AverageTechnical)
	}
	if report.Scoring.AverageBehavioral != 5 {
		t.Errorf("AverageBehavioral = %v, expected 5", report.Scoring.AverageBehavioral)
	}
	if report.Scoring.TotalQuestions != 2 {
		t.Errorf("TotalQuestions = %d, expected 2", report.Scoring.TotalQuestions)
	}
	if report.OverallImpression != "Strong hire" {
		t.Errorf("OverallImpression = %q", report.OverallImpression)
	}
	if report.NotesCount != 1 {
		t.Errorf("NotesCount = %d, expected 1", report.NotesCount)
	}
}

func TestAverageScoresWithNoResponses(t *testing.T) {
	s := NewSession(newFakeStore(), 0)
	if s.AverageTechnicalScore() != 0 || s.AverageBehavioralScore() != 0 {
		t.Error("averages over empty response log must be 0")
	}
}
