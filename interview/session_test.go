package interview

import (
	"context"
	"errors"
	"testing"
)

// fakeStore records persistence calls so tests can assert on what the state
// machine wrote without a database.
type fakeStore struct {
	createCalls   int
	createErr     error
	completeErr   error
	completeMatch bool

	lastName       string
	lastPosition   string
	completedID    string
	completedTech  int
	completedBeh   int
	completedImpr  string
	completedData  string
	completedCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{completeMatch: true}
}

func (f *fakeStore) CreateSession(ctx context.Context, candidateName, position string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createCalls++
	f.lastName = candidateName
	f.lastPosition = position
	return "interview-id-1", nil
}

func (f *fakeStore) CompleteSession(ctx context.Context, interviewID string, technicalScore, behavioralScore int, impression, data string) (bool, error) {
	if f.completeErr != nil {
		return false, f.completeErr
	}
	f.completedCalls++
	f.completedID = interviewID
	f.completedTech = technicalScore
	f.completedBeh = behavioralScore
	f.completedImpr = impression
	f.completedData = data
	return f.completeMatch, nil
}

func TestAdvancePhaseOrder(t *testing.T) {
	s := NewSession(newFakeStore(), 0)

	expected := []struct {
		phase   Phase
		message string
	}{
		{PhaseTechnical, "Moving to technical questions phase."},
		{PhaseBehavioral, "Moving to behavioral questions phase."},
		{PhaseClosing, "Moving to closing phase."},
		{PhaseCompleted, "Interview completed."},
	}

	prev := s.Phase()
	for _, step := range expected {
		msg := s.Advance()
		if msg != step.message {
			t.Errorf("Advance() message = %q, expected %q", msg, step.message)
		}
		if s.Phase() != step.phase {
			t.Errorf("Advance() phase = %q, expected %q", s.Phase(), step.phase)
		}
		if s.Phase().Index() < prev.Index() {
			t.Errorf("phase went backwards: %q -> %q", prev, s.Phase())
		}
		prev = s.Phase()
	}

	// Terminal phase is absorbing
	if msg := s.Advance(); msg != AlreadyCompletedMessage {
		t.Errorf("Advance() from completed = %q, expected %q", msg, AlreadyCompletedMessage)
	}
	if s.Phase() != PhaseCompleted {
		t.Errorf("phase after terminal Advance() = %q, expected %q", s.Phase(), PhaseCompleted)
	}
}

func TestAdvanceResetsQuestionCounter(t *testing.T) {
	s := NewSession(newFakeStore(), 0)

	for i := 0; i < 3; i++ {
		if _, err := s.RecordQuestion("q"); err != nil {
			t.Fatalf("RecordQuestion() error = %v", err)
		}
	}
	if s.Status().QuestionsInPhase != 3 {
		t.Fatalf("QuestionsInPhase = %d, expected 3", s.Status().QuestionsInPhase)
	}

	s.Advance() // introduction -> technical
	if s.Status().QuestionsInPhase != 0 {
		t.Errorf("QuestionsInPhase after advance = %d, expected 0", s.Status().QuestionsInPhase)
	}
	if s.Status().QuestionsAsked != 3 {
		t.Errorf("QuestionsAsked = %d, expected 3 (total log is never reset)", s.Status().QuestionsAsked)
	}

	s.RecordQuestion("q")
	s.Advance() // technical -> behavioral
	if s.Status().QuestionsInPhase != 0 {
		t.Errorf("QuestionsInPhase after second advance = %d, expected 0", s.Status().QuestionsInPhase)
	}
}

func TestRecordResponseScoreAttribution(t *testing.T) {
	tests := []struct {
		name         string
		phase        Phase
		scores       []int
		expectedTech int
		expectedBeh  int
	}{
		{
			name:         "Technical phase accumulates technical total",
			phase:        PhaseTechnical,
			scores:       []int{4, 5, 3},
			expectedTech: 12,
			expectedBeh:  0,
		},
		{
			name:         "Behavioral phase accumulates behavioral total",
			phase:        PhaseBehavioral,
			scores:       []int{3, 5},
			expectedTech: 0,
			expectedBeh:  8,
		},
		{
			name:         "Introduction scores count toward neither total",
			phase:        PhaseIntroduction,
			scores:       []int{5, 5},
			expectedTech: 0,
			expectedBeh:  0,
		},
		{
			name:         "Closing scores count toward neither total",
			phase:        PhaseClosing,
			scores:       []int{4},
			expectedTech: 0,
			expectedBeh:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(newFakeStore(), 0)
			for s.Phase() != tt.phase {
				s.Advance()
			}
			for _, score := range tt.scores {
				if _, err := s.RecordResponse("answer", score); err != nil {
					t.Fatalf("RecordResponse() error = %v", err)
				}
			}
			if s.TechnicalScore() != tt.expectedTech {
				t.Errorf("TechnicalScore() = %d, expected %d", s.TechnicalScore(), tt.expectedTech)
			}
			if s.BehavioralScore() != tt.expectedBeh {
				t.Errorf("BehavioralScore() = %d, expected %d", s.BehavioralScore(), tt.expectedBeh)
			}
		})
	}
}

func TestRecordResponseRejectsOutOfRangeScore(t *testing.T) {
	for _, score := range []int{0, -1, 6, 100} {
		s := NewSession(newFakeStore(), 0)
		s.Advance() // technical

		_, err := s.RecordResponse("answer", score)
		if !errors.Is(err, ErrScoreOutOfRange) {
			t.Errorf("RecordResponse(score=%d) error = %v, expected ErrScoreOutOfRange", score, err)
		}
		if s.TechnicalScore() != 0 || s.BehavioralScore() != 0 {
			t.Errorf("rejected score mutated totals: tech=%d beh=%d", s.TechnicalScore(), s.BehavioralScore())
		}
		if s.GenerateReport().Scoring.TotalQuestions != 0 {
			t.Errorf("rejected score should not appear in logs")
		}
	}
}

func TestRecordCandidateInfoIsIdempotent(t *testing.T) {
	store := newFakeStore()
	s := NewSession(store, 0)

	if _, err := s.RecordCandidateInfo(context.Background(), "Jane Doe", "Software Engineer"); err != nil {
		t.Fatalf("RecordCandidateInfo() error = %v", err)
	}
	if s.InterviewID() == "" {
		t.Fatal("InterviewID not bound after RecordCandidateInfo")
	}

	// Second call keeps the existing row and just updates identity.
	if _, err := s.RecordCandidateInfo(context.Background(), "Jane A. Doe", "Staff Engineer"); err != nil {
		t.Fatalf("second RecordCandidateInfo() error = %v", err)
	}
	if store.createCalls != 1 {
		t.Errorf("CreateSession called %d times, expected 1", store.createCalls)
	}
	if s.CandidateName() != "Jane A. Doe" || s.Position() != "Staff Engineer" {
		t.Errorf("identity not updated: name=%q position=%q", s.CandidateName(), s.Position())
	}
}

func TestCompleteRetriesPersistenceAfterCreateFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("connection refused")
	s := NewSession(store, 0)

	_, err := s.RecordCandidateInfo(context.Background(), "Jane Doe", "Software Engineer")
	if err == nil {
		t.Fatal("expected store failure from RecordCandidateInfo")
	}

	// The conversation continues in memory despite the failed write.
	s.Advance()
	if _, err := s.RecordResponse("answer", 4); err != nil {
		t.Fatalf("RecordResponse() after store failure error = %v", err)
	}

	// Completion gets a fresh chance to persist.
	store.createErr = nil
	if _, err := s.Complete(context.Background(), "Recovered"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if store.createCalls != 1 || store.completedCalls != 1 {
		t.Errorf("create=%d complete=%d, expected 1 and 1", store.createCalls, store.completedCalls)
	}
	if store.completedTech != 4 {
		t.Errorf("persisted technical score = %d, expected 4", store.completedTech)
	}
}

func TestCompleteFromAnyPhase(t *testing.T) {
	store := newFakeStore()
	s := NewSession(store, 0)
	s.RecordCandidateInfo(context.Background(), "Jane Doe", "Software Engineer")
	s.Advance() // mid-technical

	msg, err := s.Complete(context.Background(), "Cut short")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if msg != "Interview completed and data saved. Thank you for your time!" {
		t.Errorf("Complete() message = %q", msg)
	}
	if s.Phase() != PhaseCompleted {
		t.Errorf("phase after Complete() = %q, expected %q", s.Phase(), PhaseCompleted)
	}
	if store.completedImpr != "Cut short" {
		t.Errorf("persisted impression = %q", store.completedImpr)
	}

	// Double completion is a benign no-op.
	msg, err = s.Complete(context.Background(), "Changed my mind")
	if err != nil || msg != AlreadyCompletedMessage {
		t.Errorf("second Complete() = (%q, %v), expected benign no-op", msg, err)
	}
	if store.completedCalls != 1 {
		t.Errorf("CompleteSession called %d times, expected 1", store.completedCalls)
	}
}

func TestCompleteUnknownSessionReturnsNotFound(t *testing.T) {
	store := newFakeStore()
	store.completeMatch = false
	s := NewSession(store, 0)
	s.RecordCandidateInfo(context.Background(), "Jane Doe", "Software Engineer")

	_, err := s.Complete(context.Background(), "impression")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Complete() error = %v, expected ErrSessionNotFound", err)
	}
}

func TestMutationsAfterTerminalPhaseAreBenign(t *testing.T) {
	s := NewSession(newFakeStore(), 0)
	for !s.Phase().Terminal() {
		s.Advance()
	}

	if msg, err := s.RecordQuestion("q"); err != nil || msg != AlreadyCompletedMessage {
		t.Errorf("RecordQuestion() after completion = (%q, %v)", msg, err)
	}
	if msg, err := s.RecordResponse("a", 5); err != nil || msg != AlreadyCompletedMessage {
		t.Errorf("RecordResponse() after completion = (%q, %v)", msg, err)
	}
	if msg, err := s.RecordNote("n"); err != nil || msg != AlreadyCompletedMessage {
		t.Errorf("RecordNote() after completion = (%q, %v)", msg, err)
	}
	if s.TechnicalScore() != 0 || s.BehavioralScore() != 0 {
		t.Errorf("terminal-phase mutations changed totals")
	}
}

func TestShouldAdvance(t *testing.T) {
	s := NewSession(newFakeStore(), 3)

	for i := 0; i < 2; i++ {
		s.RecordQuestion("q")
	}
	if s.ShouldAdvance() {
		t.Error("ShouldAdvance() = true below the ceiling")
	}

	s.RecordQuestion("q")
	if !s.ShouldAdvance() {
		t.Error("ShouldAdvance() = false at the ceiling")
	}

	// Never advises advancing out of the terminal phase.
	for !s.Phase().Terminal() {
		s.Advance()
	}
	if s.ShouldAdvance() {
		t.Error("ShouldAdvance() = true in terminal phase")
	}
}

func TestFullInterviewScenario(t *testing.T) {
	store := newFakeStore()
	s := NewSession(store, 0)

	if _, err := s.RecordCandidateInfo(context.Background(), "Jane Doe", "Software Engineer"); err != nil {
		t.Fatalf("RecordCandidateInfo() error = %v", err)
	}

	s.Advance() // technical
	for _, score := range []int{4, 5, 4} {
		s.RecordQuestion("technical question")
		if _, err := s.RecordResponse("technical answer", score); err != nil {
			t.Fatalf("RecordResponse() error = %v", err)
		}
	}

	s.Advance() // behavioral
	for _, score := range []int{3, 5} {
		s.RecordQuestion("behavioral question")
		if _, err := s.RecordResponse("behavioral answer", score); err != nil {
			t.Fatalf("RecordResponse() error = %v", err)
		}
	}

	if _, err := s.Complete(context.Background(), "Promising candidate"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if store.completedTech != 13 {
		t.Errorf("technical score = %d, expected 13", store.completedTech)
	}
	if store.completedBeh != 8 {
		t.Errorf("behavioral score = %d, expected 8", store.completedBeh)
	}
	if store.completedImpr != "Promising candidate" {
		t.Errorf("impression = %q, expected %q", store.completedImpr, "Promising candidate")
	}
	if store.completedID != s.InterviewID() {
		t.Errorf("persisted id = %q, expected %q", store.completedID, s.InterviewID())
	}
	if store.completedData == "" {
		t.Error("serialized interview log is empty")
	}
}

func TestStatusSnapshot(t *testing.T) {
	s := NewSession(newFakeStore(), 0)
	s.RecordCandidateInfo(context.Background(), "Jane Doe", "Software Engineer")
	s.RecordQuestion("q1")
	s.Advance()
	s.RecordQuestion("q2")

	status := s.Status()
	if status.CandidateName != "Jane Doe" {
		t.Errorf("CandidateName = %q", status.CandidateName)
	}
	if status.CurrentPhase != PhaseTechnical {
		t.Errorf("CurrentPhase = %q, expected %q", status.CurrentPhase, PhaseTechnical)
	}
	if status.QuestionsAsked != 2 {
		t.Errorf("QuestionsAsked = %d, expected 2", status.QuestionsAsked)
	}
	if status.QuestionsInPhase != 1 {
		t.Errorf("QuestionsInPhase = %d, expected 1", status.QuestionsInPhase)
	}
}
