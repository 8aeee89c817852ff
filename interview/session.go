package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxQuestionsPerPhase is the advisory per-phase question ceiling
// used by ShouldAdvance when no override is configured.
const DefaultMaxQuestionsPerPhase = 5

var (
	// ErrScoreOutOfRange is returned when a response quality score falls
	// outside the closed range 1-5.
	ErrScoreOutOfRange = errors.New("quality score must be between 1 and 5")

	// ErrSessionNotFound is returned when a persistence call matched no
	// stored session row.
	ErrSessionNotFound = errors.New("interview session not found")
)

// AlreadyCompletedMessage is the acknowledgement returned by mutating
// operations invoked after the interview reached its terminal phase.
const AlreadyCompletedMessage = "Interview already completed."

// Store is the narrow persistence surface the state machine writes through.
// repository.SessionStore satisfies it; tests substitute a fake.
type Store interface {
	CreateSession(ctx context.Context, candidateName, position string) (string, error)
	CompleteSession(ctx context.Context, interviewID string, technicalScore, behavioralScore int, impression, data string) (bool, error)
}

// Question is one entry in the ordered question log, tagged with the phase
// it was asked in.
type Question struct {
	Question  string    `json:"question"`
	Timestamp time.Time `json:"timestamp"`
	Phase     Phase     `json:"phase"`
}

// Response is one scored candidate answer.
type Response struct {
	Response     string    `json:"response"`
	QualityScore int       `json:"quality_score"`
	Timestamp    time.Time `json:"timestamp"`
	Phase        Phase     `json:"phase"`
}

// Note is a free-form interviewer observation.
type Note struct {
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
	Phase     Phase     `json:"phase"`
}

// sessionLog is the documented serialization schema written to the
// interview_data column at completion.
type sessionLog struct {
	QuestionsAsked []Question `json:"questions_asked"`
	Responses      []Response `json:"responses"`
	Notes          []Note     `json:"notes"`
}

// StatusSnapshot is the read-only view returned by Status.
type StatusSnapshot struct {
	CandidateName    string `json:"candidate_name"`
	Position         string `json:"position"`
	CurrentPhase     Phase  `json:"current_phase"`
	DurationMinutes  int    `json:"duration_minutes"`
	QuestionsAsked   int    `json:"questions_asked"`
	QuestionsInPhase int    `json:"questions_in_current_phase"`
}

// Session is the in-memory record of one ongoing interview. One conversation
// driver owns a Session and invokes its operations sequentially; calls are
// not synchronized here. All mutation is funneled through these operations
// so phase and scoring invariants hold in one place.
type Session struct {
	store                Store
	maxQuestionsPerPhase int

	interviewID       string
	candidateName     string
	position          string
	startTime         time.Time
	phase             Phase
	questionCount     int
	questions         []Question
	responses         []Response
	notes             []Note
	technicalScore    int
	behavioralScore   int
	overallImpression string
	finalized         bool
}

// NewSession creates an interview session starting in the introduction
// phase. maxQuestionsPerPhase <= 0 selects the default ceiling.
func NewSession(store Store, maxQuestionsPerPhase int) *Session {
	if maxQuestionsPerPhase <= 0 {
		maxQuestionsPerPhase = DefaultMaxQuestionsPerPhase
	}
	return &Session{
		store:                store,
		maxQuestionsPerPhase: maxQuestionsPerPhase,
		startTime:            time.Now(),
		phase:                PhaseIntroduction,
	}
}

// Bind attaches the session to a row that was already created by the token
// endpoint, so RecordCandidateInfo updates that row's conversation instead
// of opening a second one. A no-op once an id is bound.
func (s *Session) Bind(interviewID string) {
	if s.interviewID == "" && interviewID != "" {
		s.interviewID = interviewID
		slog.Info("Session bound to issued interview", "interview_id", interviewID)
	}
}

// RecordCandidateInfo sets the candidate's identity fields and opens the
// persisted session row. Calling it again updates the in-memory identity
// without creating a second row. A store failure leaves the conversation
// running in memory; Complete retries the persistence.
func (s *Session) RecordCandidateInfo(ctx context.Context, name, position string) (string, error) {
	if s.phase.Terminal() {
		return AlreadyCompletedMessage, nil
	}

	s.candidateName = name
	s.position = position

	if s.interviewID == "" {
		id, err := s.store.CreateSession(ctx, name, position)
		if err != nil {
			return "", fmt.Errorf("failed to persist interview session: %w", err)
		}
		s.interviewID = id
		slog.Info("Candidate info recorded", "interview_id", id, "candidate_name", name, "position", position)
	} else {
		slog.Info("Candidate info updated", "interview_id", s.interviewID, "candidate_name", name, "position", position)
	}

	return fmt.Sprintf("Thank you, %s! I've recorded that you're interviewing for the %s position. Let's begin with some general questions about your background.", name, position), nil
}

// RecordQuestion appends a phase-tagged entry to the question log and
// advances the per-phase counter.
func (s *Session) RecordQuestion(question string) (string, error) {
	if s.phase.Terminal() {
		return AlreadyCompletedMessage, nil
	}

	s.questions = append(s.questions, Question{
		Question:  question,
		Timestamp: time.Now(),
		Phase:     s.phase,
	})
	s.questionCount++

	return "Question recorded.", nil
}

// RecordResponse appends a scored answer to the response log. The score
// accumulates into the technical or behavioral total only while the
// matching phase is active; scores recorded in other phases are logged but
// contribute to neither total.
func (s *Session) RecordResponse(response string, qualityScore int) (string, error) {
	if s.phase.Terminal() {
		return AlreadyCompletedMessage, nil
	}
	if qualityScore < 1 || qualityScore > 5 {
		return "", fmt.Errorf("%w: got %d", ErrScoreOutOfRange, qualityScore)
	}

	s.responses = append(s.responses, Response{
		Response:     response,
		QualityScore: qualityScore,
		Timestamp:    time.Now(),
		Phase:        s.phase,
	})

	switch s.phase {
	case PhaseTechnical:
		s.technicalScore += qualityScore
	case PhaseBehavioral:
		s.behavioralScore += qualityScore
	}

	return "Response recorded and scored.", nil
}

// RecordNote appends a phase-tagged interviewer note. Notes never affect
// scoring.
func (s *Session) RecordNote(note string) (string, error) {
	if s.phase.Terminal() {
		return AlreadyCompletedMessage, nil
	}

	s.notes = append(s.notes, Note{
		Note:      note,
		Timestamp: time.Now(),
		Phase:     s.phase,
	})

	return "Note added.", nil
}

// Advance moves the interview to the next phase. Entering the technical or
// behavioral phase resets the per-phase question counter. Advancing from the
// terminal phase is a no-op that signals the interview is already complete.
func (s *Session) Advance() string {
	switch s.phase {
	case PhaseIntroduction:
		s.phase = PhaseTechnical
		s.questionCount = 0
		return "Moving to technical questions phase."
	case PhaseTechnical:
		s.phase = PhaseBehavioral
		s.questionCount = 0
		return "Moving to behavioral questions phase."
	case PhaseBehavioral:
		s.phase = PhaseClosing
		return "Moving to closing phase."
	case PhaseClosing:
		s.phase = PhaseCompleted
		return "Interview completed."
	case PhaseCompleted:
		return AlreadyCompletedMessage
	default:
		return AlreadyCompletedMessage
	}
}

// ShouldAdvance reports whether the per-phase question ceiling has been
// reached. Advisory only; the conversation driver decides whether to call
// Advance.
func (s *Session) ShouldAdvance() bool {
	return s.questionCount >= s.maxQuestionsPerPhase && !s.phase.Terminal()
}

// Status returns a read-only snapshot of the session.
func (s *Session) Status() StatusSnapshot {
	return StatusSnapshot{
		CandidateName:    s.candidateName,
		Position:         s.position,
		CurrentPhase:     s.phase,
		DurationMinutes:  int(time.Since(s.startTime).Minutes()),
		QuestionsAsked:   len(s.questions),
		QuestionsInPhase: s.questionCount,
	}
}

// Complete forces the interview to its terminal phase from any state, sets
// the overall impression, and persists the final snapshot. This is the
// single write-back point from memory to durable storage; if the session
// row was never created (an earlier RecordCandidateInfo failure) it is
// created here before the final update.
func (s *Session) Complete(ctx context.Context, overallImpression string) (string, error) {
	if s.finalized {
		return AlreadyCompletedMessage, nil
	}

	s.overallImpression = overallImpression
	s.phase = PhaseCompleted

	if s.interviewID == "" {
		id, err := s.store.CreateSession(ctx, s.candidateName, s.position)
		if err != nil {
			return "", fmt.Errorf("failed to persist interview session: %w", err)
		}
		s.interviewID = id
	}

	data, err := json.Marshal(sessionLog{
		QuestionsAsked: s.questions,
		Responses:      s.responses,
		Notes:          s.notes,
	})
	if err != nil {
		return "", fmt.Errorf("failed to serialize interview log: %w", err)
	}

	matched, err := s.store.CompleteSession(ctx, s.interviewID, s.technicalScore, s.behavioralScore, overallImpression, string(data))
	if err != nil {
		return "", fmt.Errorf("failed to complete interview session: %w", err)
	}
	if !matched {
		return "", fmt.Errorf("interview %s: %w", s.interviewID, ErrSessionNotFound)
	}

	s.finalized = true
	slog.Info("Interview completed", "interview_id", s.interviewID, "technical_score", s.technicalScore, "behavioral_score", s.behavioralScore)

	return "Interview completed and data saved. Thank you for your time!", nil
}

// InterviewID returns the bound persisted id, empty until the session row
// has been created.
func (s *Session) InterviewID() string { return s.interviewID }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// CandidateName returns the recorded candidate name.
func (s *Session) CandidateName() string { return s.candidateName }

// Position returns the recorded position.
func (s *Session) Position() string { return s.position }

// TechnicalScore returns the running technical total.
func (s *Session) TechnicalScore() int { return s.technicalScore }

// BehavioralScore returns the running behavioral total.
func (s *Session) BehavioralScore() int { return s.behavioralScore }

// OverallImpression returns the final impression, empty until Complete.
func (s *Session) OverallImpression() string { return s.overallImpression }
