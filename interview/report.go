package interview

import "time"

// PhaseStats summarizes activity within a single phase.
type PhaseStats struct {
	QuestionsCount int     `json:"questions_count"`
	ResponsesCount int     `json:"responses_count"`
	AverageScore   float64 `json:"average_score"`
	Completed      bool    `json:"completed"`
}

// ReportSummary is the headline section of a full report.
type ReportSummary struct {
	CandidateName   string  `json:"candidate_name"`
	Position        string  `json:"position"`
	DurationMinutes int     `json:"duration_minutes"`
	CompletionRate  float64 `json:"completion_rate"`
	CurrentPhase    Phase   `json:"current_phase"`
}

// ReportScoring bundles the accumulated and averaged scores.
type ReportScoring struct {
	TechnicalScore    int     `json:"technical_score"`
	BehavioralScore   int     `json:"behavioral_score"`
	AverageTechnical  float64 `json:"average_technical"`
	AverageBehavioral float64 `json:"average_behavioral"`
	TotalQuestions    int     `json:"total_questions"`
}

// Report is the full derived view over one session. It is recomputed on
// demand and never cached.
type Report struct {
	InterviewSummary  ReportSummary        `json:"interview_summary"`
	Scoring           ReportScoring        `json:"scoring"`
	PhaseBreakdown    map[Phase]PhaseStats `json:"phase_breakdown"`
	OverallImpression string               `json:"overall_impression"`
	NotesCount        int                  `json:"notes_count"`
}

// CompletionRate expresses how far the interview has progressed through the
// script, as a percentage of the four non-terminal phases.
func (s *Session) CompletionRate() float64 {
	return float64(s.phase.Index()) / float64(len(ActivePhases())) * 100
}

// AverageTechnicalScore is the mean quality score of responses recorded
// during the technical phase, 0 if there were none.
func (s *Session) AverageTechnicalScore() float64 {
	return s.averagePhaseScore(PhaseTechnical)
}

// AverageBehavioralScore is the mean quality score of responses recorded
// during the behavioral phase, 0 if there were none.
func (s *Session) AverageBehavioralScore() float64 {
	return s.averagePhaseScore(PhaseBehavioral)
}

func (s *Session) averagePhaseScore(phase Phase) float64 {
	sum, count := 0, 0
	for _, r := range s.responses {
		if r.Phase == phase {
			sum += r.QualityScore
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

// PhaseSummary computes per-phase question and response counts and mean
// quality scores over the non-terminal phases.
func (s *Session) PhaseSummary() map[Phase]PhaseStats {
	summary := make(map[Phase]PhaseStats, len(ActivePhases()))
	for _, phase := range ActivePhases() {
		stats := PhaseStats{}
		for _, q := range s.questions {
			if q.Phase == phase {
				stats.QuestionsCount++
			}
		}
		sum := 0
		for _, r := range s.responses {
			if r.Phase == phase {
				stats.ResponsesCount++
				sum += r.QualityScore
			}
		}
		if stats.ResponsesCount > 0 {
			stats.AverageScore = float64(sum) / float64(stats.ResponsesCount)
		}
		stats.Completed = stats.QuestionsCount > 0
		summary[phase] = stats
	}
	return summary
}

// GenerateReport builds the comprehensive derived view of the session.
func (s *Session) GenerateReport() Report {
	return Report{
		InterviewSummary: ReportSummary{
			CandidateName:   s.candidateName,
			Position:        s.position,
			DurationMinutes: int(time.Since(s.startTime).Minutes()),
			CompletionRate:  s.CompletionRate(),
			CurrentPhase:    s.phase,
		},
		Scoring: ReportScoring{
			TechnicalScore:    s.technicalScore,
			BehavioralScore:   s.behavioralScore,
			AverageTechnical:  s.AverageTechnicalScore(),
			AverageBehavioral: s.AverageBehavioralScore(),
			TotalQuestions:    len(s.questions),
		},
		PhaseBreakdown:    s.PhaseSummary(),
		OverallImpression: s.overallImpression,
		NotesCount:        len(s.notes),
	}
}
