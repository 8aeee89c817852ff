package interview

// Phase is a stage of the interview script. Phases only move forward along
// the order below; Completed is terminal.
type Phase string

const (
	PhaseIntroduction Phase = "introduction"
	PhaseTechnical    Phase = "technical"
	PhaseBehavioral   Phase = "behavioral"
	PhaseClosing      Phase = "closing"
	PhaseCompleted    Phase = "completed"
)

// Next returns the phase that follows p. Completed maps to itself.
func (p Phase) Next() Phase {
	switch p {
	case PhaseIntroduction:
		return PhaseTechnical
	case PhaseTechnical:
		return PhaseBehavioral
	case PhaseBehavioral:
		return PhaseClosing
	case PhaseClosing:
		return PhaseCompleted
	case PhaseCompleted:
		return PhaseCompleted
	default:
		return PhaseCompleted
	}
}

// Index returns the position of p in the phase order, 0 for introduction
// through 4 for completed.
func (p Phase) Index() int {
	switch p {
	case PhaseIntroduction:
		return 0
	case PhaseTechnical:
		return 1
	case PhaseBehavioral:
		return 2
	case PhaseClosing:
		return 3
	case PhaseCompleted:
		return 4
	default:
		return 4
	}
}

// Terminal reports whether p is the terminal phase.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted
}

// ActivePhases lists the non-terminal phases in script order.
func ActivePhases() []Phase {
	return []Phase{PhaseIntroduction, PhaseTechnical, PhaseBehavioral, PhaseClosing}
}
