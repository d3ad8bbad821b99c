package game

// Phase is the coarse state of a run.
type Phase int

const (
	PhaseReady   Phase = iota // idle, waiting for the first key press
	PhasePlaying              // timed run in progress
	PhaseEnded                // finish reached, waiting for restart
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// next reports the only phase p may move to.
func (p Phase) next() Phase {
	switch p {
	case PhaseReady:
		return PhasePlaying
	case PhasePlaying:
		return PhaseEnded
	default:
		return PhaseReady
	}
}
