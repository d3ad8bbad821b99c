package event

import (
	"time"

	"github.com/marblerace/course/internal/game"
)

// PhaseChanged is emitted on every accepted phase transition.
type PhaseChanged struct {
	From  game.Phase
	To    game.Phase
	Count int
	Seed  int64
}

// RunFinished is emitted when a run reaches the finish line (Playing→Ended).
type RunFinished struct {
	Count      int
	Seed       int64
	Duration   time.Duration
	FinishedAt time.Time
}

// RunFailed is emitted when the marble falls off the course while Playing.
type RunFailed struct {
	Count    int
	Seed     int64
	Duration time.Duration
}

// LevelBuilt is emitted after the course bodies were (re)created.
type LevelBuilt struct {
	Count     int
	Seed      int64
	Obstacles int
}
