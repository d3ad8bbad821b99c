package system

import (
	"fmt"
	"time"
)

// Runner drives one course frame: every phase in order, and within a phase
// the systems in registration order.
type Runner struct {
	phases [phaseCount][]System
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds s to its phase. A phase outside the frame is a wiring bug.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || int(p) >= phaseCount {
		panic(fmt.Sprintf("system: register %T with phase %d", s, p))
	}
	r.phases[p] = append(r.phases[p], s)
}

// Tick advances one frame.
func (r *Runner) Tick(dt time.Duration) {
	for _, systems := range r.phases {
		for _, s := range systems {
			s.Update(dt)
		}
	}
}

// TickPhase runs a single phase outside the frame, e.g. the cleanup phase
// that builds the first course before any frame has run.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	if phase < 0 || int(phase) >= phaseCount {
		return
	}
	for _, s := range r.phases[phase] {
		s.Update(dt)
	}
}

// Len returns the number of registered systems.
func (r *Runner) Len() int {
	n := 0
	for _, systems := range r.phases {
		n += len(systems)
	}
	return n
}
